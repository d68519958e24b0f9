package ops

import (
	"github.com/anthonynsimon/bild/blur"
)

// Blur radii for the detail operators, as fractions of the image's smaller
// dimension. Clarity uses a wide radius (midtone structure), texture a
// narrow one (fine detail), so their visual strength survives resolution
// changes between preview and export.
const (
	clarityRadiusFrac = 0.015
	textureRadiusFrac = 0.003
)

// relRadius converts a normalized radius fraction to pixels, with a floor
// of one pixel.
func relRadius(b *Buffer, frac float64) float64 {
	r := frac * float64(b.minDim())
	if r < 1 {
		r = 1
	}
	return r
}

// blurredLuminance returns the buffer's luminance plane gaussian-blurred at
// the given pixel radius, normalized back to [0, 1].
func blurredLuminance(b *Buffer, radius float64) []float32 {
	blurred := blur.Gaussian(b.ToGray(), radius)
	out := make([]float32, b.W*b.H)
	i := 0
	for y := 0; y < b.H; y++ {
		row := blurred.Pix[y*blurred.Stride:]
		for x := 0; x < b.W; x++ {
			out[i] = float32(row[x*4]) / 255
			i++
		}
	}
	return out
}

// unsharpLuminance adds a thresholded luminance high-pass back to every
// channel: the shared core of Clarity and Texture, which differ only in
// blur radius and gain.
func unsharpLuminance(b *Buffer, radius, strength, gain float64) {
	low := blurredLuminance(b, radius)
	k := float32(strength * gain)
	const threshold = 0.02

	pi := 0
	for i := 0; i < len(b.Pix); i += 3 {
		l := luminance(b.Pix[i], b.Pix[i+1], b.Pix[i+2])
		hp := l - low[pi]
		pi++
		// Leave near-flat areas alone so noise is not amplified.
		if hp > -threshold && hp < threshold {
			continue
		}
		d := k * hp
		b.Pix[i] = clamp01(b.Pix[i] + d)
		b.Pix[i+1] = clamp01(b.Pix[i+1] + d)
		b.Pix[i+2] = clamp01(b.Pix[i+2] + d)
	}
}

// Clarity boosts midtone local contrast with a wide-radius luminance
// unsharp mask. Negative amounts soften.
func Clarity(b *Buffer, amount float64) {
	if amount == 0 {
		return
	}
	unsharpLuminance(b, relRadius(b, clarityRadiusFrac), amount/100, 0.3)
}

// Texture enhances fine detail with a narrow-radius luminance unsharp
// mask, gentler than sharpening and keyed to structure rather than edges.
func Texture(b *Buffer, amount float64) {
	if amount == 0 {
		return
	}
	unsharpLuminance(b, relRadius(b, textureRadiusFrac), amount/100, 0.4)
}

// Dehaze cuts (or, negative, adds) atmospheric haze using a simplified
// dark-channel prior: estimate the airlight color from the brightest dark-
// channel pixels, estimate per-pixel transmission from the dark channel,
// then invert the haze model (observed = scene*t + airlight*(1-t)).
// The transmission floor keeps shadows from being torn into noise. The
// same approximation runs at preview and export resolution.
func Dehaze(b *Buffer, amount float64) {
	if amount == 0 {
		return
	}
	strength := float32(amount / 100)
	n := b.W * b.H

	dark := make([]float32, n)
	pi := 0
	for i := 0; i < len(b.Pix); i += 3 {
		d := b.Pix[i]
		if b.Pix[i+1] < d {
			d = b.Pix[i+1]
		}
		if b.Pix[i+2] < d {
			d = b.Pix[i+2]
		}
		dark[pi] = d
		pi++
	}

	// Airlight: mean color of the top 0.1% brightest dark-channel pixels,
	// located via a 256-bin histogram cutoff.
	var hist [256]int
	for _, d := range dark {
		hist[quantize(d)]++
	}
	want := n / 1000
	if want < 1 {
		want = 1
	}
	cutoff := 255
	count := 0
	for ; cutoff > 0; cutoff-- {
		count += hist[cutoff]
		if count >= want {
			break
		}
	}
	cut := float32(cutoff) / 255
	var sumR, sumG, sumB float64
	picked := 0
	pi = 0
	for i := 0; i < len(b.Pix); i += 3 {
		if dark[pi] >= cut {
			sumR += float64(b.Pix[i])
			sumG += float64(b.Pix[i+1])
			sumB += float64(b.Pix[i+2])
			picked++
		}
		pi++
	}
	if picked == 0 {
		return
	}
	air := [3]float32{
		float32(sumR / float64(picked)),
		float32(sumG / float64(picked)),
		float32(sumB / float64(picked)),
	}
	for c := range air {
		if air[c] < 0.2 {
			air[c] = 0.2
		}
	}

	pi = 0
	for i := 0; i < len(b.Pix); i += 3 {
		m := b.Pix[i] / air[0]
		if v := b.Pix[i+1] / air[1]; v < m {
			m = v
		}
		if v := b.Pix[i+2] / air[2]; v < m {
			m = v
		}
		t := 1 - strength*0.7*m
		if t < 0.3 {
			t = 0.3
		}
		b.Pix[i] = clamp01((b.Pix[i]-air[0])/t + air[0])
		b.Pix[i+1] = clamp01((b.Pix[i+1]-air[1])/t + air[1])
		b.Pix[i+2] = clamp01((b.Pix[i+2]-air[2])/t + air[2])
		pi++
	}
}

// Fade lifts the black point and eases contrast for a matte, faded-film
// look. amount in [0, 100].
func Fade(b *Buffer, amount float64) {
	if amount == 0 {
		return
	}
	s := float32(amount / 100)
	lift := s * 0.2
	squeeze := 1 - s*0.15
	for i := range b.Pix {
		v := lift + (1-lift)*b.Pix[i]
		b.Pix[i] = clamp01(0.5 + squeeze*(v-0.5))
	}
}
