package ops

import (
	"math"
	"math/rand"

	"github.com/anthonynsimon/bild/blur"
)

// Sharpen applies an unsharp mask over all three channels. amount is in
// [0, 100]; radius is the slider value in [0.5, 5], scaled by the image's
// smaller dimension so the perceived edge width matches between preview
// and export.
func Sharpen(b *Buffer, amount, radius float64) {
	if amount == 0 {
		return
	}
	px := radius * float64(b.minDim()) / 1500
	if px < 1 {
		px = 1
	}
	blurred := blur.Gaussian(b.ToNRGBA(), px)
	k := float32(amount / 100)

	si := 0
	for y := 0; y < b.H; y++ {
		row := blurred.Pix[y*blurred.Stride:]
		for x := 0; x < b.W; x++ {
			for c := 0; c < 3; c++ {
				low := float32(row[x*4+c]) / 255
				b.Pix[si+c] = clamp01(b.Pix[si+c] + k*(b.Pix[si+c]-low))
			}
			si += 3
		}
	}
}

// Vignette scales luminance by distance from the image center. Negative
// amounts darken the corners, positive amounts brighten them. The falloff
// is quadratic in the normalized center distance, so the middle of the
// frame is essentially untouched.
func Vignette(b *Buffer, amount float64) {
	if amount == 0 {
		return
	}
	strength := float32(amount / 100)
	cx := float64(b.W) / 2
	cy := float64(b.H) / 2
	maxDist := math.Hypot(cx, cy)

	i := 0
	for y := 0; y < b.H; y++ {
		dy := float64(y) - cy
		for x := 0; x < b.W; x++ {
			dx := float64(x) - cx
			d := float32(math.Hypot(dx, dy) / maxDist)
			gain := 1 + strength*d*d
			b.Pix[i] = clamp01(b.Pix[i] * gain)
			b.Pix[i+1] = clamp01(b.Pix[i+1] * gain)
			b.Pix[i+2] = clamp01(b.Pix[i+2] * gain)
			i += 3
		}
	}
}

// Grain adds monochromatic gaussian noise. The amplitude is deliberately
// capped low; grain is a finishing texture, not a degradation effect. The
// seed comes from the render fingerprint so identical render inputs give
// pixel-identical grain, which the render cache relies on.
func Grain(b *Buffer, amount float64, seed int64) {
	if amount == 0 {
		return
	}
	sigma := math.Min(amount/100, 0.05) * 0.1
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < len(b.Pix); i += 3 {
		n := float32(rng.NormFloat64() * sigma)
		b.Pix[i] = clamp01(b.Pix[i] + n)
		b.Pix[i+1] = clamp01(b.Pix[i+1] + n)
		b.Pix[i+2] = clamp01(b.Pix[i+2] + n)
	}
}
