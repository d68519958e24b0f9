package ops

import "math"

// Exposure scales the image by 2^ev stops. ev=0 is the identity.
func Exposure(b *Buffer, ev float64) {
	if ev == 0 {
		return
	}
	gain := float32(math.Pow(2, ev))
	for i := range b.Pix {
		b.Pix[i] = clamp01(b.Pix[i] * gain)
	}
}

// Contrast pivots the tonal range around mid-gray 0.5. amount in
// [-100, 100]: -100 collapses to flat gray, +100 doubles the spread.
func Contrast(b *Buffer, amount float64) {
	if amount == 0 {
		return
	}
	factor := float32((amount + 100) / 100)
	for i := range b.Pix {
		b.Pix[i] = clamp01(0.5 + factor*(b.Pix[i]-0.5))
	}
}

// lumaWeighted shifts each pixel by strength*weight(L), where the weight is
// a function of the pixel's luminance. Shared by the highlight/shadow and
// white/black point operators, which differ only in their weight curves.
func lumaWeighted(b *Buffer, strength float32, weight func(l float32) float32) {
	for i := 0; i < len(b.Pix); i += 3 {
		l := luminance(b.Pix[i], b.Pix[i+1], b.Pix[i+2])
		d := strength * weight(l)
		if d == 0 {
			continue
		}
		b.Pix[i] = clamp01(b.Pix[i] + d)
		b.Pix[i+1] = clamp01(b.Pix[i+1] + d)
		b.Pix[i+2] = clamp01(b.Pix[i+2] + d)
	}
}

// Highlights lifts or recovers the bright end of the tonal range. The
// weight ramps in above mid-gray and is squared so midtones are barely
// touched.
func Highlights(b *Buffer, amount float64) {
	if amount == 0 {
		return
	}
	strength := float32(amount / 100 * 0.5)
	lumaWeighted(b, strength, func(l float32) float32 {
		w := clamp01((l - 0.5) * 2)
		return w * w
	})
}

// Shadows lifts or deepens the dark end, mirroring Highlights around 0.5.
func Shadows(b *Buffer, amount float64) {
	if amount == 0 {
		return
	}
	strength := float32(amount / 100 * 0.5)
	lumaWeighted(b, strength, func(l float32) float32 {
		w := clamp01((0.5 - l) * 2)
		return w * w
	})
}

// Whites stretches the white point. Unlike Highlights the weight is a hard
// ramp confined to the top of the range (luminance above ~0.7).
func Whites(b *Buffer, amount float64) {
	if amount == 0 {
		return
	}
	strength := float32(amount / 200)
	lumaWeighted(b, strength, func(l float32) float32 {
		return clamp01((l - 0.7) * 3.3)
	})
}

// Blacks stretches the black point, the mirror of Whites at the bottom of
// the range (luminance below ~0.3).
func Blacks(b *Buffer, amount float64) {
	if amount == 0 {
		return
	}
	strength := float32(amount / 200)
	lumaWeighted(b, strength, func(l float32) float32 {
		return clamp01((0.3 - l) * 3.3)
	})
}
