package ops

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gradekit/gradekit/internal/params"
)

// Temperature shifts the red/blue channel balance toward the given color
// temperature in Kelvin. 6500 K is neutral; warmer values push red up and
// blue down, cooler values the reverse. The shift is monotonic in kelvin
// and an exact identity at neutral.
func Temperature(b *Buffer, kelvin float64) {
	if kelvin == params.NeutralTemperature {
		return
	}
	shift := (kelvin - params.NeutralTemperature) / 5500.0
	gain := float32(shift * 0.15)
	for i := 0; i < len(b.Pix); i += 3 {
		b.Pix[i] = clamp01(b.Pix[i] + gain)
		b.Pix[i+2] = clamp01(b.Pix[i+2] - gain)
	}
}

// Tint shifts the green/magenta balance. Positive amounts push magenta
// (red+blue up, green down), negative push green.
func Tint(b *Buffer, amount float64) {
	if amount == 0 {
		return
	}
	s := float32(amount / 100 * 0.1)
	for i := 0; i < len(b.Pix); i += 3 {
		b.Pix[i] = clamp01(b.Pix[i] + s*0.5)
		b.Pix[i+1] = clamp01(b.Pix[i+1] - s)
		b.Pix[i+2] = clamp01(b.Pix[i+2] + s*0.5)
	}
}

// Vibrance boosts saturation weighted inversely by the existing saturation,
// so muted colors move more than already-vivid ones and saturated colors
// are protected from clipping.
func Vibrance(b *Buffer, amount float64) {
	if amount == 0 {
		return
	}
	strength := amount / 100
	for i := 0; i < len(b.Pix); i += 3 {
		c := colorful.Color{R: float64(b.Pix[i]), G: float64(b.Pix[i+1]), B: float64(b.Pix[i+2])}
		h, s, l := c.Hsl()
		s += strength * (1 - s) * 0.5
		if s < 0 {
			s = 0
		} else if s > 1 {
			s = 1
		}
		out := colorful.Hsl(h, s, l).Clamped()
		b.Pix[i] = float32(out.R)
		b.Pix[i+1] = float32(out.G)
		b.Pix[i+2] = float32(out.B)
	}
}

// Saturation scales chroma uniformly about the pixel's luminance. -100
// produces grayscale, +100 doubles the distance from gray.
func Saturation(b *Buffer, amount float64) {
	if amount == 0 {
		return
	}
	factor := float32((amount + 100) / 100)
	for i := 0; i < len(b.Pix); i += 3 {
		gray := luminance(b.Pix[i], b.Pix[i+1], b.Pix[i+2])
		b.Pix[i] = clamp01(gray + factor*(b.Pix[i]-gray))
		b.Pix[i+1] = clamp01(gray + factor*(b.Pix[i+1]-gray))
		b.Pix[i+2] = clamp01(gray + factor*(b.Pix[i+2]-gray))
	}
}
