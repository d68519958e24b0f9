package ops

import (
	"math"

	"github.com/gradekit/gradekit/internal/params"
)

// tintColor converts a hue angle to an RGB tint on a cosine basis. The
// result sits around mid-gray so that (tint - 0.5) is a signed push toward
// the hue.
func tintColor(hueDeg float64) (r, g, b float32) {
	h := hueDeg * math.Pi / 180
	const third = 2 * math.Pi / 3
	r = float32(0.5 + 0.5*math.Cos(h))
	g = float32(0.5 + 0.5*math.Cos(h-third))
	b = float32(0.5 + 0.5*math.Cos(h+third))
	return r, g, b
}

// SplitToning tints shadows, midtones and highlights independently.
// Balance in [-100, 100] shifts the luminance split point: positive values
// hand more of the tonal range to the highlight tint, negative to the
// shadow tint. A range with zero saturation contributes nothing.
func SplitToning(b *Buffer, st params.SplitToning) {
	if st.Highlights.Saturation == 0 && st.Midtones.Saturation == 0 && st.Shadows.Saturation == 0 {
		return
	}

	mid := float32(0.5 + st.Balance/200)
	const eps = 1e-6

	type rangeTint struct {
		r, g, b  float32
		strength float32
	}
	var tints [3]rangeTint // shadows, midtones, highlights
	for i, ch := range [3]params.SplitTone{st.Shadows, st.Midtones, st.Highlights} {
		r, g, bl := tintColor(ch.Hue)
		tints[i] = rangeTint{r: r, g: g, b: bl, strength: float32(ch.Saturation / 100 * 0.3)}
	}

	for i := 0; i < len(b.Pix); i += 3 {
		l := luminance(b.Pix[i], b.Pix[i+1], b.Pix[i+2])

		hw := clamp01((l - mid) / (1 - mid + eps))
		sw := clamp01((mid - l) / (mid + eps))
		mw := clamp01(1 - hw - sw)
		weights := [3]float32{sw, mw, hw}

		for ti, t := range tints {
			if t.strength == 0 || weights[ti] == 0 {
				continue
			}
			k := t.strength * weights[ti]
			b.Pix[i] = clamp01(b.Pix[i] + k*(t.r-0.5))
			b.Pix[i+1] = clamp01(b.Pix[i+1] + k*(t.g-0.5))
			b.Pix[i+2] = clamp01(b.Pix[i+2] + k*(t.b-0.5))
		}
	}
}
