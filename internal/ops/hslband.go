package ops

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gradekit/gradekit/internal/params"
)

// hueBand is one entry of the fixed hue-band table: a center hue and the
// half-width of its triangular falloff. Bands overlap their neighbors on
// purpose; a pixel between two centers receives a blend of both
// adjustments.
type hueBand struct {
	center float64 // degrees
	width  float64 // degrees, weight reaches 0 at this angular distance
}

// The eight named bands. A plain table keyed by position: the render
// pipeline passes the matching params.HSLBand values in the same order.
var hueBands = [8]hueBand{
	{0, 30},   // red
	{30, 30},  // orange
	{60, 30},  // yellow
	{120, 60}, // green
	{180, 30}, // aqua
	{240, 40}, // blue
	{280, 30}, // purple
	{320, 30}, // magenta
}

func bandAdjustments(h params.HSL) [8]params.HSLBand {
	return [8]params.HSLBand{
		h.Red, h.Orange, h.Yellow, h.Green, h.Aqua, h.Blue, h.Purple, h.Magenta,
	}
}

func bandActive(b params.HSLBand) bool {
	return b.Hue != 0 || b.Saturation != 0 || b.Luminance != 0
}

// hueDistance returns the angular distance between two hues in degrees,
// in [0, 180].
func hueDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// HSLBands applies the per-band hue/saturation/luminance shifts. Each
// pixel's hue selects a weight per band via triangular falloff from the
// band center; shifts from all matching bands accumulate, scaled by their
// weights.
func HSLBands(b *Buffer, adjust params.HSL) {
	bands := bandAdjustments(adjust)
	any := false
	for _, a := range bands {
		if bandActive(a) {
			any = true
			break
		}
	}
	if !any {
		return
	}

	for i := 0; i < len(b.Pix); i += 3 {
		c := colorful.Color{R: float64(b.Pix[i]), G: float64(b.Pix[i+1]), B: float64(b.Pix[i+2])}
		h, s, l := c.Hsl()
		if s == 0 {
			// Achromatic pixels carry no hue to key on.
			continue
		}
		for bi, band := range hueBands {
			a := bands[bi]
			if !bandActive(a) {
				continue
			}
			w := 1 - hueDistance(h, band.center)/band.width
			if w <= 0 {
				continue
			}
			h += a.Hue * w
			s += a.Saturation / 100 * w
			l += a.Luminance / 100 * w * 0.5
		}
		h = math.Mod(h, 360)
		if h < 0 {
			h += 360
		}
		s = math.Min(math.Max(s, 0), 1)
		l = math.Min(math.Max(l, 0), 1)
		out := colorful.Hsl(h, s, l).Clamped()
		b.Pix[i] = float32(out.R)
		b.Pix[i+1] = float32(out.G)
		b.Pix[i+2] = float32(out.B)
	}
}
