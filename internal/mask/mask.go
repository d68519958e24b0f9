// Package mask rasterizes local adjustment regions into soft-edged
// coverage masks.
//
// A mask is computed analytically at the render's working resolution, never
// pre-rasterized and resampled, so a region's feathered edge looks the same
// at preview and export sizes. Coverage is 1 strictly inside the shape,
// 0 strictly outside, with a smoothstep falloff over the feather band just
// inside the boundary, measured in the shape's own geometry (edge distance
// for rectangles, normalized radial distance for ellipses).
package mask

import (
	"math"

	"github.com/gradekit/gradekit/internal/params"
)

// Mask is a per-pixel coverage map in [0, 1] at a raster's resolution.
type Mask struct {
	W, H int
	Cov  []float32 // len = W*H, row-major
}

// smoothstep maps t in [0, 1] onto the classic 3t^2-2t^3 ease curve.
func smoothstep(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// Rasterize renders the region's coverage at w by h pixels. The region is
// clamped to the unit square first; a zero-area region yields an all-zero
// mask rather than an error. Unknown region types must be rejected by
// Region.Validate before rendering; Rasterize treats them as empty.
func Rasterize(r params.Region, w, h int) *Mask {
	r = r.Clamped()
	m := &Mask{W: w, H: h, Cov: make([]float32, w*h)}

	minDim := w
	if h < minDim {
		minDim = h
	}
	featherPx := r.Feather * float64(minDim)

	switch r.Type {
	case params.RegionRect:
		m.rect(r, featherPx)
	case params.RegionEllipse:
		m.ellipse(r, featherPx)
	}
	return m
}

func (m *Mask) rect(r params.Region, featherPx float64) {
	x0 := r.X * float64(m.W)
	x1 := (r.X + r.Width) * float64(m.W)
	y0 := r.Y * float64(m.H)
	y1 := (r.Y + r.Height) * float64(m.H)
	if x1 <= x0 || y1 <= y0 {
		return
	}

	i := 0
	for y := 0; y < m.H; y++ {
		py := float64(y) + 0.5
		dv := math.Min(py-y0, y1-py)
		for x := 0; x < m.W; x++ {
			px := float64(x) + 0.5
			d := math.Min(math.Min(px-x0, x1-px), dv)
			switch {
			case d <= 0:
				// outside
			case featherPx == 0:
				m.Cov[i] = 1
			default:
				m.Cov[i] = smoothstep(float32(d / featherPx))
			}
			i++
		}
	}
}

func (m *Mask) ellipse(r params.Region, featherPx float64) {
	rx := r.Width * float64(m.W) / 2
	ry := r.Height * float64(m.H) / 2
	if rx < 0.5 || ry < 0.5 {
		return
	}
	cx := r.X*float64(m.W) + rx
	cy := r.Y*float64(m.H) + ry

	// Feather as a fraction of the smaller radius, so the band sits inside
	// the shape in its own coordinate space.
	var feather float64
	if featherPx > 0 {
		feather = featherPx / math.Min(rx, ry)
		if feather > 1 {
			feather = 1
		}
	}

	i := 0
	for y := 0; y < m.H; y++ {
		ny := (float64(y) + 0.5 - cy) / ry
		for x := 0; x < m.W; x++ {
			nx := (float64(x) + 0.5 - cx) / rx
			d := math.Sqrt(nx*nx + ny*ny)
			switch {
			case d >= 1:
				// outside
			case feather == 0:
				m.Cov[i] = 1
			default:
				m.Cov[i] = smoothstep(float32((1 - d) / feather))
			}
			i++
		}
	}
}
