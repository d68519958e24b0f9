package ops

import (
	"github.com/gradekit/gradekit/internal/params"
)

// curveLUT is a 256-entry lookup table mapping 8-bit input levels to
// normalized output in [0, 1].
type curveLUT [256]float32

// buildLUT interpolates a monotone cubic (Fritsch-Carlson) Hermite spline
// through the control points and samples it at every 8-bit input level.
// The monotone tangent limiter means a non-decreasing point set can never
// produce an overshooting, oscillating curve the way a natural cubic spline
// can. Inputs outside the control point domain clamp to the end values.
//
// Fewer than two points yields the identity ramp. Points are assumed
// validated (strictly increasing in input) before reaching the operator.
func buildLUT(pts []params.CurvePoint) curveLUT {
	var lut curveLUT
	if len(pts) < 2 {
		for i := range lut {
			lut[i] = float32(i) / 255
		}
		return lut
	}

	n := len(pts)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range pts {
		xs[i] = p[0]
		ys[i] = p[1] / 255.0
	}

	// Secant slopes between adjacent points.
	d := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		d[i] = (ys[i+1] - ys[i]) / (xs[i+1] - xs[i])
	}

	// Tangents, limited so the interpolant stays monotone on each segment.
	m := make([]float64, n)
	m[0] = d[0]
	m[n-1] = d[n-2]
	for i := 1; i < n-1; i++ {
		if d[i-1]*d[i] <= 0 {
			m[i] = 0
		} else {
			m[i] = (d[i-1] + d[i]) / 2
		}
	}
	for i := 0; i < n-1; i++ {
		if d[i] == 0 {
			m[i] = 0
			m[i+1] = 0
			continue
		}
		a := m[i] / d[i]
		b := m[i+1] / d[i]
		if a > 3 {
			m[i] = 3 * d[i]
		}
		if b > 3 {
			m[i+1] = 3 * d[i]
		}
	}

	seg := 0
	for i := range lut {
		x := float64(i)
		switch {
		case x <= xs[0]:
			lut[i] = clamp01(float32(ys[0]))
			continue
		case x >= xs[n-1]:
			lut[i] = clamp01(float32(ys[n-1]))
			continue
		}
		for x > xs[seg+1] {
			seg++
		}
		h := xs[seg+1] - xs[seg]
		t := (x - xs[seg]) / h
		t2 := t * t
		t3 := t2 * t
		v := ys[seg]*(2*t3-3*t2+1) +
			m[seg]*h*(t3-2*t2+t) +
			ys[seg+1]*(-2*t3+3*t2) +
			m[seg+1]*h*(t3-t2)
		lut[i] = clamp01(float32(v))
	}
	return lut
}

func (l *curveLUT) isIdentity() bool {
	for i := range l {
		want := float32(i) / 255
		diff := l[i] - want
		if diff > 1e-4 || diff < -1e-4 {
			return false
		}
	}
	return true
}

func (l *curveLUT) lookup(v float32) float32 {
	idx := int(v*255 + 0.5)
	if idx < 0 {
		idx = 0
	} else if idx > 255 {
		idx = 255
	}
	return l[idx]
}

// ToneCurve applies the tone curve. With per-channel red/green/blue curves
// present, each channel is mapped through its own LUT (the master curve
// fills in for absent channels). With only a master curve, the curve is
// applied to luminance and the RGB values are scaled by the luminance ratio,
// preserving hue and saturation.
func ToneCurve(b *Buffer, tc params.ToneCurve) {
	master := buildLUT(tc.Points)
	perChannel := tc.Red != nil || tc.Green != nil || tc.Blue != nil
	if !perChannel && master.isIdentity() {
		return
	}

	if perChannel {
		luts := [3]curveLUT{master, master, master}
		if tc.Red != nil {
			luts[0] = buildLUT(tc.Red)
		}
		if tc.Green != nil {
			luts[1] = buildLUT(tc.Green)
		}
		if tc.Blue != nil {
			luts[2] = buildLUT(tc.Blue)
		}
		for i := 0; i < len(b.Pix); i += 3 {
			b.Pix[i] = luts[0].lookup(b.Pix[i])
			b.Pix[i+1] = luts[1].lookup(b.Pix[i+1])
			b.Pix[i+2] = luts[2].lookup(b.Pix[i+2])
		}
		return
	}

	const dark = 1e-4
	for i := 0; i < len(b.Pix); i += 3 {
		l := luminance(b.Pix[i], b.Pix[i+1], b.Pix[i+2])
		mapped := master.lookup(l)
		if l < dark {
			// Near black there is no chroma to preserve; add the lift directly.
			d := mapped - l
			b.Pix[i] = clamp01(b.Pix[i] + d)
			b.Pix[i+1] = clamp01(b.Pix[i+1] + d)
			b.Pix[i+2] = clamp01(b.Pix[i+2] + d)
			continue
		}
		scale := mapped / l
		b.Pix[i] = clamp01(b.Pix[i] * scale)
		b.Pix[i+1] = clamp01(b.Pix[i+1] * scale)
		b.Pix[i+2] = clamp01(b.Pix[i+2] * scale)
	}
}
