package params

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the parameter schema version written into new ColorParams.
const Version = "1.0"

// NeutralTemperature is the color temperature in Kelvin at which the
// temperature operator is an identity.
const NeutralTemperature = 6500

// Basic holds the first-stage tonal adjustments.
//
// Exposure is in EV stops; all other fields are signed percentages in
// [-100, 100] where 0 is neutral.
type Basic struct {
	Exposure   float64 `json:"exposure"` // EV, [-3, 3]
	Contrast   float64 `json:"contrast"`
	Highlights float64 `json:"highlights"`
	Shadows    float64 `json:"shadows"`
	Whites     float64 `json:"whites"`
	Blacks     float64 `json:"blacks"`
}

// ColorAdjust holds white balance and saturation controls.
type ColorAdjust struct {
	Temperature float64 `json:"temperature"` // Kelvin, [2000, 12000], neutral 6500
	Tint        float64 `json:"tint"`        // green-magenta, [-100, 100]
	Vibrance    float64 `json:"vibrance"`    // [-100, 100]
	Saturation  float64 `json:"saturation"`  // [-100, 100]
}

// CurvePoint is one tone-curve control point as [input, output], both in
// [0, 255]. The JSON form is a two-element array, matching the wire format
// produced by the parameter editor and the AI suggestion decoder.
type CurvePoint [2]float64

// ToneCurve holds the master curve control points plus optional independent
// red/green/blue curves. Points must be strictly increasing in input.
type ToneCurve struct {
	Points []CurvePoint `json:"points"`
	Red    []CurvePoint `json:"red,omitempty"`
	Green  []CurvePoint `json:"green,omitempty"`
	Blue   []CurvePoint `json:"blue,omitempty"`
}

// HSLBand holds the per-band hue/saturation/luminance deltas.
type HSLBand struct {
	Hue        float64 `json:"hue"`        // degrees, [-180, 180]
	Saturation float64 `json:"saturation"` // [-100, 100]
	Luminance  float64 `json:"luminance"`  // [-100, 100]
}

// HSL maps the eight fixed hue bands to their adjustments.
type HSL struct {
	Red     HSLBand `json:"red"`
	Orange  HSLBand `json:"orange"`
	Yellow  HSLBand `json:"yellow"`
	Green   HSLBand `json:"green"`
	Aqua    HSLBand `json:"aqua"`
	Blue    HSLBand `json:"blue"`
	Purple  HSLBand `json:"purple"`
	Magenta HSLBand `json:"magenta"`
}

// SplitTone is the tint injected into one luminance range.
type SplitTone struct {
	Hue        float64 `json:"hue"`        // degrees, [0, 360]
	Saturation float64 `json:"saturation"` // [0, 100], 0 disables the range
}

// SplitToning holds three-way split toning. Balance shifts the luminance
// split point between shadow and highlight influence.
type SplitToning struct {
	Highlights SplitTone `json:"highlights"`
	Midtones   SplitTone `json:"midtones"`
	Shadows    SplitTone `json:"shadows"`
	Balance    float64   `json:"balance"` // [-100, 100]
}

// Effects holds detail and finishing controls.
type Effects struct {
	Clarity       float64 `json:"clarity"`        // [-100, 100], midtone contrast
	Texture       float64 `json:"texture"`        // [-100, 100], fine detail
	Dehaze        float64 `json:"dehaze"`         // [-100, 100]
	Fade          float64 `json:"fade"`           // [0, 100], lifts blacks
	Sharpening    float64 `json:"sharpening"`     // [0, 100]
	SharpenRadius float64 `json:"sharpen_radius"` // [0.5, 5], neutral 1.0
	Vignette      float64 `json:"vignette"`       // [-100, 100], negative darkens edges
	Grain         float64 `json:"grain"`          // [0, 100]
}

// ColorParams is one complete grading edit.
type ColorParams struct {
	Version     string      `json:"version"`
	Basic       Basic       `json:"basic"`
	Color       ColorAdjust `json:"color"`
	ToneCurve   ToneCurve   `json:"tone_curve"`
	HSL         HSL         `json:"hsl"`
	SplitToning SplitToning `json:"split_toning"`
	Effects     Effects     `json:"effects"`
}

// IdentityCurvePoints returns the default five-point identity ramp.
func IdentityCurvePoints() []CurvePoint {
	return []CurvePoint{{0, 0}, {64, 64}, {128, 128}, {192, 192}, {255, 255}}
}

// Neutral returns parameters at which every operator is an exact no-op.
func Neutral() ColorParams {
	return ColorParams{
		Version: Version,
		Color: ColorAdjust{
			Temperature: NeutralTemperature,
		},
		ToneCurve: ToneCurve{
			Points: IdentityCurvePoints(),
		},
		Effects: Effects{
			SharpenRadius: 1.0,
		},
	}
}

// UnmarshalJSON decodes p from JSON, filling any unspecified field with its
// neutral value rather than the Go zero value.
func (p *ColorParams) UnmarshalJSON(data []byte) error {
	type plain ColorParams
	v := plain(Neutral())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = ColorParams(v)
	return nil
}

// DecodeJSON parses a ColorParams document, defaulting missing fields to
// their neutral values. The result is not clamped or validated; callers
// that forward it to the render pipeline get both applied there.
func DecodeJSON(data []byte) (ColorParams, error) {
	var p ColorParams
	if err := json.Unmarshal(data, &p); err != nil {
		return ColorParams{}, fmt.Errorf("decode color params: %w", err)
	}
	return p, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampCurve(pts []CurvePoint) []CurvePoint {
	if pts == nil {
		return nil
	}
	out := make([]CurvePoint, 0, len(pts))
	for _, p := range pts {
		cp := CurvePoint{clamp(p[0], 0, 255), clamp(p[1], 0, 255)}
		// Clamping can fold an out-of-domain input onto the previous
		// point's input. The later point wins, keeping the result strictly
		// increasing; spline interpolation over a zero x-spacing is
		// undefined.
		if n := len(out); n > 0 && cp[0] <= out[n-1][0] {
			out[n-1] = cp
			continue
		}
		out = append(out, cp)
	}
	return out
}

func (b Basic) clamped() Basic {
	return Basic{
		Exposure:   clamp(b.Exposure, -3, 3),
		Contrast:   clamp(b.Contrast, -100, 100),
		Highlights: clamp(b.Highlights, -100, 100),
		Shadows:    clamp(b.Shadows, -100, 100),
		Whites:     clamp(b.Whites, -100, 100),
		Blacks:     clamp(b.Blacks, -100, 100),
	}
}

func (c ColorAdjust) clamped() ColorAdjust {
	return ColorAdjust{
		Temperature: clamp(c.Temperature, 2000, 12000),
		Tint:        clamp(c.Tint, -100, 100),
		Vibrance:    clamp(c.Vibrance, -100, 100),
		Saturation:  clamp(c.Saturation, -100, 100),
	}
}

func (b HSLBand) clamped() HSLBand {
	return HSLBand{
		Hue:        clamp(b.Hue, -180, 180),
		Saturation: clamp(b.Saturation, -100, 100),
		Luminance:  clamp(b.Luminance, -100, 100),
	}
}

func (s SplitTone) clamped() SplitTone {
	return SplitTone{
		Hue:        clamp(s.Hue, 0, 360),
		Saturation: clamp(s.Saturation, 0, 100),
	}
}

func (e Effects) clamped() Effects {
	return Effects{
		Clarity:       clamp(e.Clarity, -100, 100),
		Texture:       clamp(e.Texture, -100, 100),
		Dehaze:        clamp(e.Dehaze, -100, 100),
		Fade:          clamp(e.Fade, 0, 100),
		Sharpening:    clamp(e.Sharpening, 0, 100),
		SharpenRadius: clamp(e.SharpenRadius, 0.5, 5),
		Vignette:      clamp(e.Vignette, -100, 100),
		Grain:         clamp(e.Grain, 0, 100),
	}
}

// Clamped returns a copy of p with every numeric field forced into its
// declared domain. Out-of-range values are never an error; interactive
// sliders may transiently overshoot and the engine clamps silently.
func (p ColorParams) Clamped() ColorParams {
	out := p
	out.Basic = p.Basic.clamped()
	out.Color = p.Color.clamped()
	out.ToneCurve = ToneCurve{
		Points: clampCurve(p.ToneCurve.Points),
		Red:    clampCurve(p.ToneCurve.Red),
		Green:  clampCurve(p.ToneCurve.Green),
		Blue:   clampCurve(p.ToneCurve.Blue),
	}
	out.HSL = HSL{
		Red:     p.HSL.Red.clamped(),
		Orange:  p.HSL.Orange.clamped(),
		Yellow:  p.HSL.Yellow.clamped(),
		Green:   p.HSL.Green.clamped(),
		Aqua:    p.HSL.Aqua.clamped(),
		Blue:    p.HSL.Blue.clamped(),
		Purple:  p.HSL.Purple.clamped(),
		Magenta: p.HSL.Magenta.clamped(),
	}
	out.SplitToning = SplitToning{
		Highlights: p.SplitToning.Highlights.clamped(),
		Midtones:   p.SplitToning.Midtones.clamped(),
		Shadows:    p.SplitToning.Shadows.clamped(),
		Balance:    clamp(p.SplitToning.Balance, -100, 100),
	}
	out.Effects = p.Effects.clamped()
	return out
}

// ErrCurveNotMonotonic reports tone-curve control points whose inputs are
// not strictly increasing. This is the one malformed-parameter case that is
// rejected instead of clamped: interpolating through an unordered point set
// has no defined meaning.
var ErrCurveNotMonotonic = errors.New("tone curve points not strictly increasing in input")

func validateCurve(name string, pts []CurvePoint) error {
	for i := 1; i < len(pts); i++ {
		if pts[i][0] <= pts[i-1][0] {
			return fmt.Errorf("%s curve point %d (input %g after %g): %w",
				name, i, pts[i][0], pts[i-1][0], ErrCurveNotMonotonic)
		}
	}
	return nil
}

// Validate checks the parts of p that cannot be repaired by clamping.
// It returns a wrapped ErrCurveNotMonotonic for unordered tone-curve points
// and nil otherwise.
func (p ColorParams) Validate() error {
	if err := validateCurve("master", p.ToneCurve.Points); err != nil {
		return err
	}
	if err := validateCurve("red", p.ToneCurve.Red); err != nil {
		return err
	}
	if err := validateCurve("green", p.ToneCurve.Green); err != nil {
		return err
	}
	return validateCurve("blue", p.ToneCurve.Blue)
}
