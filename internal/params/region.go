package params

import (
	"encoding/json"
	"fmt"
)

// RegionType identifies the shape of a local adjustment region.
type RegionType string

// Supported region shapes.
const (
	RegionRect    RegionType = "rect"
	RegionEllipse RegionType = "ellipse"
)

// Region is a local adjustment selection. All coordinates are normalized to
// [0, 1] of the image dimensions so the same region rasterizes consistently
// at preview and export resolutions. Feather is the width of the soft edge
// band, also in normalized units.
type Region struct {
	Type    RegionType `json:"type"`
	X       float64    `json:"x"`
	Y       float64    `json:"y"`
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	Feather float64    `json:"feather"`
}

// ErrUnsupportedRegion reports a region type other than rect or ellipse.
type ErrUnsupportedRegion struct {
	Type RegionType
}

func (e *ErrUnsupportedRegion) Error() string {
	return fmt.Sprintf("unsupported region type %q", e.Type)
}

// Validate rejects unknown region types. Degenerate geometry (zero area,
// out-of-range coordinates) is not an error; it is clamped or treated as an
// empty mask by the mask engine.
func (r Region) Validate() error {
	switch r.Type {
	case RegionRect, RegionEllipse:
		return nil
	default:
		return &ErrUnsupportedRegion{Type: r.Type}
	}
}

// Clamped returns a copy of r with its origin forced into [0, 1] and its
// extent shrunk so x+width <= 1 and y+height <= 1. A region is clamped,
// never silently negative-sized. Feather is clamped to [0, 1].
func (r Region) Clamped() Region {
	out := r
	out.X = clamp(r.X, 0, 1)
	out.Y = clamp(r.Y, 0, 1)
	out.Width = clamp(r.Width, 0, 1-out.X)
	out.Height = clamp(r.Height, 0, 1-out.Y)
	out.Feather = clamp(r.Feather, 0, 1)
	return out
}

// LocalAdjustment pairs a region with the parameters applied inside it.
// Callers typically populate only the basic and color groups; any group left
// out of the JSON decodes to neutral and contributes nothing.
type LocalAdjustment struct {
	Region Region      `json:"region"`
	Params ColorParams `json:"parameters"`
}

// UnmarshalJSON decodes a, defaulting an absent parameters object to
// neutral. Without this a local adjustment that names only a region would
// decode with zero-valued parameters, which are far from neutral (a zero
// temperature is a maximal cool shift, not "no change").
func (a *LocalAdjustment) UnmarshalJSON(data []byte) error {
	type plain LocalAdjustment
	v := plain{Params: Neutral()}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = LocalAdjustment(v)
	return nil
}

// DecodeLocalAdjustments parses a JSON array of local adjustments, filling
// unspecified parameter fields with neutral values.
func DecodeLocalAdjustments(data []byte) ([]LocalAdjustment, error) {
	var locals []LocalAdjustment
	if err := json.Unmarshal(data, &locals); err != nil {
		return nil, fmt.Errorf("decode local adjustments: %w", err)
	}
	return locals, nil
}
