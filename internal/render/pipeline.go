package render

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/gradekit/gradekit/internal/mask"
	"github.com/gradekit/gradekit/internal/ops"
	"github.com/gradekit/gradekit/internal/params"
)

// applyAll runs every global operator over the buffer in the fixed pipeline
// order. The order is load-bearing: reordering changes visual output, and
// preview and export must agree, so this is the single place it is written
// down.
func applyAll(b *ops.Buffer, p params.ColorParams, seed int64) {
	ops.Exposure(b, p.Basic.Exposure)
	ops.Contrast(b, p.Basic.Contrast)
	ops.Highlights(b, p.Basic.Highlights)
	ops.Shadows(b, p.Basic.Shadows)
	ops.Whites(b, p.Basic.Whites)
	ops.Blacks(b, p.Basic.Blacks)

	ops.Temperature(b, p.Color.Temperature)
	ops.Tint(b, p.Color.Tint)
	ops.Vibrance(b, p.Color.Vibrance)
	ops.Saturation(b, p.Color.Saturation)

	ops.ToneCurve(b, p.ToneCurve)
	ops.HSLBands(b, p.HSL)
	ops.SplitToning(b, p.SplitToning)

	ops.Clarity(b, p.Effects.Clarity)
	ops.Texture(b, p.Effects.Texture)
	ops.Dehaze(b, p.Effects.Dehaze)
	ops.Fade(b, p.Effects.Fade)
	ops.Sharpen(b, p.Effects.Sharpening, p.Effects.SharpenRadius)
	ops.Vignette(b, p.Effects.Vignette)
	ops.Grain(b, p.Effects.Grain, seed)
}

// fitDown resizes src to fit within maxDim on its longer side, preserving
// aspect ratio. Images already small enough pass through untouched; the
// pipeline never upsamples.
func fitDown(src image.Image, maxDim int) image.Image {
	bounds := src.Bounds()
	if maxDim <= 0 || (bounds.Dx() <= maxDim && bounds.Dy() <= maxDim) {
		return src
	}
	return imaging.Fit(src, maxDim, maxDim, imaging.Lanczos)
}

// renderPipeline runs one complete render: downsample (preview only),
// global pass, then the local adjustments in list order, each applied to a
// copy of the globally-graded buffer and alpha-composited through its
// feathered region mask. Inputs must already be validated and clamped.
func renderPipeline(src image.Image, p params.ColorParams, locals []params.LocalAdjustment, maxDim int, seed int64) *Raster {
	working := ops.FromImage(fitDown(src, maxDim))

	applyAll(working, p, seed)

	if len(locals) == 0 {
		return rasterFrom(working)
	}

	global := working.Clone()
	result := working
	for i, adj := range locals {
		m := mask.Rasterize(adj.Region, result.W, result.H)
		local := global.Clone()
		// Offset the seed so stacked grain layers do not correlate.
		applyAll(local, adj.Params, seed^int64(i+1))

		pi := 0
		for px := 0; px < len(result.Pix); px += 3 {
			cov := m.Cov[pi]
			pi++
			if cov == 0 {
				continue
			}
			inv := 1 - cov
			result.Pix[px] = inv*result.Pix[px] + cov*local.Pix[px]
			result.Pix[px+1] = inv*result.Pix[px+1] + cov*local.Pix[px+1]
			result.Pix[px+2] = inv*result.Pix[px+2] + cov*local.Pix[px+2]
		}
	}
	return rasterFrom(result)
}

// prepare validates and clamps one render's parameter set, returning the
// copies the pipeline will actually use. Validation failures surface before
// any pixel work: a non-monotonic tone curve or an unsupported region type
// rejects the render call outright, while plain out-of-range numerics are
// clamped silently.
func prepare(p params.ColorParams, locals []params.LocalAdjustment) (params.ColorParams, []params.LocalAdjustment, error) {
	if err := p.Validate(); err != nil {
		return params.ColorParams{}, nil, fmt.Errorf("global params: %w", err)
	}
	clamped := p.Clamped()

	out := make([]params.LocalAdjustment, len(locals))
	for i, adj := range locals {
		if err := adj.Region.Validate(); err != nil {
			return params.ColorParams{}, nil, fmt.Errorf("local adjustment %d: %w", i, err)
		}
		if err := adj.Params.Validate(); err != nil {
			return params.ColorParams{}, nil, fmt.Errorf("local adjustment %d: %w", i, err)
		}
		out[i] = params.LocalAdjustment{
			Region: adj.Region.Clamped(),
			Params: adj.Params.Clamped(),
		}
	}
	return clamped, out, nil
}
