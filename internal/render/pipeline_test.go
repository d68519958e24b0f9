package render

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gradekit/gradekit/internal/ops"
	"github.com/gradekit/gradekit/internal/params"
)

// testImage builds a w by h gradient with some chroma so every operator has
// something to chew on.
func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / (w - 1)),
				G: uint8(y * 255 / (h - 1)),
				B: uint8((x + y) * 255 / (w + h - 2)),
				A: 255,
			})
		}
	}
	return img
}

func rastersEqual(a, b *Raster) bool {
	if a.W != b.W || a.H != b.H {
		return false
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			return false
		}
	}
	return true
}

func TestNeutralRenderReproducesSource(t *testing.T) {
	src := testImage(24, 16)
	r := renderPipeline(src, params.Neutral(), nil, 0, 1)

	if r.W != 24 || r.H != 16 {
		t.Fatalf("dimensions: got %dx%d, want 24x16", r.W, r.H)
	}
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			want := src.NRGBAAt(x, y)
			i := (y*r.W + x) * 3
			if r.Pix[i] != want.R || r.Pix[i+1] != want.G || r.Pix[i+2] != want.B {
				t.Fatalf("pixel (%d, %d): got (%d, %d, %d), want (%d, %d, %d)",
					x, y, r.Pix[i], r.Pix[i+1], r.Pix[i+2], want.R, want.G, want.B)
			}
		}
	}
}

func TestPipelineDownsamplesToFit(t *testing.T) {
	src := testImage(200, 100)
	r := renderPipeline(src, params.Neutral(), nil, 50, 1)
	if r.W != 50 || r.H != 25 {
		t.Errorf("got %dx%d, want 50x25 (aspect preserved)", r.W, r.H)
	}
}

func TestPipelineNeverUpsamples(t *testing.T) {
	src := testImage(30, 20)
	r := renderPipeline(src, params.Neutral(), nil, 500, 1)
	if r.W != 30 || r.H != 20 {
		t.Errorf("got %dx%d, want original 30x20", r.W, r.H)
	}
}

func fullCanvasRect() params.Region {
	return params.Region{Type: params.RegionRect, X: 0, Y: 0, Width: 1, Height: 1}
}

func TestFullCanvasLocalMatchesGlobal(t *testing.T) {
	src := testImage(32, 32)

	global := params.Neutral()
	global.Basic.Exposure = 0.7
	direct := renderPipeline(src, global, nil, 0, 1)

	localParams := params.Neutral()
	localParams.Basic.Exposure = 0.7
	viaLocal := renderPipeline(src, params.Neutral(), []params.LocalAdjustment{
		{Region: fullCanvasRect(), Params: localParams},
	}, 0, 1)

	if !rastersEqual(direct, viaLocal) {
		t.Error("a zero-feather full-canvas local must equal the same global adjustment")
	}
}

func TestLocalsCompositeInListOrder(t *testing.T) {
	// Two overlapping full-canvas locals: each is graded from the global
	// result, so at full coverage the later one wins outright.
	src := testImage(32, 32)

	darker := params.Neutral()
	darker.Basic.Exposure = -1
	brighter := params.Neutral()
	brighter.Basic.Exposure = 1

	both := renderPipeline(src, params.Neutral(), []params.LocalAdjustment{
		{Region: fullCanvasRect(), Params: darker},
		{Region: fullCanvasRect(), Params: brighter},
	}, 0, 1)
	lastOnly := renderPipeline(src, params.Neutral(), []params.LocalAdjustment{
		{Region: fullCanvasRect(), Params: brighter},
	}, 0, 1)

	if !rastersEqual(both, lastOnly) {
		t.Error("the last full-coverage local must win over earlier ones")
	}
}

func TestLocalOutsideRegionUntouched(t *testing.T) {
	src := testImage(40, 40)
	boost := params.Neutral()
	boost.Basic.Exposure = 1.5

	r := renderPipeline(src, params.Neutral(), []params.LocalAdjustment{
		{Region: params.Region{Type: params.RegionRect, X: 0.5, Y: 0.5, Width: 0.5, Height: 0.5}, Params: boost},
	}, 0, 1)

	// A pixel in the untouched quadrant still matches the source.
	want := src.NRGBAAt(5, 5)
	i := (5*r.W + 5) * 3
	if r.Pix[i] != want.R || r.Pix[i+1] != want.G || r.Pix[i+2] != want.B {
		t.Errorf("pixel outside the region changed: got (%d, %d, %d), want (%d, %d, %d)",
			r.Pix[i], r.Pix[i+1], r.Pix[i+2], want.R, want.G, want.B)
	}

	// A pixel inside the region brightened.
	j := (30*r.W + 30) * 3
	orig := src.NRGBAAt(30, 30)
	if r.Pix[j] <= orig.R {
		t.Error("pixel inside the region should have brightened")
	}
}

func TestOperatorOrderIsFixed(t *testing.T) {
	// Fade then vignette is the pipeline's order; running the same two
	// operators in the opposite order gives a different image, so this pins
	// the sequence down.
	src := testImage(48, 48)
	p := params.Neutral()
	p.Effects.Fade = 80
	p.Effects.Vignette = -90

	got := renderPipeline(src, p, nil, 0, 1)

	inOrder := ops.FromImage(src)
	ops.Fade(inOrder, 80)
	ops.Vignette(inOrder, -90)

	reversed := ops.FromImage(src)
	ops.Vignette(reversed, -90)
	ops.Fade(reversed, 80)

	if !rastersEqual(got, rasterFrom(inOrder)) {
		t.Error("pipeline output must match fade-then-vignette")
	}
	if rastersEqual(got, rasterFrom(reversed)) {
		t.Error("order test is vacuous: both operator orders agree on this input")
	}
}

func TestPreviewMatchesExportOnFlatInput(t *testing.T) {
	// With no neighborhood operators involved, grading is per-pixel, so a
	// flat image must grade to the same color at any resolution.
	src := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i] = 160
		src.Pix[i+1] = 160
		src.Pix[i+2] = 160
		src.Pix[i+3] = 255
	}

	p := params.Neutral()
	p.Basic.Exposure = 0.4
	p.Basic.Contrast = 30
	p.Color.Temperature = 7500
	p.Effects.Fade = 20

	export := renderPipeline(src, p, nil, 0, 1)
	preview := renderPipeline(src, p, nil, 40, 1)

	if preview.W != 40 || preview.H != 40 {
		t.Fatalf("preview dimensions: got %dx%d, want 40x40", preview.W, preview.H)
	}
	for c := 0; c < 3; c++ {
		e := int(export.Pix[c])
		pv := int(preview.Pix[c])
		if d := e - pv; d < -1 || d > 1 {
			t.Errorf("channel %d: export %d vs preview %d", c, e, pv)
		}
	}
}

func TestPrepareRejectsBadCurve(t *testing.T) {
	p := params.Neutral()
	p.ToneCurve.Points = []params.CurvePoint{{0, 0}, {128, 100}, {64, 200}, {255, 255}}
	_, _, err := prepare(p, nil)
	if !errors.Is(err, params.ErrCurveNotMonotonic) {
		t.Errorf("got %v, want ErrCurveNotMonotonic", err)
	}
}

func TestPrepareRejectsBadLocalRegion(t *testing.T) {
	locals := []params.LocalAdjustment{
		{Region: fullCanvasRect(), Params: params.Neutral()},
		{Region: params.Region{Type: "triangle", Width: 0.5, Height: 0.5}, Params: params.Neutral()},
	}
	_, _, err := prepare(params.Neutral(), locals)
	var regionErr *params.ErrUnsupportedRegion
	if !errors.As(err, &regionErr) {
		t.Fatalf("got %v, want ErrUnsupportedRegion", err)
	}
}

func TestOutOfDomainCurveEndpointGradesSanely(t *testing.T) {
	// An out-of-domain first control point passes validation (the raw
	// inputs are strictly increasing) and only collides after clamping.
	// The collision must collapse cleanly: this near-identity curve moves
	// mid-gray by a few levels, not by tens.
	p := params.Neutral()
	p.ToneCurve.Points = []params.CurvePoint{{-10, 0}, {0, 5}, {128, 128}, {255, 255}}

	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i] = 64
		src.Pix[i+1] = 64
		src.Pix[i+2] = 64
		src.Pix[i+3] = 255
	}

	clamped, _, err := prepare(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	r := renderPipeline(src, clamped, nil, 0, 1)
	if got := r.Pix[0]; got < 64 || got > 70 {
		t.Errorf("mid-gray through a near-identity curve: got level %d, want 64..70", got)
	}
}

func TestPrepareClampsWithoutMutating(t *testing.T) {
	p := params.Neutral()
	p.Basic.Contrast = 500
	clamped, _, err := prepare(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if clamped.Basic.Contrast != 100 {
		t.Errorf("contrast: got %g, want clamped to 100", clamped.Basic.Contrast)
	}
	if p.Basic.Contrast != 500 {
		t.Error("prepare must not mutate its input")
	}
}

func TestRasterImageRoundTrip(t *testing.T) {
	src := testImage(8, 6)
	r := renderPipeline(src, params.Neutral(), nil, 0, 1)
	img := r.Image()
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			got := img.NRGBAAt(x, y)
			want := src.NRGBAAt(x, y)
			if got.R != want.R || got.G != want.G || got.B != want.B || got.A != 255 {
				t.Fatalf("pixel (%d, %d): got %v, want %v opaque", x, y, got, want)
			}
		}
	}
}
