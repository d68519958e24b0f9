package ops

import (
	"image"
	"image/color"
	"testing"
)

func TestFromImageToNRGBARoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	colors := []color.NRGBA{
		{0, 0, 0, 255}, {255, 255, 255, 255}, {128, 64, 32, 255},
		{10, 200, 90, 255}, {255, 0, 0, 255}, {0, 0, 255, 255},
	}
	for i, c := range colors {
		src.SetNRGBA(i%3, i/3, c)
	}

	b := FromImage(src)
	if b.W != 3 || b.H != 2 {
		t.Fatalf("dimensions: got %dx%d, want 3x2", b.W, b.H)
	}

	out := b.ToNRGBA()
	for i, c := range colors {
		got := out.NRGBAAt(i%3, i/3)
		if got.R != c.R || got.G != c.G || got.B != c.B {
			t.Errorf("pixel %d: got %v, want %v", i, got, c)
		}
		if got.A != 255 {
			t.Errorf("pixel %d: alpha %d, want opaque", i, got.A)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := gradientBuffer(8, 8)
	c := b.Clone()
	c.Pix[0] = 0.99
	if b.Pix[0] == 0.99 {
		t.Error("mutating a clone must not touch the original")
	}
}

func TestToGrayUsesLuminanceWeights(t *testing.T) {
	// Pure green carries far more luminance than pure blue.
	green := colorBuffer(0, 1, 0)
	blue := colorBuffer(0, 0, 1)
	g := green.ToGray().GrayAt(0, 0).Y
	bl := blue.ToGray().GrayAt(0, 0).Y
	if g <= bl {
		t.Errorf("green luminance %d should exceed blue %d", g, bl)
	}
	if g < 180 || g > 185 {
		t.Errorf("pure green: got %d, want about 182", g)
	}
}

func TestQuantizeRounds(t *testing.T) {
	cases := []struct {
		in   float32
		want uint8
	}{
		{0, 0},
		{1, 255},
		{0.5, 128},
		{0.002, 1},
	}
	for _, c := range cases {
		if got := quantize(c.in); got != c.want {
			t.Errorf("quantize(%g) = %d, want %d", c.in, got, c.want)
		}
	}
}
