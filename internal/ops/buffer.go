package ops

import (
	"image"
)

// Rec.709 luminance weights, matching the weights used throughout the
// operator library.
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

// Buffer is the render working surface: interleaved RGB float32 samples in
// [0, 1], row-major with origin at the top-left. All operators read and
// write buffers in place; the pipeline clones when it needs to keep a copy.
type Buffer struct {
	W, H int
	Pix  []float32 // len = W*H*3
}

// NewBuffer allocates a zeroed (black) buffer.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{W: w, H: h, Pix: make([]float32, w*h*3)}
}

// FromImage converts a decoded image into a working buffer. Alpha is
// dropped; the engine grades opaque RGB rasters.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf := NewBuffer(w, h)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			buf.Pix[i] = float32(r) / 65535.0
			buf.Pix[i+1] = float32(g) / 65535.0
			buf.Pix[i+2] = float32(b) / 65535.0
			i += 3
		}
	}
	return buf
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{W: b.W, H: b.H, Pix: make([]float32, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// ToNRGBA converts the buffer to an 8-bit opaque NRGBA image, rounding each
// sample to the nearest level.
func (b *Buffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.W, b.H))
	si := 0
	for y := 0; y < b.H; y++ {
		di := y * img.Stride
		for x := 0; x < b.W; x++ {
			img.Pix[di] = quantize(b.Pix[si])
			img.Pix[di+1] = quantize(b.Pix[si+1])
			img.Pix[di+2] = quantize(b.Pix[si+2])
			img.Pix[di+3] = 255
			si += 3
			di += 4
		}
	}
	return img
}

// ToGray converts the buffer's Rec.709 luminance to an 8-bit grayscale
// image, used as the blur input for luminance-domain detail operators.
func (b *Buffer) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.W, b.H))
	si := 0
	for y := 0; y < b.H; y++ {
		di := y * img.Stride
		for x := 0; x < b.W; x++ {
			img.Pix[di] = quantize(luminance(b.Pix[si], b.Pix[si+1], b.Pix[si+2]))
			si += 3
			di++
		}
	}
	return img
}

// minDim returns the smaller of the buffer's dimensions, the base for
// resolution-relative blur radii.
func (b *Buffer) minDim() int {
	if b.W < b.H {
		return b.W
	}
	return b.H
}

func quantize(v float32) uint8 {
	s := v*255 + 0.5
	if s <= 0 {
		return 0
	}
	if s >= 255 {
		return 255
	}
	return uint8(s)
}

func luminance(r, g, b float32) float32 {
	return lumR*r + lumG*g + lumB*b
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
