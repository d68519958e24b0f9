package render

import (
	"image"

	"github.com/gradekit/gradekit/internal/ops"
)

// Raster is a graded output image: tightly packed 8-bit RGB, row-major,
// ready for container encoding by the caller. Rasters handed out by the
// engine may be shared with the cache and must be treated as read-only.
type Raster struct {
	W, H int
	Pix  []uint8 // len = W*H*3
}

func rasterFrom(b *ops.Buffer) *Raster {
	img := b.ToNRGBA()
	r := &Raster{W: b.W, H: b.H, Pix: make([]uint8, b.W*b.H*3)}
	di := 0
	for y := 0; y < b.H; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < b.W; x++ {
			r.Pix[di] = row[x*4]
			r.Pix[di+1] = row[x*4+1]
			r.Pix[di+2] = row[x*4+2]
			di += 3
		}
	}
	return r
}

// Image returns the raster as an opaque NRGBA image for encoding. The pixel
// data is copied; mutating the result does not affect the raster.
func (r *Raster) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
	si := 0
	for y := 0; y < r.H; y++ {
		di := y * img.Stride
		for x := 0; x < r.W; x++ {
			img.Pix[di] = r.Pix[si]
			img.Pix[di+1] = r.Pix[si+1]
			img.Pix[di+2] = r.Pix[si+2]
			img.Pix[di+3] = 255
			si += 3
			di += 4
		}
	}
	return img
}
