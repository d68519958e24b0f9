// Package codec encodes graded rasters into container formats.
//
// The render engine hands back raw RGB rasters; encoding to JPEG, PNG or
// TIFF at a caller-chosen quality is this package's job, kept out of the
// engine so the pixel pipeline stays free of I/O concerns.
package codec

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"
)

// Supported output formats.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatTIFF = "tiff"
)

// DefaultQuality is the JPEG quality used when the caller does not specify
// one.
const DefaultQuality = 95

// Encode writes img to w in the named format and returns the MIME type.
// quality applies to JPEG only and is clamped to [1, 100].
func Encode(w io.Writer, img image.Image, format string, quality int) (string, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	switch strings.ToLower(format) {
	case FormatJPEG, "jpg":
		if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return "", fmt.Errorf("encode jpeg: %w", err)
		}
		return "image/jpeg", nil
	case FormatPNG:
		if err := imaging.Encode(w, img, imaging.PNG); err != nil {
			return "", fmt.Errorf("encode png: %w", err)
		}
		return "image/png", nil
	case FormatTIFF, "tif":
		if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return "", fmt.Errorf("encode tiff: %w", err)
		}
		return "image/tiff", nil
	default:
		return "", fmt.Errorf("unsupported output format %q", format)
	}
}

// FormatFromExt maps a file extension to an output format name, defaulting
// to JPEG for unknown extensions.
func FormatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG
	case ".tif", ".tiff":
		return FormatTIFF
	default:
		return FormatJPEG
	}
}
