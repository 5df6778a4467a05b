// internal/canvas/canvas.go
//
// Puts a product image on a fixed-size square white canvas.
//   - Decode: sniff + decode (png, jpeg, gif, webp, bmp, tiff), EXIF-aware.
//     Headers are checked first so oversized images are refused unread.
//   - Normalize: shrink to fit (never enlarge), flatten to opaque RGB, center.
//   - EncodeJPEG: serialise the canvas.
//
// All arithmetic is integer except the scale factor; offsets use floor
// division so odd leftovers go to the right/bottom edge.

package canvas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

// Defaults for product images.
const (
	DefaultSize    = 1500
	DefaultQuality = 95
)

// MaxPixels caps width*height of a decoded image (same limit as Pillow's
// decompression bomb check).
const MaxPixels = 178_956_970

var (
	// ErrNotImage is returned when the bytes are not a known image format.
	ErrNotImage = errors.New("content is not an image")
	// ErrTooManyPixels is returned for images whose header declares more
	// than MaxPixels pixels.
	ErrTooManyPixels = errors.New("image dimensions too large")
)

// Decode parses image bytes and applies EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s header: %v", ErrNotImage, mt.String(), err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooManyPixels, cfg.Width, cfg.Height, MaxPixels)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", mt.String(), err)
	}
	return img, nil
}

// FitSize returns the dimensions of a w x h image shrunk to fit inside a
// target x target square with its aspect ratio kept. Images that already fit
// are returned unchanged. Each side is rounded and never drops below 1.
func FitSize(w, h, target int) (int, int) {
	if w <= target && h <= target {
		return w, h
	}
	scale := math.Min(float64(target)/float64(w), float64(target)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	return max(1, min(nw, target)), max(1, min(nh, target))
}

// Normalize returns a size x size opaque white canvas with src shrunk to fit
// and centered on it.
func Normalize(src image.Image, size int) *image.NRGBA {
	b := src.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), size)
	img := src
	if w != b.Dx() || h != b.Dy() {
		img = imaging.Resize(src, w, h, imaging.Lanczos)
	}
	img = flatten(img)

	bg := imaging.New(size, size, color.White)
	return imaging.Paste(bg, img, image.Pt((size-w)/2, (size-h)/2))
}

// EncodeJPEG serialises img as a baseline JPEG.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// flatten composites src over white so transparent regions come out white
// rather than black once alpha is dropped. Normalize calls it after the
// resize, so it only ever copies canvas-sized images.
func flatten(src image.Image) *image.NRGBA {
	b := src.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, src, image.Pt(0, 0), 1.0)
}
