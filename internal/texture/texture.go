// Package texture decodes embedded and external image payloads into the
// tightly packed RGBA8 pixel buffers the GPU allocator consumes.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupported is returned for payloads in no known image format.
var ErrUnsupported = errors.New("unsupported image format")

// Image is a decoded image: Width*Height pixels, 4 bytes each, row-major
// from the top-left corner.
type Image struct {
	Name   string
	Width  int
	Height int
	Pixels []byte
}

// Decode decodes data into RGBA8 pixels. The format is sniffed from the
// payload; hint (a MIME type or file name) is only consulted for formats
// without a signature, such as TGA.
func Decode(data []byte, hint string) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("empty image payload")
	}

	kind, _ := filetype.Match(data)
	if kind == filetype.Unknown {
		if isTGA(hint) {
			img, err := DecodeTGA(data)
			if err != nil {
				return Image{}, err
			}
			return fromRGBA(img), nil
		}
		return Image{}, fmt.Errorf("%w: %q", ErrUnsupported, hint)
	}

	switch kind.MIME.Value {
	case "image/png", "image/jpeg", "image/gif", "image/bmp", "image/tiff", "image/webp":
	default:
		return Image{}, fmt.Errorf("%w: %s", ErrUnsupported, kind.MIME.Value)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("decoding %s: %w", kind.MIME.Value, err)
	}
	return fromRGBA(ToRGBA(img)), nil
}

// ToRGBA converts any image.Image to *image.RGBA with origin at (0, 0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// fromRGBA packs rows tightly, dropping any stride padding.
func fromRGBA(img *image.RGBA) Image {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := Image{Width: w, Height: h}
	if img.Stride == 4*w {
		out.Pixels = img.Pix[:4*w*h]
		return out
	}
	out.Pixels = make([]byte, 0, 4*w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		out.Pixels = append(out.Pixels, row[:4*w]...)
	}
	return out
}

func isTGA(hint string) bool {
	hint = strings.ToLower(hint)
	switch hint {
	case "image/x-tga", "image/tga", "image/x-targa":
		return true
	}
	return strings.EqualFold(path.Ext(hint), ".tga")
}
