package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeGray         = 3  // Uncompressed grayscale
	TGATypeRLE          = 10 // RLE compressed true-color
	TGATypeGrayRLE      = 11 // RLE compressed grayscale
)

// DecodeTGA decodes a TGA image. Supports true-color (24/32 bpp) and
// grayscale (8 bpp) images, uncompressed or RLE compressed.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	switch imageType {
	case TGATypeUncompressed, TGATypeRLE:
		if bpp != 24 && bpp != 32 {
			return nil, fmt.Errorf("unsupported TGA bit depth %d for true-color", bpp)
		}
	case TGATypeGray, TGATypeGrayRLE:
		if bpp != 8 {
			return nil, fmt.Errorf("unsupported TGA bit depth %d for grayscale", bpp)
		}
	default:
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("TGA data truncated")
	}

	d := tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		pix:         data[offset:],
		width:       width,
		height:      height,
		bpp:         bpp / 8,
		topToBottom: descriptor&0x20 != 0,
	}

	var err error
	if imageType == TGATypeRLE || imageType == TGATypeGrayRLE {
		err = d.decodeRLE()
	} else {
		err = d.decodeRaw()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img           *image.RGBA
	pix           []byte
	width, height int
	bpp           int
	topToBottom   bool
}

// color reads one BGR(A) or gray pixel at i.
func (d *tgaDecoder) color(i int) color.RGBA {
	if d.bpp == 1 {
		v := d.pix[i]
		return color.RGBA{R: v, G: v, B: v, A: 255}
	}
	c := color.RGBA{R: d.pix[i+2], G: d.pix[i+1], B: d.pix[i], A: 255}
	if d.bpp == 4 {
		c.A = d.pix[i+3]
	}
	return c
}

// set writes the n-th pixel in file order, honoring the origin bit.
func (d *tgaDecoder) set(n int, c color.RGBA) {
	x, y := n%d.width, n/d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	d.img.SetRGBA(x, y, c)
}

func (d *tgaDecoder) decodeRaw() error {
	count := d.width * d.height
	if len(d.pix) < count*d.bpp {
		return fmt.Errorf("TGA pixel data truncated")
	}
	for n := 0; n < count; n++ {
		d.set(n, d.color(n*d.bpp))
	}
	return nil
}

func (d *tgaDecoder) decodeRLE() error {
	count := d.width * d.height
	n, i := 0, 0

	for n < count {
		if i >= len(d.pix) {
			return fmt.Errorf("TGA RLE data truncated at pixel %d of %d", n, count)
		}
		packet := d.pix[i]
		i++
		run := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run-length packet: one pixel repeated.
			if i+d.bpp > len(d.pix) {
				return fmt.Errorf("TGA RLE data truncated at pixel %d of %d", n, count)
			}
			c := d.color(i)
			i += d.bpp
			for k := 0; k < run && n < count; k++ {
				d.set(n, c)
				n++
			}
			continue
		}

		for k := 0; k < run && n < count; k++ {
			if i+d.bpp > len(d.pix) {
				return fmt.Errorf("TGA RLE data truncated at pixel %d of %d", n, count)
			}
			d.set(n, d.color(i))
			i += d.bpp
			n++
		}
	}
	return nil
}
