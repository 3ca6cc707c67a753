package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(2, 1, color.NRGBA{B: 255, A: 255})

	img, err := Decode(encodePNG(t, src), "image/png")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 3 || img.Height != 2 {
		t.Fatalf("extent: got %dx%d", img.Width, img.Height)
	}
	if len(img.Pixels) != 3*2*4 {
		t.Fatalf("expected %d bytes, got %d", 3*2*4, len(img.Pixels))
	}
	if !bytes.Equal(img.Pixels[0:4], []byte{255, 0, 0, 255}) {
		t.Errorf("top-left pixel: got %v", img.Pixels[0:4])
	}
	last := (1*3 + 2) * 4
	if !bytes.Equal(img.Pixels[last:last+4], []byte{0, 0, 255, 255}) {
		t.Errorf("bottom-right pixel: got %v", img.Pixels[last:last+4])
	}
}

func TestDecodeIgnoresWrongHint(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 1, 1))
	if _, err := Decode(encodePNG(t, src), "texture.jpg"); err != nil {
		t.Errorf("sniffed format should win over hint: %v", err)
	}
}

func TestDecodeUnsupported(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		hint string
	}{
		{"garbage", []byte("definitely not an image"), "x.bin"},
		{"pdf", []byte("%PDF-1.4\n..."), "doc.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data, tt.hint); !errors.Is(err, ErrUnsupported) {
				t.Errorf("expected ErrUnsupported, got %v", err)
			}
		})
	}

	if _, err := Decode(nil, "a.png"); err == nil {
		t.Error("expected error for empty payload")
	}
}

func TestDecodeCorruptPNG(t *testing.T) {
	data := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if _, err := Decode(data[:20], ""); err == nil {
		t.Error("expected error for truncated PNG")
	}
}

func tgaHeader(imageType, bpp byte, w, h int, topToBottom bool) []byte {
	hdr := make([]byte, 18)
	hdr[2] = imageType
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = bpp
	if topToBottom {
		hdr[17] = 0x20
	}
	return hdr
}

func TestDecodeTGA(t *testing.T) {
	// 2x1 BGRA, bottom-up (a single row is the same either way).
	raw := append(tgaHeader(TGATypeUncompressed, 32, 2, 1, false),
		0, 0, 255, 255, // red
		255, 0, 0, 128, // blue, half alpha
	)

	img, err := Decode(raw, "albedo.TGA")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []byte{255, 0, 0, 255, 0, 0, 255, 128}
	if !bytes.Equal(img.Pixels, want) {
		t.Errorf("got %v, want %v", img.Pixels, want)
	}
}

func TestDecodeTGAOrigin(t *testing.T) {
	// 1x2 gray: first stored row is the bottom row unless the origin bit is set.
	body := []byte{10, 20}

	bottomUp, err := DecodeTGA(append(tgaHeader(TGATypeGray, 8, 1, 2, false), body...))
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	if bottomUp.RGBAAt(0, 0).R != 20 || bottomUp.RGBAAt(0, 1).R != 10 {
		t.Errorf("bottom-up rows: %v %v", bottomUp.RGBAAt(0, 0), bottomUp.RGBAAt(0, 1))
	}

	topDown, err := DecodeTGA(append(tgaHeader(TGATypeGray, 8, 1, 2, true), body...))
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	if topDown.RGBAAt(0, 0).R != 10 {
		t.Errorf("top-down first row: %v", topDown.RGBAAt(0, 0))
	}
}

func TestDecodeTGARLE(t *testing.T) {
	data := append(tgaHeader(TGATypeRLE, 24, 4, 1, true),
		0x82, 0, 255, 0, // run of 3 green
		0x00, 255, 0, 0, // 1 raw blue
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	for x := 0; x < 3; x++ {
		if c := img.RGBAAt(x, 0); c != (color.RGBA{G: 255, A: 255}) {
			t.Errorf("pixel %d: got %v", x, c)
		}
	}
	if c := img.RGBAAt(3, 0); c != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("pixel 3: got %v", c)
	}

	if _, err := DecodeTGA(data[:len(data)-2]); err == nil {
		t.Error("expected error for truncated RLE data")
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short", []byte{0, 0, 2}},
		{"color mapped", func() []byte { h := tgaHeader(1, 8, 1, 1, false); h[1] = 1; return h }()},
		{"bad depth", tgaHeader(TGATypeUncompressed, 16, 1, 1, false)},
		{"bad type", tgaHeader(9, 8, 1, 1, false)},
		{"truncated pixels", tgaHeader(TGATypeUncompressed, 24, 2, 2, false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestToRGBASubImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.SetRGBA(2, 2, color.RGBA{R: 9, A: 255})
	sub := src.SubImage(image.Rect(2, 2, 4, 4))

	img := fromRGBA(ToRGBA(sub))
	if img.Width != 2 || img.Height != 2 || len(img.Pixels) != 16 {
		t.Fatalf("got %dx%d with %d bytes", img.Width, img.Height, len(img.Pixels))
	}
	if img.Pixels[0] != 9 {
		t.Errorf("origin pixel: got %v", img.Pixels[0:4])
	}
}
