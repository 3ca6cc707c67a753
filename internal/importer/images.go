package importer

import (
	"fmt"
	"path"

	"go.uber.org/zap"

	"github.com/Faultbox/scenepipe/internal/texture"
	"github.com/Faultbox/scenepipe/pkg/gltf"
)

// loadImages resolves every image to bytes and decodes it to RGBA8. When
// decoding is disabled the payloads are still resolved, so missing files
// fail the import either way, but no pixels are produced.
func (l *Loader) loadImages(doc *gltf.Document, reader *gltf.Reader, dir string) ([]texture.Image, error) {
	if len(doc.Images) == 0 {
		return nil, nil
	}

	var images []texture.Image
	if l.decodeImages {
		images = make([]texture.Image, 0, len(doc.Images))
	}
	for i := range doc.Images {
		img := &doc.Images[i]
		data, hint, err := l.imageBytes(img, reader, dir)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		if !l.decodeImages {
			continue
		}

		decoded, err := texture.Decode(data, hint)
		if err != nil {
			return nil, fmt.Errorf("%w: image %d: %w", gltf.ErrIO, i, err)
		}
		decoded.Name = img.Name
		images = append(images, decoded)
		l.log.Debug("decoded image",
			zap.Int("image", i),
			zap.Int("width", decoded.Width),
			zap.Int("height", decoded.Height))
	}
	return images, nil
}

// imageBytes returns the payload of img and a format hint for decoders that
// cannot sniff their input.
func (l *Loader) imageBytes(img *gltf.Image, reader *gltf.Reader, dir string) ([]byte, string, error) {
	switch {
	case img.URI != "" && isDataURI(img.URI):
		data, mime, err := decodeDataURI(img.URI)
		if err != nil {
			return nil, "", err
		}
		if img.MimeType != "" {
			mime = img.MimeType
		}
		return data, mime, nil
	case img.URI != "":
		data, err := l.readURI(dir, img.URI)
		if err != nil {
			return nil, "", err
		}
		hint := img.MimeType
		if hint == "" {
			hint = path.Base(img.URI)
		}
		return data, hint, nil
	case img.BufferView != nil:
		data, err := reader.ViewBytes(*img.BufferView)
		if err != nil {
			return nil, "", err
		}
		return data, img.MimeType, nil
	default:
		return nil, "", fmt.Errorf("%w: image has neither uri nor bufferView", gltf.ErrFormat)
	}
}

// textures pairs each glTF texture with its image and sampler state.
// Textures without a source are dropped.
func textures(doc *gltf.Document) []Texture {
	var out []Texture
	for _, t := range doc.Textures {
		if t.Source == nil {
			continue
		}
		s := texture.DefaultSampler()
		if t.Sampler != nil {
			gs := &doc.Samplers[*t.Sampler]
			s = texture.SamplerFromGL(gs.MagFilter, gs.MinFilter, gs.WrapS, gs.WrapT)
		}
		out = append(out, Texture{Name: t.Name, Image: *t.Source, Sampler: s})
	}
	return out
}
