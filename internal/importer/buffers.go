package importer

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/scenepipe/pkg/gltf"
)

// loadBuffers returns the bytes of every buffer, trimmed to its declared
// length. bin is the GLB BIN chunk and may be nil.
func (l *Loader) loadBuffers(doc *gltf.Document, dir string, bin []byte) ([][]byte, error) {
	buffers := make([][]byte, len(doc.Buffers))
	for i, b := range doc.Buffers {
		var data []byte
		switch {
		case b.URI == "" && i == 0 && bin != nil:
			data = bin
		case b.URI == "":
			return nil, fmt.Errorf("%w: buffer %d has no uri", gltf.ErrFormat, i)
		case isDataURI(b.URI):
			var err error
			if data, _, err = decodeDataURI(b.URI); err != nil {
				return nil, fmt.Errorf("buffer %d: %w", i, err)
			}
		default:
			var err error
			if data, err = l.readURI(dir, b.URI); err != nil {
				return nil, fmt.Errorf("buffer %d: %w", i, err)
			}
		}

		if len(data) < b.ByteLength {
			return nil, fmt.Errorf("%w: buffer %d holds %d bytes, byteLength is %d",
				gltf.ErrFormat, i, len(data), b.ByteLength)
		}
		buffers[i] = data[:b.ByteLength]
		l.log.Debug("loaded buffer", zap.Int("buffer", i), zap.Int("bytes", b.ByteLength))
	}
	return buffers, nil
}

// readURI reads a relative or absolute file reference.
func (l *Loader) readURI(dir, uri string) ([]byte, error) {
	name, err := url.PathUnescape(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: uri %q: %w", gltf.ErrFormat, uri, err)
	}
	data, path, err := l.assets.ReadFile(dir, name)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", gltf.ErrIO, name, err)
	}
	l.log.Debug("resolved uri", zap.String("uri", uri), zap.String("path", path))
	return data, nil
}

func isDataURI(uri string) bool {
	return strings.HasPrefix(uri, "data:")
}

// decodeDataURI decodes data:[<mediatype>][;base64],<data> and returns the
// payload with its media type.
func decodeDataURI(uri string) ([]byte, string, error) {
	rest := strings.TrimPrefix(uri, "data:")
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return nil, "", fmt.Errorf("%w: data uri without payload", gltf.ErrFormat)
	}
	mime, payload := rest[:comma], rest[comma+1:]

	if m, ok := strings.CutSuffix(mime, ";base64"); ok {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("%w: data uri: %w", gltf.ErrFormat, err)
		}
		return data, m, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: data uri: %w", gltf.ErrFormat, err)
	}
	return []byte(text), mime, nil
}
