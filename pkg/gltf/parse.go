package gltf

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// GLB container constants.
const (
	glbMagic      = 0x46546c67 // "glTF"
	glbVersion    = 2
	glbHeaderSize = 12
	chunkJSON     = 0x4e4f534a
	chunkBIN      = 0x004e4942
)

// IsGLB reports whether data starts with a binary glTF header.
func IsGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == glbMagic
}

// Decode parses either a JSON document or a GLB container. For GLB input the
// BIN chunk payload is returned as well; it is nil otherwise.
func Decode(data []byte) (*Document, []byte, error) {
	if IsGLB(data) {
		return ParseGLB(data)
	}
	doc, err := Parse(data)
	return doc, nil, err
}

// Parse decodes a JSON glTF document and checks its version and references.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding JSON: %w", ErrFormat, err)
	}
	if err := checkVersion(&doc.Asset); err != nil {
		return nil, err
	}
	if err := doc.Check(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ParseGLB decodes a GLB container: a 12-byte header, a JSON chunk, and an
// optional BIN chunk. Unknown chunks after those are skipped.
func ParseGLB(data []byte) (*Document, []byte, error) {
	if len(data) < glbHeaderSize {
		return nil, nil, fmt.Errorf("%w: truncated GLB header", ErrFormat)
	}
	r := bytes.NewReader(data)

	var header struct {
		Magic   uint32
		Version uint32
		Length  uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, nil, fmt.Errorf("%w: reading GLB header: %w", ErrFormat, err)
	}
	if header.Magic != glbMagic {
		return nil, nil, fmt.Errorf("%w: bad GLB magic 0x%08X", ErrFormat, header.Magic)
	}
	if header.Version != glbVersion {
		return nil, nil, fmt.Errorf("%w: unsupported version: GLB container %d", ErrFormat, header.Version)
	}
	if int(header.Length) > len(data) {
		return nil, nil, fmt.Errorf("%w: GLB declares %d bytes, have %d", ErrFormat, header.Length, len(data))
	}
	data = data[:header.Length]

	var (
		jsonChunk []byte
		binChunk  []byte
	)
	for off := glbHeaderSize; off < len(data); {
		if off+8 > len(data) {
			return nil, nil, fmt.Errorf("%w: truncated GLB chunk header at %d", ErrFormat, off)
		}
		length := int(binary.LittleEndian.Uint32(data[off:]))
		typ := binary.LittleEndian.Uint32(data[off+4:])
		start := off + 8
		if length < 0 || start+length > len(data) {
			return nil, nil, fmt.Errorf("%w: GLB chunk at %d overruns container", ErrFormat, off)
		}
		payload := data[start : start+length]

		switch {
		case jsonChunk == nil && typ == chunkJSON:
			jsonChunk = payload
		case jsonChunk == nil:
			return nil, nil, fmt.Errorf("%w: first GLB chunk is not JSON", ErrFormat)
		case binChunk == nil && typ == chunkBIN:
			binChunk = payload
		}
		off = start + length
	}
	if jsonChunk == nil {
		return nil, nil, fmt.Errorf("%w: GLB has no JSON chunk", ErrFormat)
	}

	doc, err := Parse(jsonChunk)
	if err != nil {
		return nil, nil, err
	}
	return doc, binChunk, nil
}

// EncodeGLB packs a document and optional binary payload into a GLB container.
// Chunks are padded to four bytes, JSON with spaces and BIN with zeros.
func EncodeGLB(doc *Document, bin []byte) ([]byte, error) {
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding JSON: %w", ErrFormat, err)
	}
	js = pad(js, ' ')

	total := glbHeaderSize + 8 + len(js)
	if bin != nil {
		bin = pad(append([]byte(nil), bin...), 0)
		total += 8 + len(bin)
	}

	var buf bytes.Buffer
	buf.Grow(total)
	w := func(v uint32) { _ = binary.Write(&buf, binary.LittleEndian, v) }
	w(glbMagic)
	w(glbVersion)
	w(uint32(total))
	w(uint32(len(js)))
	w(chunkJSON)
	buf.Write(js)
	if bin != nil {
		w(uint32(len(bin)))
		w(chunkBIN)
		buf.Write(bin)
	}
	return buf.Bytes(), nil
}

func pad(b []byte, fill byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, fill)
	}
	return b
}

// checkVersion accepts a document when either its version or its minimum
// version is exactly 2.0.
func checkVersion(a *Asset) error {
	if a.Version == Version || a.MinVersion == Version {
		return nil
	}
	return fmt.Errorf("%w: unsupported version %q (minVersion %q)", ErrFormat, a.Version, a.MinVersion)
}
