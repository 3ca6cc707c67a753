package gltf

import (
	"encoding/binary"
	"fmt"
	stdmath "math"

	"github.com/Faultbox/scenepipe/pkg/math"
)

// Reader decodes accessors against a set of loaded buffers. It borrows the
// buffers for the lifetime of one import and never copies them.
type Reader struct {
	doc     *Document
	buffers [][]byte
}

// NewReader returns a Reader over doc whose buffers[i] holds the bytes of
// doc.Buffers[i].
func NewReader(doc *Document, buffers [][]byte) *Reader {
	return &Reader{doc: doc, buffers: buffers}
}

// Element is a target type for typed accessor reads.
type Element interface {
	float32 | uint32 | math.Vec2 | math.Vec3 | math.Vec4 | math.Mat4
}

// Request describes what a caller expects from an accessor.
type Request struct {
	Shape      AccessorType
	Components []ComponentType // Empty allows any component type.
	ZeroFill   bool            // Accessors without a buffer view read as zeros.
}

// MaxZeroFill caps the element count of an accessor that has no buffer
// view. Such accessors are not backed by bytes, so their count is the only
// thing that sizes the allocation.
const MaxZeroFill = 1 << 24

// Component sets shared by the importer.
var (
	FloatOnly   = []ComponentType{Float}
	IndexTypes  = []ComponentType{UnsignedShort, UnsignedInt}
	AnyUnsigned = []ComponentType{UnsignedByte, UnsignedShort, UnsignedInt}
)

// ReadTypedArray decodes accessor index into a slice of T.
//
// The accessor's shape must equal req.Shape and its component type must be
// in req.Components when that list is non-empty. Components are widened to
// float64 or uint32 and then narrowed into T; a combination that cannot be
// represented, such as signed components into uint32, is a format error.
func ReadTypedArray[T Element](r *Reader, index int, req Request) ([]T, error) {
	if !inRange(index, len(r.doc.Accessors)) {
		return nil, fmt.Errorf("%w: accessor %d of %d", ErrFormat, index, len(r.doc.Accessors))
	}
	acc := &r.doc.Accessors[index]

	if acc.Type != req.Shape {
		return nil, fmt.Errorf("%w: accessor %d is %s, want %s", ErrFormat, index, acc.Type, req.Shape)
	}
	if len(req.Components) > 0 && !contains(req.Components, acc.ComponentType) {
		return nil, fmt.Errorf("%w: accessor %d has component type %s, want one of %v",
			ErrFormat, index, acc.ComponentType, req.Components)
	}
	if acc.ComponentType.Size() == 0 {
		return nil, fmt.Errorf("%w: accessor %d has componentType %d", ErrFormat, index, int(acc.ComponentType))
	}

	var zero T
	if err := checkTarget(any(zero), acc); err != nil {
		return nil, fmt.Errorf("accessor %d: %w", index, err)
	}
	if acc.Count < 0 {
		return nil, fmt.Errorf("%w: accessor %d has negative count", ErrFormat, index)
	}

	if acc.BufferView == nil {
		if !req.ZeroFill {
			return nil, fmt.Errorf("%w: accessor %d has no bufferView", ErrFormat, index)
		}
		if acc.Count > MaxZeroFill {
			return nil, fmt.Errorf("%w: accessor %d has no bufferView and count %d exceeds %d",
				ErrFormat, index, acc.Count, MaxZeroFill)
		}
		return make([]T, acc.Count), nil
	}

	// The window bounds count by the bytes behind it, so the allocation
	// below never exceeds what the buffer can back.
	data, stride, err := r.window(index, acc)
	if err != nil {
		return nil, err
	}

	out := make([]T, acc.Count)
	layout := layoutOf(acc)
	var comps [16]float64
	for i := range out {
		elem := data[i*stride:]
		for c := 0; c < layout.cols; c++ {
			for row := 0; row < layout.rows; row++ {
				off := c*layout.colStride + row*layout.compSize
				comps[c*layout.rows+row] = component(elem[off:], acc.ComponentType, acc.Normalized)
			}
		}
		store(&out[i], &comps)
	}
	return out, nil
}

// window resolves the byte range an accessor covers and the element stride.
func (r *Reader) window(index int, acc *Accessor) ([]byte, int, error) {
	vi := *acc.BufferView
	if !inRange(vi, len(r.doc.BufferViews)) {
		return nil, 0, fmt.Errorf("%w: accessor %d references bufferView %d of %d",
			ErrFormat, index, vi, len(r.doc.BufferViews))
	}
	view := &r.doc.BufferViews[vi]
	if !inRange(view.Buffer, len(r.buffers)) {
		return nil, 0, fmt.Errorf("%w: bufferView %d references buffer %d of %d",
			ErrFormat, vi, view.Buffer, len(r.buffers))
	}
	buf := r.buffers[view.Buffer]

	size := layoutOf(acc).size
	stride := size
	if view.ByteStride != nil && *view.ByteStride > 0 {
		stride = *view.ByteStride
	}

	if acc.ByteOffset < 0 || view.ByteOffset < 0 {
		return nil, 0, fmt.Errorf("%w: accessor %d has a negative byte offset", ErrFormat, index)
	}
	avail := view.ByteLength - acc.ByteOffset
	if acc.Count > 0 && (avail < size || acc.Count-1 > (avail-size)/stride) {
		return nil, 0, fmt.Errorf("%w: accessor %d holds %d elements of %d bytes, bufferView %d has %d bytes after offset %d",
			ErrFormat, index, acc.Count, size, vi, max(avail, 0), acc.ByteOffset)
	}

	need := 0
	if acc.Count > 0 {
		need = stride*(acc.Count-1) + size
	}
	start := view.ByteOffset + acc.ByteOffset
	if acc.ByteOffset+need > view.ByteLength {
		return nil, 0, fmt.Errorf("%w: accessor %d needs %d bytes at offset %d, bufferView %d is %d bytes",
			ErrFormat, index, need, acc.ByteOffset, vi, view.ByteLength)
	}
	if start+need > len(buf) {
		return nil, 0, fmt.Errorf("%w: accessor %d needs bytes [%d, %d), buffer %d is %d bytes",
			ErrFormat, index, start, start+need, view.Buffer, len(buf))
	}
	return buf[start : start+need], stride, nil
}

// ViewBytes returns the bytes covered by a buffer view.
func (r *Reader) ViewBytes(vi int) ([]byte, error) {
	if !inRange(vi, len(r.doc.BufferViews)) {
		return nil, fmt.Errorf("%w: bufferView %d of %d", ErrFormat, vi, len(r.doc.BufferViews))
	}
	view := &r.doc.BufferViews[vi]
	if !inRange(view.Buffer, len(r.buffers)) {
		return nil, fmt.Errorf("%w: bufferView %d references buffer %d of %d",
			ErrFormat, vi, view.Buffer, len(r.buffers))
	}
	buf := r.buffers[view.Buffer]
	end := view.ByteOffset + view.ByteLength
	if end > len(buf) {
		return nil, fmt.Errorf("%w: bufferView %d ends at %d, buffer %d is %d bytes",
			ErrFormat, vi, end, view.Buffer, len(buf))
	}
	return buf[view.ByteOffset:end], nil
}

// Uint32s reads a SCALAR accessor of unsigned components as uint32.
func (r *Reader) Uint32s(index int, allowed []ComponentType) ([]uint32, error) {
	return ReadTypedArray[uint32](r, index, Request{Shape: Scalar, Components: allowed})
}

// Scalars reads a SCALAR accessor as float32.
func (r *Reader) Scalars(index int, allowed []ComponentType, zeroFill bool) ([]float32, error) {
	return ReadTypedArray[float32](r, index, Request{Shape: Scalar, Components: allowed, ZeroFill: zeroFill})
}

// Vec2s reads a VEC2 accessor.
func (r *Reader) Vec2s(index int, allowed []ComponentType, zeroFill bool) ([]math.Vec2, error) {
	return ReadTypedArray[math.Vec2](r, index, Request{Shape: Vec2, Components: allowed, ZeroFill: zeroFill})
}

// Vec3s reads a VEC3 accessor.
func (r *Reader) Vec3s(index int, allowed []ComponentType, zeroFill bool) ([]math.Vec3, error) {
	return ReadTypedArray[math.Vec3](r, index, Request{Shape: Vec3, Components: allowed, ZeroFill: zeroFill})
}

// Vec4s reads a VEC4 accessor.
func (r *Reader) Vec4s(index int, allowed []ComponentType, zeroFill bool) ([]math.Vec4, error) {
	return ReadTypedArray[math.Vec4](r, index, Request{Shape: Vec4, Components: allowed, ZeroFill: zeroFill})
}

// Mat4s reads a MAT4 accessor.
func (r *Reader) Mat4s(index int, allowed []ComponentType, zeroFill bool) ([]math.Mat4, error) {
	return ReadTypedArray[math.Mat4](r, index, Request{Shape: Mat4, Components: allowed, ZeroFill: zeroFill})
}

// elementLayout describes where the components of one element sit.
// Matrix columns start on 4-byte boundaries.
type elementLayout struct {
	rows, cols int
	compSize   int
	colStride  int
	size       int
}

func layoutOf(acc *Accessor) elementLayout {
	cs := acc.ComponentType.Size()
	l := elementLayout{rows: acc.Type.Arity(), cols: 1, compSize: cs}
	switch acc.Type {
	case Mat2:
		l.rows, l.cols = 2, 2
	case Mat3:
		l.rows, l.cols = 3, 3
	case Mat4:
		l.rows, l.cols = 4, 4
	}
	l.colStride = l.rows * cs
	if l.cols > 1 {
		l.colStride = (l.colStride + 3) &^ 3
	}
	l.size = l.cols * l.colStride
	return l
}

// checkTarget rejects (shape, component type, target) combinations that
// cannot be converted.
func checkTarget(target any, acc *Accessor) error {
	var arity int
	unsignedOnly := false
	switch target.(type) {
	case float32:
		arity = 1
	case uint32:
		arity, unsignedOnly = 1, true
	case math.Vec2:
		arity = 2
	case math.Vec3:
		arity = 3
	case math.Vec4:
		if acc.Type != Vec4 {
			return fmt.Errorf("%w: %s cannot be read as Vec4", ErrFormat, acc.Type)
		}
		arity = 4
	case math.Mat4:
		arity = 16
	}
	if arity != acc.Type.Arity() {
		return fmt.Errorf("%w: %s has %d components, target has %d", ErrFormat, acc.Type, acc.Type.Arity(), arity)
	}
	if unsignedOnly && !contains(AnyUnsigned, acc.ComponentType) {
		return fmt.Errorf("%w: %s components cannot be read as uint32", ErrFormat, acc.ComponentType)
	}
	return nil
}

// component decodes one little-endian component. Normalized integer
// components map to [0, 1] or [-1, 1].
func component(b []byte, ct ComponentType, normalized bool) float64 {
	switch ct {
	case Byte:
		v := float64(int8(b[0]))
		if normalized {
			return max(v/127, -1)
		}
		return v
	case UnsignedByte:
		v := float64(b[0])
		if normalized {
			return v / 255
		}
		return v
	case Short:
		v := float64(int16(binary.LittleEndian.Uint16(b)))
		if normalized {
			return max(v/32767, -1)
		}
		return v
	case UnsignedShort:
		v := float64(binary.LittleEndian.Uint16(b))
		if normalized {
			return v / 65535
		}
		return v
	case UnsignedInt:
		return float64(binary.LittleEndian.Uint32(b))
	case Float:
		return float64(stdmath.Float32frombits(binary.LittleEndian.Uint32(b)))
	default:
		return 0
	}
}

// store narrows decoded components into one target element.
func store[T Element](dst *T, c *[16]float64) {
	switch d := any(dst).(type) {
	case *float32:
		*d = float32(c[0])
	case *uint32:
		*d = uint32(c[0])
	case *math.Vec2:
		*d = math.Vec2{X: float32(c[0]), Y: float32(c[1])}
	case *math.Vec3:
		*d = math.Vec3{X: float32(c[0]), Y: float32(c[1]), Z: float32(c[2])}
	case *math.Vec4:
		*d = math.Vec4{X: float32(c[0]), Y: float32(c[1]), Z: float32(c[2]), W: float32(c[3])}
	case *math.Mat4:
		for i := range d {
			d[i] = float32(c[i])
		}
	}
}

func contains(set []ComponentType, ct ComponentType) bool {
	for _, c := range set {
		if c == ct {
			return true
		}
	}
	return false
}
