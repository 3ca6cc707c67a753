// Package gltf decodes glTF 2.0 scene documents and the typed arrays their
// accessors describe.
//
// Optional schema fields are pointers so that an absent value can be told
// apart from a declared zero.
package gltf

import (
	"encoding/json"
	"fmt"
)

// Document is the subset of a glTF 2.0 document the importer consumes.
type Document struct {
	Asset              Asset        `json:"asset"`
	Scene              *int         `json:"scene,omitempty"`
	Scenes             []Scene      `json:"scenes,omitempty"`
	Nodes              []Node       `json:"nodes,omitempty"`
	Meshes             []Mesh       `json:"meshes,omitempty"`
	Accessors          []Accessor   `json:"accessors,omitempty"`
	BufferViews        []BufferView `json:"bufferViews,omitempty"`
	Buffers            []Buffer     `json:"buffers,omitempty"`
	Images             []Image      `json:"images,omitempty"`
	Textures           []Texture    `json:"textures,omitempty"`
	Samplers           []Sampler    `json:"samplers,omitempty"`
	Materials          []Material   `json:"materials,omitempty"`
	ExtensionsUsed     []string     `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string     `json:"extensionsRequired,omitempty"`
}

// Asset carries version metadata.
type Asset struct {
	Version    string `json:"version"`
	MinVersion string `json:"minVersion,omitempty"`
	Generator  string `json:"generator,omitempty"`
	Copyright  string `json:"copyright,omitempty"`
}

// Scene lists root nodes.
type Scene struct {
	Nodes []int  `json:"nodes,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Node is one entry of the scene hierarchy.
type Node struct {
	Children    []int        `json:"children,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`      // Column-major.
	Translation *[3]float32  `json:"translation,omitempty"` // Default is [0, 0, 0].
	Rotation    *[4]float32  `json:"rotation,omitempty"`    // Default is [0, 0, 0, 1].
	Scale       *[3]float32  `json:"scale,omitempty"`       // Default is [1, 1, 1].
	Mesh        *int         `json:"mesh,omitempty"`
	Name        string       `json:"name,omitempty"`
}

// HasTRS reports whether any of translation, rotation or scale is declared.
func (n *Node) HasTRS() bool {
	return n.Translation != nil || n.Rotation != nil || n.Scale != nil
}

// Mesh is an ordered list of primitives.
type Mesh struct {
	Primitives []Primitive `json:"primitives"`
	Name       string      `json:"name,omitempty"`
}

// Primitive is one drawable piece of a mesh.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *Mode          `json:"mode,omitempty"` // Default is Triangles.
}

// Attribute semantics read by the importer.
const (
	AttrPosition = "POSITION"
	AttrNormal   = "NORMAL"
	AttrTangent  = "TANGENT"
	AttrTexCoord = "TEXCOORD_0"
)

// Attribute returns the accessor index bound to semantic, if any.
func (p *Primitive) Attribute(semantic string) (int, bool) {
	idx, ok := p.Attributes[semantic]
	return idx, ok
}

// Accessor is a typed, counted view into a buffer view.
type Accessor struct {
	BufferView    *int          `json:"bufferView,omitempty"` // Absent means all zeros.
	ByteOffset    int           `json:"byteOffset,omitempty"`
	ComponentType ComponentType `json:"componentType"`
	Normalized    bool          `json:"normalized,omitempty"`
	Count         int           `json:"count"`
	Type          AccessorType  `json:"type"`
	Min           []float64     `json:"min,omitempty"`
	Max           []float64     `json:"max,omitempty"`
	Name          string        `json:"name,omitempty"`
}

// ElementSize returns the packed byte size of one element.
func (a *Accessor) ElementSize() int {
	return a.ComponentType.Size() * a.Type.Arity()
}

// BufferView is a byte window into a buffer.
type BufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	ByteLength int  `json:"byteLength"`
	ByteStride *int `json:"byteStride,omitempty"`
	Target     *int `json:"target,omitempty"`
}

// Buffer is a raw byte blob, external or embedded.
type Buffer struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri,omitempty"`
	Name       string `json:"name,omitempty"`
}

// Image references pixel data by URI or by buffer view.
type Image struct {
	URI        string `json:"uri,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	Name       string `json:"name,omitempty"`
}

// Texture pairs an image with a sampler.
type Texture struct {
	Sampler *int   `json:"sampler,omitempty"`
	Source  *int   `json:"source,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Sampler holds filtering and wrapping modes.
type Sampler struct {
	MagFilter *int   `json:"magFilter,omitempty"`
	MinFilter *int   `json:"minFilter,omitempty"`
	WrapS     *int   `json:"wrapS,omitempty"`
	WrapT     *int   `json:"wrapT,omitempty"`
	Name      string `json:"name,omitempty"`
}

// Material is passed through to the shading stage untouched. Only the name
// is decoded; Raw holds the full JSON object.
type Material struct {
	Name string
	Raw  json.RawMessage
}

// UnmarshalJSON keeps the raw material object alongside its name.
func (m *Material) UnmarshalJSON(data []byte) error {
	var named struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &named); err != nil {
		return err
	}
	m.Name = named.Name
	m.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the raw material object back out.
func (m Material) MarshalJSON() ([]byte, error) {
	if len(m.Raw) == 0 {
		return json.Marshal(struct {
			Name string `json:"name,omitempty"`
		}{m.Name})
	}
	return m.Raw, nil
}

// ComponentType is the numeric type of accessor components.
type ComponentType int

// Component types.
const (
	Byte          ComponentType = 5120
	UnsignedByte  ComponentType = 5121
	Short         ComponentType = 5122
	UnsignedShort ComponentType = 5123
	UnsignedInt   ComponentType = 5125
	Float         ComponentType = 5126
)

// Size returns the byte size of one component, or 0 if unknown.
func (c ComponentType) Size() int {
	switch c {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	case UnsignedInt, Float:
		return 4
	default:
		return 0
	}
}

// String returns a human-readable component type name.
func (c ComponentType) String() string {
	switch c {
	case Byte:
		return "i8"
	case UnsignedByte:
		return "u8"
	case Short:
		return "i16"
	case UnsignedShort:
		return "u16"
	case UnsignedInt:
		return "u32"
	case Float:
		return "f32"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// AccessorType is the element shape of an accessor.
type AccessorType string

// Element shapes.
const (
	Scalar AccessorType = "SCALAR"
	Vec2   AccessorType = "VEC2"
	Vec3   AccessorType = "VEC3"
	Vec4   AccessorType = "VEC4"
	Mat2   AccessorType = "MAT2"
	Mat3   AccessorType = "MAT3"
	Mat4   AccessorType = "MAT4"
)

// Arity returns the number of components per element, or 0 if unknown.
func (t AccessorType) Arity() int {
	switch t {
	case Scalar:
		return 1
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4, Mat2:
		return 4
	case Mat3:
		return 9
	case Mat4:
		return 16
	default:
		return 0
	}
}

// Mode is a primitive draw mode.
type Mode int

// Draw modes.
const (
	Points        Mode = 0
	Lines         Mode = 1
	LineLoop      Mode = 2
	LineStrip     Mode = 3
	Triangles     Mode = 4
	TriangleStrip Mode = 5
	TriangleFan   Mode = 6
)

// Version is the only glTF version accepted.
const Version = "2.0"
