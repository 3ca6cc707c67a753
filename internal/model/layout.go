package model

import "unsafe"

// Format is the data format of one vertex attribute.
type Format int

// Attribute formats.
const (
	FormatR32G32Float Format = iota
	FormatR32G32B32Float
	FormatR32G32B32A32Float
)

// Attribute locations.
const (
	LocationPosition = 0
	LocationNormal   = 1
	LocationTangent  = 2
	LocationTexCoord = 3
)

// Binding describes one vertex buffer binding.
type Binding struct {
	Binding int
	Stride  uint32
}

// Attribute describes where one attribute lives inside a vertex.
type Attribute struct {
	Location int
	Binding  int
	Format   Format
	Offset   uint32
}

// Layout is the vertex input description handed to the pipeline.
type Layout struct {
	Bindings   []Binding
	Attributes []Attribute
}

// VertexLayout returns the layout of Vertex. The texcoord attribute is only
// listed when the source primitive had texture coordinates.
func VertexLayout(hasTexCoords bool) Layout {
	var v Vertex
	l := Layout{
		Bindings: []Binding{{Binding: 0, Stride: uint32(unsafe.Sizeof(v))}},
		Attributes: []Attribute{
			{Location: LocationPosition, Format: FormatR32G32B32Float, Offset: uint32(unsafe.Offsetof(v.Position))},
			{Location: LocationNormal, Format: FormatR32G32B32Float, Offset: uint32(unsafe.Offsetof(v.Normal))},
			{Location: LocationTangent, Format: FormatR32G32B32A32Float, Offset: uint32(unsafe.Offsetof(v.Tangent))},
		},
	}
	if hasTexCoords {
		l.Attributes = append(l.Attributes, Attribute{
			Location: LocationTexCoord,
			Format:   FormatR32G32Float,
			Offset:   uint32(unsafe.Offsetof(v.TexCoord)),
		})
	}
	return l
}
