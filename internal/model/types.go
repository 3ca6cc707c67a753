// Package model holds render-ready mesh records and the geometry synthesis
// used to fill in attributes an asset leaves out.
package model

import (
	"fmt"

	"github.com/Faultbox/scenepipe/pkg/math"
)

// Vertex is one interleaved vertex as uploaded to the GPU.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	Tangent  math.Vec4 // W is the bitangent sign, +1 or -1.
	TexCoord math.Vec2
}

// Topology is how vertices or indices group into primitives.
type Topology int

// Topologies.
const (
	PointList Topology = iota
	LineList
	LineStrip
	TriangleList
	TriangleStrip
	TriangleFan
)

// String returns a human-readable topology name.
func (t Topology) String() string {
	switch t {
	case PointList:
		return "PointList"
	case LineList:
		return "LineList"
	case LineStrip:
		return "LineStrip"
	case TriangleList:
		return "TriangleList"
	case TriangleStrip:
		return "TriangleStrip"
	case TriangleFan:
		return "TriangleFan"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// MeshRecord is one primitive ready for upload.
type MeshRecord struct {
	Name     string
	World    math.Mat4
	Topology Topology
	Vertices []Vertex
	Indices  []uint32 // nil draws Vertices in order.
	Layout   Layout

	Material     *int // Index into the document's materials, if any.
	HasTexCoords bool
	Bounds       Bounds // Object space.
}

// DrawCount returns the number of indices or vertices to draw.
func (m *MeshRecord) DrawCount() int {
	if m.Indices != nil {
		return len(m.Indices)
	}
	return len(m.Vertices)
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// ComputeBounds returns the box around all vertex positions. An empty
// vertex list yields the zero box.
func ComputeBounds(vertices []Vertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: vertices[0].Position, Max: vertices[0].Position}
	for i := 1; i < len(vertices); i++ {
		updateBounds(&b, vertices[i].Position)
	}
	return b
}

// Transform returns the box around b's eight corners after m.
func (b Bounds) Transform(m math.Mat4) Bounds {
	var out Bounds
	for i := 0; i < 8; i++ {
		c := math.Vec3{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z}
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		p := m.TransformPoint(c)
		if i == 0 {
			out = Bounds{Min: p, Max: p}
			continue
		}
		updateBounds(&out, p)
	}
	return out
}

func updateBounds(b *Bounds, p math.Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}
