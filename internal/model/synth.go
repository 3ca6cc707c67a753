package model

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/scenepipe/pkg/math"
)

// Triangles enumerates the triangles of a primitive. indices may be nil, in
// which case vertices are taken in order. Strips alternate winding so every
// triangle keeps the orientation of the first. Non-triangle topologies and
// indices past vertexCount yield no triangles.
func Triangles(t Topology, indices []uint32, vertexCount int) [][3]uint32 {
	n := vertexCount
	if indices != nil {
		n = len(indices)
	}
	at := func(i int) uint32 {
		if indices != nil {
			return indices[i]
		}
		return uint32(i)
	}

	var tris [][3]uint32
	add := func(a, b, c int) {
		tri := [3]uint32{at(a), at(b), at(c)}
		for _, v := range tri {
			if int(v) >= vertexCount {
				return
			}
		}
		tris = append(tris, tri)
	}

	switch t {
	case TriangleList:
		for i := 0; i+2 < n; i += 3 {
			add(i, i+1, i+2)
		}
	case TriangleStrip:
		for i := 0; i+2 < n; i++ {
			if i%2 == 0 {
				add(i, i+1, i+2)
			} else {
				add(i+1, i, i+2)
			}
		}
	case TriangleFan:
		for i := 1; i+1 < n; i++ {
			add(0, i, i+1)
		}
	}
	return tris
}

// GenerateNormals overwrites vertex normals with the unweighted sum of the
// unit face normals of every triangle touching each vertex, normalized.
// Degenerate triangles contribute nothing. A vertex no face reaches gets +Y.
func GenerateNormals(vertices []Vertex, tris [][3]uint32) {
	accum := make([]math.Vec3, len(vertices))
	for _, tri := range tris {
		p0, p1, p2 := vertices[tri[0]].Position, vertices[tri[1]].Position, vertices[tri[2]].Position
		n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
		for _, idx := range tri {
			accum[idx] = accum[idx].Add(n)
		}
	}

	for i := range vertices {
		if accum[i].Length() < 1e-6 {
			vertices[i].Normal = math.Vec3{X: 0, Y: 1, Z: 0}
			continue
		}
		vertices[i].Normal = accum[i].Normalize()
	}
}

// GenerateTangents overwrites vertex tangents from positions and texcoords.
//
// Each triangle solves its edges against its UV deltas for a tangent and
// bitangent, which are summed per vertex. The sum is orthogonalized against
// the vertex normal and normalized; W is -1 when the accumulated bitangent
// points away from cross(N, T). A vertex without a usable contribution gets
// an arbitrary unit tangent perpendicular to its normal with W = +1.
func GenerateTangents(vertices []Vertex, tris [][3]uint32) {
	tan := make([]math.Vec3, len(vertices))
	bitan := make([]math.Vec3, len(vertices))

	for _, tri := range tris {
		v0, v1, v2 := &vertices[tri[0]], &vertices[tri[1]], &vertices[tri[2]]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		d1 := v1.TexCoord.Sub(v0.TexCoord)
		d2 := v2.TexCoord.Sub(v0.TexCoord)

		det := d1.X*d2.Y - d2.X*d1.Y
		if math32.Abs(det) < 1e-12 {
			continue
		}
		r := 1 / det
		t := e1.Scale(d2.Y).Sub(e2.Scale(d1.Y)).Scale(r)
		b := e2.Scale(d1.X).Sub(e1.Scale(d2.X)).Scale(r)

		for _, idx := range tri {
			tan[idx] = tan[idx].Add(t)
			bitan[idx] = bitan[idx].Add(b)
		}
	}

	for i := range vertices {
		n := vertices[i].Normal
		t := tan[i].Sub(n.Scale(n.Dot(tan[i])))
		if t.Length() < 1e-6 {
			p := perpendicular(n)
			vertices[i].Tangent = math.Vec4{X: p.X, Y: p.Y, Z: p.Z, W: 1}
			continue
		}
		t = t.Normalize()

		w := float32(1)
		if n.Cross(t).Dot(bitan[i]) < 0 {
			w = -1
		}
		vertices[i].Tangent = math.Vec4{X: t.X, Y: t.Y, Z: t.Z, W: w}
	}
}

// perpendicular returns a unit vector orthogonal to n, or +X for a zero n.
func perpendicular(n math.Vec3) math.Vec3 {
	n = n.Normalize()
	if n == (math.Vec3{}) {
		return math.Vec3{X: 1}
	}
	axis := math.Vec3{X: 1}
	if math32.Abs(n.X) > 0.9 {
		axis = math.Vec3{Y: 1}
	}
	return axis.Sub(n.Scale(n.Dot(axis))).Normalize()
}
