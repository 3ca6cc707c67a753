package importer

import (
	"fmt"

	"github.com/Faultbox/scenepipe/internal/model"
	"github.com/Faultbox/scenepipe/pkg/gltf"
)

// topologyOf maps a glTF draw mode to a topology. Line loops have no
// equivalent and are rejected.
func topologyOf(mode *gltf.Mode) (model.Topology, error) {
	if mode == nil {
		return model.TriangleList, nil
	}
	switch *mode {
	case gltf.Points:
		return model.PointList, nil
	case gltf.Lines:
		return model.LineList, nil
	case gltf.LineStrip:
		return model.LineStrip, nil
	case gltf.Triangles:
		return model.TriangleList, nil
	case gltf.TriangleStrip:
		return model.TriangleStrip, nil
	case gltf.TriangleFan:
		return model.TriangleFan, nil
	default:
		return 0, fmt.Errorf("%w: unsupported primitive mode %d", gltf.ErrFormat, int(*mode))
	}
}

// assemble builds a mesh record from one primitive. ok is false when the
// primitive has no POSITION attribute and should be skipped. Name and World
// are left for the caller.
func assemble(r *gltf.Reader, p *gltf.Primitive) (rec model.MeshRecord, ok bool, err error) {
	topo, err := topologyOf(p.Mode)
	if err != nil {
		return rec, false, err
	}

	var indices []uint32
	if p.Indices != nil {
		if indices, err = r.Uint32s(*p.Indices, gltf.IndexTypes); err != nil {
			return rec, false, fmt.Errorf("indices: %w", err)
		}
	}

	posIdx, hasPos := p.Attribute(gltf.AttrPosition)
	if !hasPos {
		return rec, false, nil
	}
	positions, err := r.Vec3s(posIdx, gltf.FloatOnly, false)
	if err != nil {
		return rec, false, fmt.Errorf("%s: %w", gltf.AttrPosition, err)
	}
	count := len(positions)

	vertices := make([]model.Vertex, count)
	for i, pos := range positions {
		vertices[i].Position = pos
	}

	hasTexCoords := false
	if idx, ok := p.Attribute(gltf.AttrTexCoord); ok {
		uvs, err := r.Vec2s(idx, gltf.FloatOnly, true)
		if err != nil {
			return rec, false, fmt.Errorf("%s: %w", gltf.AttrTexCoord, err)
		}
		if err := checkCount(gltf.AttrTexCoord, len(uvs), count); err != nil {
			return rec, false, err
		}
		for i, uv := range uvs {
			vertices[i].TexCoord = uv
		}
		hasTexCoords = true
	}

	hasNormals := false
	if idx, ok := p.Attribute(gltf.AttrNormal); ok {
		normals, err := r.Vec3s(idx, gltf.FloatOnly, true)
		if err != nil {
			return rec, false, fmt.Errorf("%s: %w", gltf.AttrNormal, err)
		}
		if err := checkCount(gltf.AttrNormal, len(normals), count); err != nil {
			return rec, false, err
		}
		for i, n := range normals {
			vertices[i].Normal = n
		}
		hasNormals = true
	}

	hasTangents := false
	if idx, ok := p.Attribute(gltf.AttrTangent); ok {
		tangents, err := r.Vec4s(idx, gltf.FloatOnly, true)
		if err != nil {
			return rec, false, fmt.Errorf("%s: %w", gltf.AttrTangent, err)
		}
		if err := checkCount(gltf.AttrTangent, len(tangents), count); err != nil {
			return rec, false, err
		}
		for i, t := range tangents {
			vertices[i].Tangent = t
		}
		hasTangents = true
	}

	for i, idx := range indices {
		if int(idx) >= count {
			return rec, false, fmt.Errorf("%w: index %d is %d, vertex count is %d", gltf.ErrFormat, i, idx, count)
		}
	}

	if !hasTangents && !hasTexCoords {
		return rec, false, fmt.Errorf("%w: cannot generate tangent space without %s", gltf.ErrFormat, gltf.AttrTexCoord)
	}
	// Point and line topologies yield no triangles, so every vertex takes the
	// fallback frame: +Y normal and a perpendicular tangent with W = +1.
	tris := model.Triangles(topo, indices, count)
	if !hasNormals {
		model.GenerateNormals(vertices, tris)
	}
	if !hasTangents {
		model.GenerateTangents(vertices, tris)
	}

	rec = model.MeshRecord{
		Topology:     topo,
		Vertices:     vertices,
		Indices:      indices,
		Layout:       model.VertexLayout(hasTexCoords),
		Material:     p.Material,
		HasTexCoords: hasTexCoords,
		Bounds:       model.ComputeBounds(vertices),
	}
	return rec, true, nil
}

func checkCount(attr string, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: %s has %d elements, POSITION has %d", gltf.ErrFormat, attr, got, want)
	}
	return nil
}
