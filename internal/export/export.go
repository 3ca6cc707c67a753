// Package export writes imported mesh records back out as a flattened glTF
// document: one node per record carrying its world matrix, one mesh per
// node, all geometry in a single external buffer.
package export

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/scenepipe/internal/model"
)

// Document builds a glTF document from records. bufferName is the URI the
// geometry buffer is written under.
func Document(records []model.MeshRecord, bufferName string) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "scenepipe"

	for i := range records {
		rec := &records[i]
		prim := &gltf.Primitive{
			Mode:       primitiveMode(rec.Topology),
			Attributes: make(map[string]uint32),
		}

		positions := make([][3]float32, len(rec.Vertices))
		for j, v := range rec.Vertices {
			positions[j] = [3]float32{v.Position.X, v.Position.Y, v.Position.Z}
		}
		prim.Attributes[gltf.POSITION] = modeler.WritePosition(doc, positions)

		normals := make([][3]float32, len(rec.Vertices))
		tangents := make([][4]float32, len(rec.Vertices))
		for j, v := range rec.Vertices {
			normals[j] = [3]float32{v.Normal.X, v.Normal.Y, v.Normal.Z}
			tangents[j] = [4]float32{v.Tangent.X, v.Tangent.Y, v.Tangent.Z, v.Tangent.W}
		}
		prim.Attributes[gltf.NORMAL] = modeler.WriteNormal(doc, normals)
		prim.Attributes[gltf.TANGENT] = modeler.WriteTangent(doc, tangents)

		if rec.HasTexCoords {
			uvs := make([][2]float32, len(rec.Vertices))
			for j, v := range rec.Vertices {
				uvs[j] = [2]float32{v.TexCoord.X, v.TexCoord.Y}
			}
			prim.Attributes[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(doc, uvs)
		}

		if rec.Indices != nil {
			prim.Indices = gltf.Index(modeler.WriteIndices(doc, rec.Indices))
		}

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name:       rec.Name,
			Primitives: []*gltf.Primitive{prim},
		})
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:   rec.Name,
			Mesh:   gltf.Index(uint32(len(doc.Meshes) - 1)),
			Matrix: [16]float32(rec.World),
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}

	for _, b := range doc.Buffers {
		b.URI = bufferName
	}
	return doc
}

// Save writes records to path as .gltf plus a companion buffer file. An
// empty bufferName derives one from path.
func Save(records []model.MeshRecord, path, bufferName string) error {
	if bufferName == "" {
		bufferName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".bin"
	}
	doc := Document(records, bufferName)
	if err := gltf.Save(doc, path); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}
	return nil
}

func primitiveMode(t model.Topology) gltf.PrimitiveMode {
	switch t {
	case model.PointList:
		return gltf.PrimitivePoints
	case model.LineList:
		return gltf.PrimitiveLines
	case model.LineStrip:
		return gltf.PrimitiveLineStrip
	case model.TriangleStrip:
		return gltf.PrimitiveTriangleStrip
	case model.TriangleFan:
		return gltf.PrimitiveTriangleFan
	default:
		return gltf.PrimitiveTriangles
	}
}
