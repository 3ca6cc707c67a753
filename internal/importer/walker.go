package importer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/scenepipe/internal/model"
	"github.com/Faultbox/scenepipe/pkg/gltf"
	"github.com/Faultbox/scenepipe/pkg/math"
)

// walker flattens a node hierarchy into mesh records.
type walker struct {
	doc    *gltf.Document
	reader *gltf.Reader
	source string
	log    *zap.Logger
}

// frame is one node on the traversal stack.
type frame struct {
	node  int
	world math.Mat4
	next  int // Index of the next child to visit.
}

// Walk visits the subtree rooted at node with an explicit stack. Children
// are visited in order before their parent's own primitives, so a node's
// records follow those of all its descendants. A node reached again while
// it is still on the current path is a cycle; a node shared by two parents
// is simply visited twice.
func (w *walker) Walk(node int, parent math.Mat4) ([]model.MeshRecord, error) {
	if node < 0 || node >= len(w.doc.Nodes) {
		return nil, fmt.Errorf("%w: node %d of %d", gltf.ErrFormat, node, len(w.doc.Nodes))
	}

	onPath := make(map[int]bool)
	stack := []frame{{node: node, world: parent.Mul(w.local(node))}}
	onPath[node] = true

	var records []model.MeshRecord
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		n := &w.doc.Nodes[top.node]

		if top.next < len(n.Children) {
			child := n.Children[top.next]
			top.next++
			if child < 0 || child >= len(w.doc.Nodes) {
				return nil, fmt.Errorf("%w: node %d child %d of %d", gltf.ErrFormat, top.node, child, len(w.doc.Nodes))
			}
			if onPath[child] {
				return nil, fmt.Errorf("%w: node cycle through node %d", gltf.ErrFormat, child)
			}
			onPath[child] = true
			stack = append(stack, frame{node: child, world: top.world.Mul(w.local(child))})
			continue
		}

		done := *top
		stack = stack[:len(stack)-1]
		delete(onPath, done.node)

		recs, err := w.emit(done.node, done.world)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

// local returns a node's transform relative to its parent. An explicit
// matrix wins over translation, rotation and scale.
func (w *walker) local(i int) math.Mat4 {
	n := &w.doc.Nodes[i]
	if n.Matrix != nil {
		if n.HasTRS() {
			w.log.Warn("node has both matrix and TRS, using matrix",
				zap.Int("node", i), zap.String("name", n.Name))
		}
		return math.Mat4(*n.Matrix)
	}

	t := math.Vec3{}
	r := math.QuatIdentity()
	s := math.Vec3{X: 1, Y: 1, Z: 1}
	if n.Translation != nil {
		t = math.Vec3{X: n.Translation[0], Y: n.Translation[1], Z: n.Translation[2]}
	}
	if n.Rotation != nil {
		r = math.Quat{X: n.Rotation[0], Y: n.Rotation[1], Z: n.Rotation[2], W: n.Rotation[3]}
	}
	if n.Scale != nil {
		s = math.Vec3{X: n.Scale[0], Y: n.Scale[1], Z: n.Scale[2]}
	}
	return math.TRS(t, r, s)
}

// emit assembles the primitives of a node's mesh.
func (w *walker) emit(i int, world math.Mat4) ([]model.MeshRecord, error) {
	n := &w.doc.Nodes[i]
	if n.Mesh == nil {
		return nil, nil
	}
	mi := *n.Mesh
	if mi < 0 || mi >= len(w.doc.Meshes) {
		return nil, fmt.Errorf("%w: node %d references mesh %d of %d", gltf.ErrFormat, i, mi, len(w.doc.Meshes))
	}
	mesh := &w.doc.Meshes[mi]

	var records []model.MeshRecord
	for pi := range mesh.Primitives {
		rec, ok, err := assemble(w.reader, &mesh.Primitives[pi])
		if err != nil {
			return nil, fmt.Errorf("node %d mesh %d primitive %d: %w", i, mi, pi, err)
		}
		if !ok {
			w.log.Debug("primitive has no positions, skipping",
				zap.Int("node", i), zap.Int("mesh", mi), zap.Int("primitive", pi))
			continue
		}
		rec.Name = recordName(w.source, n.Name, i, mesh.Name, pi)
		rec.World = world
		records = append(records, rec)
	}
	return records, nil
}

// recordName labels a record as path:node:mesh, using names where the asset
// provides them and indices otherwise.
func recordName(source, nodeName string, node int, meshName string, prim int) string {
	nn := nodeName
	if nn == "" {
		nn = fmt.Sprint(node)
	}
	mn := meshName
	if mn == "" {
		mn = fmt.Sprint(prim)
	}
	return source + ":" + nn + ":" + mn
}
