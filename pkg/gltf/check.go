package gltf

import "fmt"

// Check verifies that every index reference in the document resolves and
// that accessors and views carry legal values. It does not touch buffer
// contents; byte ranges are checked when an accessor is read.
func (d *Document) Check() error {
	if d.Scene != nil && !inRange(*d.Scene, len(d.Scenes)) {
		return refErr("scene", 0, "scenes", *d.Scene)
	}
	for i, s := range d.Scenes {
		for _, n := range s.Nodes {
			if !inRange(n, len(d.Nodes)) {
				return refErr("scene", i, "nodes", n)
			}
		}
	}
	for i := range d.Nodes {
		if err := d.checkNode(i); err != nil {
			return err
		}
	}
	for i := range d.Meshes {
		if err := d.checkMesh(i); err != nil {
			return err
		}
	}
	for i := range d.Accessors {
		if err := d.checkAccessor(i); err != nil {
			return err
		}
	}
	for i, v := range d.BufferViews {
		if !inRange(v.Buffer, len(d.Buffers)) {
			return refErr("bufferView", i, "buffers", v.Buffer)
		}
		if v.ByteOffset < 0 || v.ByteLength < 0 {
			return fmt.Errorf("%w: bufferView %d has negative offset or length", ErrFormat, i)
		}
		if s := v.ByteStride; s != nil && (*s < 4 || *s > 252 || *s%4 != 0) {
			return fmt.Errorf("%w: bufferView %d has byteStride %d", ErrFormat, i, *s)
		}
	}
	for i, b := range d.Buffers {
		if b.ByteLength < 0 {
			return fmt.Errorf("%w: buffer %d has negative byteLength", ErrFormat, i)
		}
	}
	for i, img := range d.Images {
		if img.BufferView != nil && !inRange(*img.BufferView, len(d.BufferViews)) {
			return refErr("image", i, "bufferViews", *img.BufferView)
		}
	}
	for i, t := range d.Textures {
		if t.Source != nil && !inRange(*t.Source, len(d.Images)) {
			return refErr("texture", i, "images", *t.Source)
		}
		if t.Sampler != nil && !inRange(*t.Sampler, len(d.Samplers)) {
			return refErr("texture", i, "samplers", *t.Sampler)
		}
	}
	return nil
}

func (d *Document) checkNode(i int) error {
	n := &d.Nodes[i]
	for _, c := range n.Children {
		if !inRange(c, len(d.Nodes)) {
			return refErr("node", i, "nodes", c)
		}
	}
	if n.Mesh != nil && !inRange(*n.Mesh, len(d.Meshes)) {
		return refErr("node", i, "meshes", *n.Mesh)
	}
	return nil
}

func (d *Document) checkMesh(i int) error {
	for j, p := range d.Meshes[i].Primitives {
		for sem, a := range p.Attributes {
			if !inRange(a, len(d.Accessors)) {
				return fmt.Errorf("%w: mesh %d primitive %d attribute %s references accessor %d of %d",
					ErrFormat, i, j, sem, a, len(d.Accessors))
			}
		}
		if p.Indices != nil && !inRange(*p.Indices, len(d.Accessors)) {
			return fmt.Errorf("%w: mesh %d primitive %d indices reference accessor %d of %d",
				ErrFormat, i, j, *p.Indices, len(d.Accessors))
		}
		if p.Material != nil && !inRange(*p.Material, len(d.Materials)) {
			return fmt.Errorf("%w: mesh %d primitive %d references material %d of %d",
				ErrFormat, i, j, *p.Material, len(d.Materials))
		}
	}
	return nil
}

func (d *Document) checkAccessor(i int) error {
	a := &d.Accessors[i]
	if a.BufferView != nil && !inRange(*a.BufferView, len(d.BufferViews)) {
		return refErr("accessor", i, "bufferViews", *a.BufferView)
	}
	if a.ComponentType.Size() == 0 {
		return fmt.Errorf("%w: accessor %d has componentType %d", ErrFormat, i, int(a.ComponentType))
	}
	if a.Type.Arity() == 0 {
		return fmt.Errorf("%w: accessor %d has type %q", ErrFormat, i, string(a.Type))
	}
	if a.Count < 0 || a.ByteOffset < 0 {
		return fmt.Errorf("%w: accessor %d has negative count or offset", ErrFormat, i)
	}
	return nil
}

func inRange(idx, n int) bool {
	return idx >= 0 && idx < n
}

func refErr(kind string, i int, target string, idx int) error {
	return fmt.Errorf("%w: %s %d references %s[%d] out of range", ErrFormat, kind, i, target, idx)
}
