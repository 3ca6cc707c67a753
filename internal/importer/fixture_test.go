package importer

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/scenepipe/internal/model"
	"github.com/Faultbox/scenepipe/internal/texture"
	"github.com/Faultbox/scenepipe/pkg/gltf"
	"github.com/Faultbox/scenepipe/pkg/math"
)

// sceneBuilder assembles a glTF document and its single binary buffer.
type sceneBuilder struct {
	doc gltf.Document
	bin bytes.Buffer
}

func newScene() *sceneBuilder {
	return &sceneBuilder{doc: gltf.Document{Asset: gltf.Asset{Version: gltf.Version}}}
}

// view appends data, 4-byte aligned, and returns its buffer view.
func (b *sceneBuilder) view(data any) int {
	for b.bin.Len()%4 != 0 {
		b.bin.WriteByte(0)
	}
	off := b.bin.Len()
	if err := binary.Write(&b.bin, binary.LittleEndian, data); err != nil {
		panic(err)
	}
	b.doc.BufferViews = append(b.doc.BufferViews, gltf.BufferView{
		Buffer:     0,
		ByteOffset: off,
		ByteLength: b.bin.Len() - off,
	})
	return len(b.doc.BufferViews) - 1
}

func (b *sceneBuilder) accessor(typ gltf.AccessorType, ct gltf.ComponentType, count, view int) int {
	b.doc.Accessors = append(b.doc.Accessors, gltf.Accessor{
		BufferView:    intPtr(view),
		ComponentType: ct,
		Count:         count,
		Type:          typ,
	})
	return len(b.doc.Accessors) - 1
}

func (b *sceneBuilder) floats(typ gltf.AccessorType, vals ...float32) int {
	return b.accessor(typ, gltf.Float, len(vals)/typ.Arity(), b.view(vals))
}

func (b *sceneBuilder) indices(vals ...uint16) int {
	return b.accessor(gltf.Scalar, gltf.UnsignedShort, len(vals), b.view(vals))
}

func (b *sceneBuilder) mesh(name string, prims ...gltf.Primitive) int {
	b.doc.Meshes = append(b.doc.Meshes, gltf.Mesh{Name: name, Primitives: prims})
	return len(b.doc.Meshes) - 1
}

func (b *sceneBuilder) node(n gltf.Node) int {
	b.doc.Nodes = append(b.doc.Nodes, n)
	return len(b.doc.Nodes) - 1
}

func (b *sceneBuilder) scene(roots ...int) int {
	b.doc.Scenes = append(b.doc.Scenes, gltf.Scene{Nodes: roots})
	idx := len(b.doc.Scenes) - 1
	if b.doc.Scene == nil {
		b.doc.Scene = intPtr(idx)
	}
	return idx
}

// triangle adds a single-triangle mesh in the XY plane with texcoords and
// returns the node carrying it.
func (b *sceneBuilder) triangle(name string) int {
	pos := b.floats(gltf.Vec3, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	uv := b.floats(gltf.Vec2, 0, 0, 1, 0, 0, 1)
	m := b.mesh("", gltf.Primitive{Attributes: map[string]int{
		gltf.AttrPosition: pos,
		gltf.AttrTexCoord: uv,
	}})
	return b.node(gltf.Node{Name: name, Mesh: intPtr(m)})
}

// reader returns a Reader over the builder's current state.
func (b *sceneBuilder) reader() *gltf.Reader {
	return gltf.NewReader(&b.doc, [][]byte{b.bin.Bytes()})
}

// encode marshals the document, pointing buffer 0 at uri unless buffers
// were declared by the test.
func (b *sceneBuilder) encode(t *testing.T, uri string) []byte {
	t.Helper()
	if len(b.doc.Buffers) == 0 && b.bin.Len() > 0 {
		b.doc.Buffers = []gltf.Buffer{{ByteLength: b.bin.Len(), URI: uri}}
	}
	data, err := json.Marshal(&b.doc)
	if err != nil {
		t.Fatalf("marshal document: %v", err)
	}
	return data
}

// writeGLTF writes name and its companion .bin into dir.
func (b *sceneBuilder) writeGLTF(t *testing.T, dir, name string) string {
	t.Helper()
	binName := name[:len(name)-len(filepath.Ext(name))] + ".bin"
	path := filepath.Join(dir, name)
	writeFile(t, path, b.encode(t, binName))
	writeFile(t, filepath.Join(dir, binName), b.bin.Bytes())
	return path
}

// dataURI returns the document with its buffer embedded as base64.
func (b *sceneBuilder) dataURI(t *testing.T) []byte {
	t.Helper()
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(b.bin.Bytes())
	return b.encode(t, uri)
}

// glb returns the document packed as a GLB container.
func (b *sceneBuilder) glb(t *testing.T) []byte {
	t.Helper()
	if len(b.doc.Buffers) == 0 && b.bin.Len() > 0 {
		b.doc.Buffers = []gltf.Buffer{{ByteLength: b.bin.Len()}}
	}
	data, err := gltf.EncodeGLB(&b.doc, b.bin.Bytes())
	if err != nil {
		t.Fatalf("encode GLB: %v", err)
	}
	return data
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func intPtr(v int) *int { return &v }

func modePtr(m gltf.Mode) *gltf.Mode { return &m }

func near(a, b float32) bool {
	return math32.Abs(a-b) < 1e-5
}

func nearVec3(a, b math.Vec3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

// recordingAllocator remembers what it was asked to create.
type recordingAllocator struct {
	mu       sync.Mutex
	calls    int
	meshes   []model.MeshRecord
	images   []texture.Image
	textures []Texture
	err      error
}

func (a *recordingAllocator) CreateMeshes(meshes []model.MeshRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.meshes = append(a.meshes, meshes...)
	return a.err
}

func (a *recordingAllocator) CreateTextures(images []texture.Image, textures []Texture) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.images = append(a.images, images...)
	a.textures = append(a.textures, textures...)
	return nil
}

func (a *recordingAllocator) meshCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.meshes)
}
