// Package importer turns glTF 2.0 assets into render-ready mesh records.
//
// Import runs entirely on the calling goroutine and touches no shared state
// beyond the asset file cache, so independent imports may run concurrently.
// GPU work is deferred: Load returns an Upload to be run later on a thread
// that owns the device.
package importer

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/scenepipe/internal/assets"
	"github.com/Faultbox/scenepipe/internal/model"
	"github.com/Faultbox/scenepipe/internal/texture"
	"github.com/Faultbox/scenepipe/pkg/gltf"
	"github.com/Faultbox/scenepipe/pkg/math"
)

// Allocator creates GPU resources from imported data.
type Allocator interface {
	CreateMeshes(meshes []model.MeshRecord) error
	CreateTextures(images []texture.Image, textures []Texture) error
}

// Texture pairs an image index with its sampler state.
type Texture struct {
	Name    string
	Image   int // Index into Asset.Images.
	Sampler texture.Sampler
}

// Asset is the CPU-side result of one import.
type Asset struct {
	Path     string
	Document *gltf.Document
	Meshes   []model.MeshRecord
	Images   []texture.Image
	Textures []Texture
}

// Upload hands an imported asset to the allocator. It must run on a thread
// allowed to create GPU resources.
type Upload func() error

// Options configures a Loader.
type Options struct {
	Logger       *zap.Logger
	Assets       *assets.Manager // Shared file cache and content directories.
	DecodeImages bool
}

// Loader imports assets and binds them to an allocator.
type Loader struct {
	alloc        Allocator
	log          *zap.Logger
	assets       *assets.Manager
	decodeImages bool
}

// NewLoader creates a loader. A nil logger discards output and a nil asset
// manager gets a private one with no content directories.
func NewLoader(alloc Allocator, opts Options) *Loader {
	l := &Loader{
		alloc:        alloc,
		log:          opts.Logger,
		assets:       opts.Assets,
		decodeImages: opts.DecodeImages,
	}
	if l.log == nil {
		l.log = zap.NewNop()
	}
	if l.assets == nil {
		l.assets = assets.NewManager()
	}
	return l
}

// Assets returns the loader's file manager.
func (l *Loader) Assets() *assets.Manager {
	return l.assets
}

// Load imports path now and returns the deferred upload. If the import
// failed, the returned Upload reports that error without touching the
// allocator.
func (l *Loader) Load(path string) Upload {
	asset, err := l.Import(path)
	if err != nil {
		return func() error { return err }
	}
	return func() error { return l.Upload(asset) }
}

// Upload hands a finished import to the allocator.
func (l *Loader) Upload(asset *Asset) error {
	if l.alloc == nil {
		return fmt.Errorf("importer: no allocator configured for %s", asset.Path)
	}
	if err := l.alloc.CreateMeshes(asset.Meshes); err != nil {
		return fmt.Errorf("creating meshes for %s: %w", asset.Path, err)
	}
	if len(asset.Images) > 0 || len(asset.Textures) > 0 {
		if err := l.alloc.CreateTextures(asset.Images, asset.Textures); err != nil {
			return fmt.Errorf("creating textures for %s: %w", asset.Path, err)
		}
	}
	return nil
}

// Import reads and imports a .gltf or .glb file.
func (l *Loader) Import(path string) (*Asset, error) {
	data, err := l.assets.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", gltf.ErrIO, path, err)
	}
	return l.ImportBytes(path, data)
}

// ImportBytes imports an asset already in memory. path names the asset in
// mesh records and anchors relative URIs.
func (l *Loader) ImportBytes(path string, data []byte) (*Asset, error) {
	log := l.log.With(zap.String("asset", path))

	doc, bin, err := gltf.Decode(data)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)

	buffers, err := l.loadBuffers(doc, dir, bin)
	if err != nil {
		return nil, err
	}
	reader := gltf.NewReader(doc, buffers)

	images, err := l.loadImages(doc, reader, dir)
	if err != nil {
		return nil, err
	}
	// Textures index into images, so they are only usable once decoded.
	var texs []Texture
	if l.decodeImages {
		texs = textures(doc)
	}

	roots, err := sceneRoots(doc, log)
	if err != nil {
		return nil, err
	}

	w := &walker{doc: doc, reader: reader, source: path, log: log}
	var meshes []model.MeshRecord
	for _, root := range roots {
		recs, err := w.Walk(root, math.Identity())
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, recs...)
	}

	log.Debug("imported asset",
		zap.Int("meshes", len(meshes)),
		zap.Int("buffers", len(buffers)),
		zap.Int("images", len(images)))

	return &Asset{
		Path:     path,
		Document: doc,
		Meshes:   meshes,
		Images:   images,
		Textures: texs,
	}, nil
}

// sceneRoots picks the nodes to walk: the roots of the declared scene, or of
// scene 0 when none is declared. A document without scenes walks node 0.
func sceneRoots(doc *gltf.Document, log *zap.Logger) ([]int, error) {
	scene := 0
	if doc.Scene != nil {
		scene = *doc.Scene
	} else {
		log.Warn("no default scene declared, using 0")
	}

	if len(doc.Scenes) == 0 {
		if len(doc.Nodes) == 0 {
			return nil, nil
		}
		log.Warn("document has no scenes, walking node 0")
		return []int{0}, nil
	}
	if scene < 0 || scene >= len(doc.Scenes) {
		return nil, fmt.Errorf("%w: scene %d of %d", gltf.ErrFormat, scene, len(doc.Scenes))
	}
	return doc.Scenes[scene].Nodes, nil
}
