// Package importer converts model files into scene geometry.
package importer

import (
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/mirielengine/mscn/scene"
)

// Importer resolves relative model paths against ModelsDir and dispatches
// on the file extension.
type Importer struct {
	ModelsDir string
	Logger    *log.Logger
}

func New(modelsDir string, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Importer{ModelsDir: modelsDir, Logger: logger.WithPrefix("importer")}
}

func (imp *Importer) Resolve(path string) string {
	if filepath.IsAbs(path) || imp.ModelsDir == "" {
		return filepath.FromSlash(path)
	}
	return filepath.Join(imp.ModelsDir, filepath.FromSlash(path))
}

func (imp *Importer) Import(path string, textures scene.TextureLoader) (*scene.Geometry, error) {
	file := imp.Resolve(path)
	l := imp.logger()

	var g *scene.Geometry
	var err error
	switch filepath.Ext(file) {
	case ".gltf", ".glb":
		g, err = importGltf(file, textures, l)
	case ".obj":
		g, err = importObj(file, textures, l)
	default:
		err = errors.Errorf("unsupported model format %q", filepath.Ext(file))
	}
	if err != nil {
		return nil, errors.Wrapf(scene.ErrImport, "%s: %v", path, err)
	}
	l.Info("imported model", "path", path, "vertices", len(g.Vertices), "triangles", len(g.Indices)/3, "textures", len(g.Textures))
	return g, nil
}

func (imp *Importer) logger() *log.Logger {
	if imp.Logger == nil {
		return log.New(io.Discard)
	}
	return imp.Logger
}

// textureCache calls the loader once per image path.
type textureCache struct {
	load   scene.TextureLoader
	loaded map[string]uint32
	list   []scene.Texture
	seen   map[scene.Texture]bool
}

func newTextureCache(load scene.TextureLoader) *textureCache {
	return &textureCache{
		load:   load,
		loaded: make(map[string]uint32),
		seen:   make(map[scene.Texture]bool),
	}
}

func (tc *textureCache) add(path string, typ scene.TextureType) error {
	path = filepath.ToSlash(path)
	id, ok := tc.loaded[path]
	if !ok {
		if tc.load == nil {
			return errors.Wrapf(scene.ErrNoTextureLoader, "texture %s", path)
		}
		var err error
		if id, err = tc.load(path); err != nil {
			return errors.Wrapf(err, "texture %s", path)
		}
		tc.loaded[path] = id
	}
	t := scene.Texture{ID: id, Type: typ, Path: path}
	if !tc.seen[t] {
		tc.seen[t] = true
		tc.list = append(tc.list, t)
	}
	return nil
}

// Null produces empty geometry for every path. Tools that only rewrite
// scene files use it to skip reading models.
type Null struct{}

func (Null) Import(path string, textures scene.TextureLoader) (*scene.Geometry, error) {
	return &scene.Geometry{}, nil
}
