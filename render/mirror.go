package render

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/mirielengine/mscn/scene"
)

// Mirror owns every backend handle created for a scene. Buffers are keyed
// by object id so reordering or removing objects cannot mix them up.
type Mirror struct {
	backend Backend
	log     *log.Logger

	buffers  map[scene.ObjectID]Buffers
	programs map[scene.ShaderKey]uint32
	failed   map[scene.ShaderKey]bool
	textures map[string]uint32
}

func NewMirror(backend Backend, logger *log.Logger) *Mirror {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := &Mirror{backend: backend, log: logger.WithPrefix("render")}
	m.reset()
	return m
}

func (m *Mirror) reset() {
	m.buffers = make(map[scene.ObjectID]Buffers)
	m.programs = make(map[scene.ShaderKey]uint32)
	m.failed = make(map[scene.ShaderKey]bool)
	m.textures = make(map[string]uint32)
}

func (m *Mirror) Backend() Backend { return m.backend }

// TextureLoader loads each image once per mirror lifetime.
func (m *Mirror) TextureLoader() scene.TextureLoader {
	return func(name string) (uint32, error) {
		if id, ok := m.textures[name]; ok {
			return id, nil
		}
		id, err := m.backend.LoadTexture(name)
		if err != nil {
			return 0, errors.Wrapf(err, "Failed to load texture %q", name)
		}
		m.textures[name] = id
		return id, nil
	}
}

// Sync uploads new objects, frees objects that left the scene and
// compiles the pending shader combinations. It keeps going after a
// failure and returns the first one.
func (m *Mirror) Sync(s *scene.Scene) error {
	var first error
	keep := func(err error) {
		if first == nil {
			first = err
		}
	}

	present := make(map[scene.ObjectID]struct{}, s.ObjectCount())
	for _, o := range s.Objects() {
		present[o.ID] = struct{}{}
		if _, ok := m.buffers[o.ID]; ok {
			continue
		}
		b, err := m.backend.UploadObject(o)
		if err != nil {
			m.log.Error("upload failed", "object", o.Path, "err", err)
			keep(errors.Wrapf(err, "Failed to upload %s", o.Path))
			continue
		}
		m.buffers[o.ID] = b
		m.log.Debug("uploaded object", "object", o.Path, "id", o.ID, "indices", b.IndexCount)
	}
	for id, b := range m.buffers {
		if _, ok := present[id]; !ok {
			m.backend.ReleaseObject(b)
			delete(m.buffers, id)
			m.log.Debug("released object", "id", id)
		}
	}

	for _, key := range s.Shaders.Pending() {
		if m.failed[key] {
			continue
		}
		vert, frag := key.Split()
		program, err := m.backend.CompileProgram(vert, frag)
		if err != nil {
			m.failed[key] = true
			m.log.Error("shader compile failed", "shader", key, "err", err)
			keep(errors.Wrapf(err, "Failed to compile %q", key))
			continue
		}
		if err := s.Shaders.MarkLoaded(key, program); err != nil {
			m.backend.ReleaseProgram(program)
			keep(err)
			continue
		}
		m.programs[key] = program
		m.log.Debug("compiled shader", "shader", key, "program", program)
	}
	return first
}

func (m *Mirror) Buffers(id scene.ObjectID) (Buffers, bool) {
	b, ok := m.buffers[id]
	return b, ok
}

func (m *Mirror) ObjectCount() int  { return len(m.buffers) }
func (m *Mirror) ProgramCount() int { return len(m.programs) }

// Release frees every handle. It is the scene's graphics reset callback.
func (m *Mirror) Release() {
	for _, b := range m.buffers {
		m.backend.ReleaseObject(b)
	}
	for _, p := range m.programs {
		m.backend.ReleaseProgram(p)
	}
	for _, t := range m.textures {
		m.backend.ReleaseTexture(t)
	}
	m.log.Info("released graphics resources", "objects", len(m.buffers), "programs", len(m.programs), "textures", len(m.textures))
	m.reset()
}
