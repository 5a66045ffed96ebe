// Package editor holds the editing authority over a scene. Every access to
// the scene model goes through the editor lock.
package editor

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mirielengine/mscn/config"
	"github.com/mirielengine/mscn/importer"
	"github.com/mirielengine/mscn/render"
	"github.com/mirielengine/mscn/scene"
	"github.com/mirielengine/mscn/utils"
)

type Editor struct {
	lock sync.RWMutex

	cfg    *config.Config
	log    *log.Logger
	scene  *scene.Scene
	mirror *render.Mirror
	names  *utils.RandomNameGenerator

	dirty   bool
	modTime time.Time

	watchDirs chan string

	frameLock sync.Mutex
	lastFrame render.Frame
}

// New creates an editor with an empty scene. A nil importer reads models
// from cfg.ModelsDir.
func New(cfg *config.Config, logger *log.Logger, backend render.Backend, imp scene.Importer) *Editor {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if imp == nil {
		imp = importer.New(cfg.ModelsDir, logger)
	}

	e := &Editor{
		cfg:       cfg,
		log:       logger.WithPrefix("editor"),
		mirror:    render.NewMirror(backend, logger),
		names:     utils.NewRandomNameGenerator(time.Now().UnixNano()),
		watchDirs: make(chan string, 4),
	}
	e.scene = scene.New(imp)
	e.scene.SetTextureLoader(e.mirror.TextureLoader())
	e.scene.SetGraphicsReset(e.mirror.Release)
	return e
}

func (e *Editor) View(fn func(s *scene.Scene)) {
	e.lock.RLock()
	defer e.lock.RUnlock()
	fn(e.scene)
}

// Update runs fn under the write lock and marks the scene edited when fn succeeds.
func (e *Editor) Update(fn func(s *scene.Scene) error) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if err := fn(e.scene); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

// Frame brings the renderer mirror up to date and lists what to draw.
func (e *Editor) Frame(width, height int) (render.Frame, error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	err := e.mirror.Sync(e.scene)
	return e.mirror.Frame(e.scene, width, height), err
}

func (e *Editor) Dirty() bool {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return e.dirty
}

func (e *Editor) ScenePath() string {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return e.scene.Path
}

func (e *Editor) BackendName() string {
	return e.mirror.Backend().Name()
}

// mutate is the common path of the interactive operations: failures are
// logged and leave the scene untouched.
func (e *Editor) mutate(op string, fn func() error, keyvals ...interface{}) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if err := fn(); err != nil {
		e.log.Error(op+" failed", append(keyvals, "err", err)...)
		return err
	}
	e.dirty = true
	e.log.Info(op, keyvals...)
	return nil
}

func (e *Editor) AddObject(path string) (int, error) {
	idx := -1
	err := e.mutate("add object", func() (err error) {
		idx, err = e.scene.AddObject(path)
		return err
	}, "path", path)
	return idx, err
}

// AddObjectInstance returns the index of the new instance within its object.
func (e *Editor) AddObjectInstance(objectIndex int) (int, error) {
	idx := -1
	err := e.mutate("add instance", func() error {
		if _, err := e.scene.AddObjectInstance(objectIndex); err != nil {
			return err
		}
		idx = len(e.scene.Instances(objectIndex)) - 1
		return nil
	}, "object", objectIndex)
	return idx, err
}

func (e *Editor) AddPointLight() int {
	idx := -1
	e.mutate("add light", func() error {
		idx = e.scene.AddPointLight()
		return nil
	}, "type", scene.PointLight)
	return idx
}

func (e *Editor) AddDirectionalLight() int {
	idx := -1
	e.mutate("add light", func() error {
		idx = e.scene.AddDirectionalLight()
		return nil
	}, "type", scene.DirectionalLight)
	return idx
}

func (e *Editor) SwitchVertexShader(objectIndex, instanceIndex int, name string) error {
	return e.mutate("switch vertex shader", func() error {
		return e.scene.SwitchVertexShader(objectIndex, instanceIndex, name)
	}, "object", objectIndex, "instance", instanceIndex, "shader", name)
}

func (e *Editor) SwitchFragmentShader(objectIndex, instanceIndex int, name string) error {
	return e.mutate("switch fragment shader", func() error {
		return e.scene.SwitchFragmentShader(objectIndex, instanceIndex, name)
	}, "object", objectIndex, "instance", instanceIndex, "shader", name)
}

type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Vec3
	Scale       mgl32.Vec3
}

func (e *Editor) SetInstanceTransform(objectIndex, instanceIndex int, t Transform) error {
	return e.mutate("set transform", func() error {
		inst, err := e.scene.Instance(objectIndex, instanceIndex)
		if err != nil {
			return err
		}
		inst.SetTranslation(t.Translation)
		inst.SetRotation(t.Rotation)
		inst.SetScale(t.Scale)
		return nil
	}, "object", objectIndex, "instance", instanceIndex)
}

func (e *Editor) SetLight(t scene.LightType, index int, color, value mgl32.Vec3) error {
	return e.mutate("set light", func() error {
		l, err := e.scene.Light(t, index)
		if err != nil {
			return err
		}
		l.Color = color
		l.Value = value
		return nil
	}, "type", t, "index", index)
}

func (e *Editor) AddParticleSpawner(vert, frag string, position, color mgl32.Vec3) (int, error) {
	idx := -1
	err := e.mutate("add particle spawner", func() error {
		if vert == "" || frag == "" {
			return errors.Errorf("particle spawner needs both shaders, got %q %q", vert, frag)
		}
		idx = e.scene.AddParticleSpawner(scene.ParticleSpawner{
			VertexShader:   vert,
			FragmentShader: frag,
			Position:       position,
			Color:          color,
		})
		return nil
	}, "vert", vert, "frag", frag)
	return idx, err
}

func (e *Editor) SetCamera(position, target mgl32.Vec3) {
	e.mutate("set camera", func() error {
		e.scene.SetCamera(position, target)
		return nil
	})
}

// Close frees renderer resources. The editor is unusable afterwards.
func (e *Editor) Close() {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.mirror.Release()
}
