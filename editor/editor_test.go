package editor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirielengine/mscn/config"
	"github.com/mirielengine/mscn/render"
	"github.com/mirielengine/mscn/scene"
)

type stubImporter struct{}

func (stubImporter) Import(path string, textures scene.TextureLoader) (*scene.Geometry, error) {
	if strings.HasPrefix(filepath.Base(path), "broken") {
		return nil, errors.Wrapf(scene.ErrImport, "%s: corrupt", path)
	}
	id, err := textures(path + ".png")
	if err != nil {
		return nil, err
	}
	return &scene.Geometry{
		Vertices: make([]scene.Vertex, 3),
		Indices:  []uint32{0, 1, 2},
		Textures: []scene.Texture{{ID: id, Type: scene.TextureDiffuse}},
	}, nil
}

func newEditor(t *testing.T) (*Editor, *render.Headless, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.ScenesDir = filepath.Join(t.TempDir(), "scenes")
	backend := render.NewHeadless("OpenGL")
	e := New(cfg, nil, backend, stubImporter{})
	t.Cleanup(e.Close)
	return e, backend, cfg
}

func writeScene(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0777))
	require.NoError(t, os.WriteFile(path, []byte(text), 0666))
}

func counts(e *Editor) (objects, instances int) {
	e.View(func(s *scene.Scene) {
		objects, instances = s.ObjectCount(), s.InstanceCount()
	})
	return
}

func TestInteractiveEditsAreLoggedNoops(t *testing.T) {
	e, _, _ := newEditor(t)

	_, err := e.AddObjectInstance(0)
	assert.True(t, errors.Is(err, scene.ErrInvalidIndex))
	assert.False(t, e.Dirty())

	idx, err := e.AddObject("cube.obj")
	require.NoError(t, err)
	assert.True(t, e.Dirty())

	_, err = e.AddObject("cube.obj")
	assert.True(t, errors.Is(err, scene.ErrDuplicateObject))
	_, err = e.AddObject("broken.glb")
	assert.True(t, errors.Is(err, scene.ErrImport))

	inst, err := e.AddObjectInstance(idx)
	require.NoError(t, err)
	assert.Equal(t, 1, inst)
	assert.True(t, errors.Is(e.SwitchVertexShader(idx, 5, "x.vert"), scene.ErrInvalidIndex))
	assert.True(t, errors.Is(e.SetInstanceTransform(3, 0, Transform{}), scene.ErrInvalidIndex))
	assert.True(t, errors.Is(e.SetLight(scene.PointLight, 0, mgl32.Vec3{}, mgl32.Vec3{}), scene.ErrInvalidIndex))
	_, err = e.AddParticleSpawner("", "p.frag", mgl32.Vec3{}, mgl32.Vec3{})
	assert.Error(t, err)

	objects, instances := counts(e)
	assert.Equal(t, 1, objects)
	assert.Equal(t, 2, instances)
}

func TestEditsAndFrame(t *testing.T) {
	e, backend, _ := newEditor(t)
	require.NoError(t, e.Update(func(s *scene.Scene) error {
		s.RegisterShaderPair("a.vert", "a.frag")
		return nil
	}))
	_, err := e.AddObject("cube.obj")
	require.NoError(t, err)
	require.NoError(t, e.SetInstanceTransform(0, 0, Transform{
		Translation: mgl32.Vec3{1, 2, 3},
		Scale:       mgl32.Vec3{1, 1, 1},
	}))
	require.NoError(t, e.SwitchFragmentShader(0, 0, "b.frag"))
	assert.Equal(t, 0, e.AddDirectionalLight())
	require.NoError(t, e.SetLight(scene.DirectionalLight, 0, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, -1, 0}))

	f, err := e.Frame(640, 480)
	require.NoError(t, err)
	require.Len(t, f.Draws, 1)
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), f.Draws[0].Model)
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, f.DirectionalLights[0].Value)
	assert.Equal(t, 1, backend.Live("vao"))
	assert.Equal(t, "OpenGL", e.BackendName())
}

func TestRunCompilesPendingShaders(t *testing.T) {
	e, backend, cfg := newEditor(t)
	cfg.FrameRate = 200
	require.NoError(t, e.Update(func(s *scene.Scene) error {
		s.RegisterShaderPair("basic.vert", "basic.frag")
		return nil
	}))
	_, err := e.AddObject("cube.obj")
	require.NoError(t, err)

	loaded := func() bool {
		var ok bool
		e.View(func(s *scene.Scene) {
			sh, found := s.Shaders.Lookup(scene.MakeShaderKey("basic.vert", "basic.frag"))
			ok = found && sh.Loaded
		})
		return ok
	}
	assert.False(t, loaded())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()
	require.Eventually(t, loaded, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return len(e.LastFrame().Draws) == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, 1, backend.Live("vao"))
	assert.Equal(t, 1, backend.Live("program"))
}

func TestEmptyShaderSwitchIsRejected(t *testing.T) {
	e, _, _ := newEditor(t)
	require.NoError(t, e.Update(func(s *scene.Scene) error {
		s.RegisterShaderPair("basic.vert", "basic.frag")
		return nil
	}))
	_, err := e.AddObject("cube.obj")
	require.NoError(t, err)

	assert.True(t, errors.Is(e.SwitchVertexShader(0, 0, ""), scene.ErrShaderName))
	e.View(func(s *scene.Scene) {
		inst, err := s.Instance(0, 0)
		require.NoError(t, err)
		assert.Equal(t, "basic.vert", inst.VertexShader)
	})
}

func TestSaveAndLoad(t *testing.T) {
	e, backend, cfg := newEditor(t)
	_, err := e.AddObject("cube.obj")
	require.NoError(t, err)
	e.AddPointLight()
	_, err = e.AddParticleSpawner("p.vert", "p.frag", mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 1, 1})
	require.NoError(t, err)
	e.SetCamera(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{})
	_, err = e.Frame(1, 1)
	require.NoError(t, err)

	// never saved: a random name in the scenes dir
	path, err := e.SaveScene("")
	require.NoError(t, err)
	assert.Equal(t, cfg.ScenesDir, filepath.Dir(path))
	assert.Equal(t, SceneExt, filepath.Ext(path))
	assert.Equal(t, path, e.ScenePath())
	assert.False(t, e.Dirty())

	// saved again to the same place
	again, err := e.SaveScene("")
	require.NoError(t, err)
	assert.Equal(t, path, again)

	require.NoError(t, e.NewScene())
	objects, _ := counts(e)
	assert.Equal(t, 0, objects)
	assert.Equal(t, "", e.ScenePath())
	assert.Equal(t, 0, backend.Live("vao"))

	require.NoError(t, e.LoadScene(filepath.Base(path)))
	objects, instances := counts(e)
	assert.Equal(t, 1, objects)
	assert.Equal(t, 1, instances)
	assert.Equal(t, path, e.ScenePath())
	e.View(func(s *scene.Scene) {
		assert.Len(t, s.PointLights, 1)
		assert.Len(t, s.Particles, 1)
		assert.Equal(t, mgl32.Vec3{1, 2, 3}, s.Camera.Position)
	})
}

func TestLoadFailureLeavesEmptyScene(t *testing.T) {
	e, _, cfg := newEditor(t)
	_, err := e.AddObject("cube.obj")
	require.NoError(t, err)

	err = e.LoadScene("missing.mscn")
	assert.True(t, errors.Is(err, scene.ErrFileAccess), "got %v", err)
	objects, _ := counts(e)
	assert.Equal(t, 0, objects)

	bad := filepath.Join(cfg.ScenesDir, "bad.mscn")
	writeScene(t, bad, "cube.obj { { t 1 x 1 } }")
	err = e.LoadScene(bad)
	assert.True(t, errors.Is(err, scene.ErrMalformedNumber), "got %v", err)
	objects, _ = counts(e)
	assert.Equal(t, 0, objects)
	assert.Equal(t, "", e.ScenePath())
}

func TestLoadSkipsBrokenObjects(t *testing.T) {
	e, _, cfg := newEditor(t)
	path := filepath.Join(cfg.ScenesDir, "mixed.mscn")
	writeScene(t, path, "broken.obj { { } } cube.obj { { } }")

	require.NoError(t, e.LoadScene(path))
	objects, _ := counts(e)
	assert.Equal(t, 1, objects)

	cfg.SkipBrokenObjects = false
	err := e.LoadScene(path)
	assert.True(t, errors.Is(err, scene.ErrImport), "got %v", err)
}

func TestSaveFailure(t *testing.T) {
	e, _, cfg := newEditor(t)
	_, err := e.AddObject("cube.obj")
	require.NoError(t, err)

	blocker := filepath.Join(filepath.Dir(cfg.ScenesDir), "file")
	writeScene(t, blocker, "")
	_, err = e.SaveScene(filepath.Join(blocker, "x.mscn"))
	assert.True(t, errors.Is(err, scene.ErrFileAccess), "got %v", err)
	assert.True(t, e.Dirty())
}

func TestWatchReloadsCleanScene(t *testing.T) {
	e, _, cfg := newEditor(t)
	path := filepath.Join(cfg.ScenesDir, "live.mscn")
	writeScene(t, path, "cube.obj { { } }")
	require.NoError(t, e.LoadScene(path))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Watch(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	require.Eventually(t, func() bool {
		writeScene(t, path, "cube.obj { { } { } }")
		_, instances := counts(e)
		return instances == 2
	}, 5*time.Second, 50*time.Millisecond)

	// unsaved edits win over the file on disk
	e.AddPointLight()
	writeScene(t, path, "cube.obj { { } { } { } }")
	time.Sleep(200 * time.Millisecond)
	_, instances := counts(e)
	assert.Equal(t, 2, instances)
	assert.True(t, e.Dirty())
}
