package editor

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/mirielengine/mscn/scene"
	"github.com/mirielengine/mscn/scene/mscn"
)

const SceneExt = ".mscn"

func (e *Editor) NewScene() error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.newScene()
}

func (e *Editor) newScene() error {
	err := e.scene.NewScene()
	e.dirty = false
	e.modTime = time.Time{}
	if err != nil {
		e.log.Error("graphics reset failed", "err", err)
		return err
	}
	e.log.Info("new scene")
	return nil
}

// resolveScene prefers the path as given and falls back to the scenes dir.
func (e *Editor) resolveScene(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join(e.cfg.ScenesDir, path)
}

// LoadScene discards the current scene and reads path. On failure the
// editor is left with an empty scene.
func (e *Editor) LoadScene(path string) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.loadScene(e.resolveScene(path))
}

func (e *Editor) loadScene(file string) error {
	e.newScene()

	opts := mscn.Options{Logger: e.log}
	if e.cfg.SkipBrokenObjects {
		opts.OnImportError = func(path string, err error) error {
			e.log.Warn("skipping object", "path", path, "err", err)
			return nil
		}
	}

	start := time.Now()
	if err := mscn.DecodeFile(file, e.scene, opts); err != nil {
		e.log.Error("load scene failed", "path", file, "err", err)
		e.newScene()
		return err
	}
	e.dirty = false
	e.modTime = fileModTime(file)
	e.watch(file)
	e.log.Info("loaded scene", "path", file,
		"objects", e.scene.ObjectCount(), "instances", e.scene.InstanceCount(),
		"shaders", e.scene.Shaders.Len(), "took", time.Since(start))
	return nil
}

// SaveScene writes the scene and returns where it went. An empty path
// means the current scene file, or a fresh random name in the scenes dir
// when the scene was never saved.
func (e *Editor) SaveScene(path string) (string, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	file := path
	if file == "" {
		file = e.scene.Path
	}
	if file == "" {
		file = e.names.FreeFileName(e.cfg.ScenesDir, SceneExt)
	}

	if dir := filepath.Dir(file); dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			err = errors.Wrapf(scene.ErrFileAccess, "%s: %v", dir, err)
			e.log.Error("save scene failed", "path", file, "err", err)
			return "", err
		}
	}
	if err := mscn.EncodeFile(file, e.scene); err != nil {
		e.log.Error("save scene failed", "path", file, "err", err)
		return "", err
	}
	e.scene.Path = file
	e.dirty = false
	e.modTime = fileModTime(file)
	e.watch(file)
	e.log.Info("saved scene", "path", file)
	return file, nil
}

func fileModTime(path string) time.Time {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}
