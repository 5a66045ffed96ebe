package editor

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// watch asks a running Watch loop to follow the directory of file.
func (e *Editor) watch(file string) {
	select {
	case e.watchDirs <- filepath.Dir(file):
	default:
	}
}

// Watch reloads the scene when its file changes on disk, unless there are
// unsaved edits. It blocks until ctx is done.
func (e *Editor) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrapf(err, "Failed to create watcher")
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if watched[dir] {
			return
		}
		if err := watcher.Add(dir); err != nil {
			e.log.Warn("cannot watch directory", "dir", dir, "err", err)
			return
		}
		watched[dir] = true
		e.log.Debug("watching", "dir", dir)
	}

	if err := os.MkdirAll(e.cfg.ScenesDir, 0777); err == nil {
		add(e.cfg.ScenesDir)
	}
	if path := e.ScenePath(); path != "" {
		add(filepath.Dir(path))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case dir := <-e.watchDirs:
			add(dir)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				e.changed(ev.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.log.Warn("watcher error", "err", err)
		}
	}
}

func (e *Editor) changed(name string) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.scene.Path == "" || filepath.Clean(name) != filepath.Clean(e.scene.Path) {
		return
	}
	// our own save, or an event for a version already loaded
	if mt := fileModTime(name); mt.IsZero() || mt.Equal(e.modTime) {
		return
	}
	if e.dirty {
		e.log.Warn("scene changed on disk, keeping unsaved edits", "path", name)
		return
	}
	e.log.Info("scene changed on disk, reloading", "path", name)
	e.loadScene(e.scene.Path)
}
