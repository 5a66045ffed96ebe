package editor

import (
	"context"
	"time"

	"github.com/mirielengine/mscn/render"
)

// Run drives the render mirror at cfg.FrameRate until ctx is done. Each
// tick uploads new objects and compiles pending shaders; the resulting
// frame is kept for LastFrame.
func (e *Editor) Run(ctx context.Context) {
	rate := e.cfg.FrameRate
	if rate <= 0 {
		rate = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	var lastErr string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		f, err := e.Frame(e.cfg.ViewportWidth, e.cfg.ViewportHeight)
		e.frameLock.Lock()
		e.lastFrame = f
		e.frameLock.Unlock()
		switch {
		case err == nil:
			lastErr = ""
		case err.Error() != lastErr:
			lastErr = err.Error()
			e.log.Warn("frame incomplete", "err", err)
		}
	}
}

// LastFrame returns the frame built by the most recent Run tick.
func (e *Editor) LastFrame() render.Frame {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	return e.lastFrame
}
