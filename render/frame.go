package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mirielengine/mscn/scene"
)

const (
	FieldOfView = 45
	NearPlane   = 0.1
	FarPlane    = 1000
)

type DrawCall struct {
	Object  scene.ObjectID
	Buffers Buffers
	Program uint32
	Model   mgl32.Mat4
}

// Frame is everything a backend needs to draw one image of the scene.
type Frame struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4

	Draws             []DrawCall
	PointLights       []scene.Light
	DirectionalLights []scene.Light
}

// Frame lists the instances that are ready to draw: their object is
// uploaded and their shader compiled.
func (m *Mirror) Frame(s *scene.Scene, width, height int) Frame {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	f := Frame{
		View:              s.Camera.ViewMatrix(),
		Projection:        mgl32.Perspective(mgl32.DegToRad(FieldOfView), aspect, NearPlane, FarPlane),
		PointLights:       append([]scene.Light(nil), s.PointLights...),
		DirectionalLights: append([]scene.Light(nil), s.DirectionalLights...),
	}

	for idx, o := range s.Objects() {
		b, ok := m.buffers[o.ID]
		if !ok {
			continue
		}
		for _, inst := range s.Instances(idx) {
			if inst.Shader == nil || !inst.Shader.Loaded {
				continue
			}
			f.Draws = append(f.Draws, DrawCall{
				Object:  o.ID,
				Buffers: b,
				Program: inst.Shader.Program,
				Model:   inst.Model(),
			})
		}
	}
	return f
}
