package scene

import "github.com/go-gl/mathgl/mgl32"

type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	CameraUp mgl32.Vec3
}

func NewCamera(position, target mgl32.Vec3) Camera {
	c := Camera{Position: position, Target: target, Up: mgl32.Vec3{0, 1, 0}}
	c.Update()
	return c
}

func DefaultCamera() Camera {
	return NewCamera(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
}

// Update recomputes CameraUp from Position, Target and Up.
func (c *Camera) Update() {
	direction := c.Position.Sub(c.Target)
	if direction.Len() == 0 {
		direction = mgl32.Vec3{0, 0, 1}
	}
	direction = direction.Normalize()

	right := c.Up.Cross(direction)
	if right.Len() == 0 {
		right = mgl32.Vec3{1, 0, 0}
	}
	right = right.Normalize()

	c.CameraUp = direction.Cross(right)
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.CameraUp)
}
