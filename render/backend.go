// Package render keeps the renderer side copies of scene data in step with
// the scene model.
package render

import "github.com/mirielengine/mscn/scene"

type Buffers struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int
	Textures   []uint32
}

// Backend is the graphics API. Handles are opaque to the mirror.
type Backend interface {
	Name() string
	UploadObject(o *scene.Object) (Buffers, error)
	ReleaseObject(b Buffers)
	CompileProgram(vert, frag string) (uint32, error)
	ReleaseProgram(program uint32)
	LoadTexture(name string) (uint32, error)
	ReleaseTexture(id uint32)
}
