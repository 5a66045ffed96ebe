package render

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mirielengine/mscn/scene"
)

// Headless hands out increasing fake handles and tracks which are alive.
// It stands in for every graphics API when no driver is linked.
type Headless struct {
	// ShadersDir, when set, is where shader sources must exist for a
	// program to compile.
	ShadersDir string

	name string
	next uint32
	live map[uint32]string
}

func NewHeadless(name string) *Headless {
	return &Headless{name: name, live: make(map[uint32]string)}
}

func (h *Headless) Name() string { return h.name }

func (h *Headless) handle(kind string) uint32 {
	h.next++
	h.live[h.next] = kind
	return h.next
}

func (h *Headless) UploadObject(o *scene.Object) (Buffers, error) {
	if len(o.Indices)%3 != 0 {
		return Buffers{}, errors.Errorf("%s: %d indices is not a triangle list", o.Path, len(o.Indices))
	}
	b := Buffers{
		VAO:        h.handle("vao"),
		VBO:        h.handle("vbo"),
		EBO:        h.handle("ebo"),
		IndexCount: len(o.Indices),
	}
	for _, t := range o.Textures {
		b.Textures = append(b.Textures, t.ID)
	}
	return b, nil
}

func (h *Headless) ReleaseObject(b Buffers) {
	delete(h.live, b.VAO)
	delete(h.live, b.VBO)
	delete(h.live, b.EBO)
}

func (h *Headless) CompileProgram(vert, frag string) (uint32, error) {
	if vert == "" || frag == "" {
		return 0, errors.Errorf("incomplete shader pair %q %q", vert, frag)
	}
	if h.ShadersDir != "" {
		for _, name := range []string{vert, frag} {
			src, err := os.ReadFile(filepath.Join(h.ShadersDir, filepath.FromSlash(name)))
			if err != nil {
				return 0, errors.Wrapf(err, "Failed to read shader source")
			}
			if len(src) == 0 {
				return 0, errors.Errorf("shader %s is empty", name)
			}
		}
	}
	return h.handle("program"), nil
}

func (h *Headless) ReleaseProgram(program uint32) { delete(h.live, program) }

func (h *Headless) LoadTexture(name string) (uint32, error) {
	return h.handle("texture"), nil
}

func (h *Headless) ReleaseTexture(id uint32) { delete(h.live, id) }

// Live counts handles of the given kind that were not released.
func (h *Headless) Live(kind string) int {
	n := 0
	for _, k := range h.live {
		if k == kind {
			n++
		}
	}
	return n
}
