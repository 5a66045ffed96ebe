package scene

import (
	"strings"

	"github.com/pkg/errors"
)

// ShaderKey is "<vert> <frag>". Shader names must not contain spaces.
type ShaderKey string

func MakeShaderKey(vert, frag string) ShaderKey {
	return ShaderKey(vert + " " + frag)
}

// ValidShaderName reports whether name can be part of a ShaderKey and
// survive a round trip through a scene file.
func ValidShaderName(name string) bool {
	return name != "" && !strings.ContainsAny(name, " \t\r\n{}")
}

// Split cuts the key at the first space.
func (k ShaderKey) Split() (vert, frag string) {
	vert, frag, _ = strings.Cut(string(k), " ")
	return vert, frag
}

type Shader struct {
	Program uint32
	Loaded  bool
}

// ShaderRegistry maps shader combinations to lazily compiled programs.
// Keys are kept in registration order.
type ShaderRegistry struct {
	keys    []ShaderKey
	shaders map[ShaderKey]*Shader
}

func NewShaderRegistry() *ShaderRegistry {
	return &ShaderRegistry{shaders: make(map[ShaderKey]*Shader)}
}

// Register returns the shader of the pair, creating an unloaded entry
// when the pair is new. The bool is true if an entry was created.
func (r *ShaderRegistry) Register(vert, frag string) (*Shader, bool) {
	key := MakeShaderKey(vert, frag)
	if sh, ok := r.shaders[key]; ok {
		return sh, false
	}
	sh := &Shader{}
	r.shaders[key] = sh
	r.keys = append(r.keys, key)
	return sh, true
}

func (r *ShaderRegistry) Lookup(key ShaderKey) (*Shader, bool) {
	sh, ok := r.shaders[key]
	return sh, ok
}

func (r *ShaderRegistry) Contains(vert, frag string) bool {
	_, ok := r.shaders[MakeShaderKey(vert, frag)]
	return ok
}

func (r *ShaderRegistry) Keys() []ShaderKey {
	return append([]ShaderKey(nil), r.keys...)
}

// First returns the earliest registered pair.
func (r *ShaderRegistry) First() (ShaderKey, bool) {
	if len(r.keys) == 0 {
		return "", false
	}
	return r.keys[0], true
}

func (r *ShaderRegistry) Pending() []ShaderKey {
	var pending []ShaderKey
	for _, key := range r.keys {
		if !r.shaders[key].Loaded {
			pending = append(pending, key)
		}
	}
	return pending
}

func (r *ShaderRegistry) MarkLoaded(key ShaderKey, program uint32) error {
	sh, ok := r.shaders[key]
	if !ok {
		return errors.Errorf("shader %q is not registered", key)
	}
	if sh.Loaded {
		return errors.Errorf("shader %q already loaded as program %d", key, sh.Program)
	}
	sh.Program = program
	sh.Loaded = true
	return nil
}

func (r *ShaderRegistry) Len() int { return len(r.keys) }

func (r *ShaderRegistry) Reset() {
	r.keys = nil
	r.shaders = make(map[ShaderKey]*Shader)
}
