package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShaderKeySplit(t *testing.T) {
	for _, test := range []struct {
		key        ShaderKey
		vert, frag string
	}{
		{"a.vert a.frag", "a.vert", "a.frag"},
		{MakeShaderKey("v", "f"), "v", "f"},
		// names with spaces cannot round trip, the cut happens at the first space
		{MakeShaderKey("my shader.vert", "f"), "my", "shader.vert f"},
		{"lonely", "lonely", ""},
	} {
		vert, frag := test.key.Split()
		assert.Equal(t, test.vert, vert, string(test.key))
		assert.Equal(t, test.frag, frag, string(test.key))
	}
}

func TestShaderRegistry(t *testing.T) {
	r := NewShaderRegistry()

	sh, created := r.Register("b.vert", "b.frag")
	require.True(t, created)
	again, created := r.Register("b.vert", "b.frag")
	assert.False(t, created)
	assert.Same(t, sh, again)

	r.Register("a.vert", "a.frag")
	assert.Equal(t, []ShaderKey{"b.vert b.frag", "a.vert a.frag"}, r.Keys())
	first, ok := r.First()
	require.True(t, ok)
	assert.Equal(t, ShaderKey("b.vert b.frag"), first)

	assert.Equal(t, []ShaderKey{"b.vert b.frag", "a.vert a.frag"}, r.Pending())
	require.NoError(t, r.MarkLoaded("a.vert a.frag", 7))
	assert.Equal(t, []ShaderKey{"b.vert b.frag"}, r.Pending())
	assert.Error(t, r.MarkLoaded("a.vert a.frag", 8))
	assert.Error(t, r.MarkLoaded("x y", 1))

	loaded, ok := r.Lookup("a.vert a.frag")
	require.True(t, ok)
	assert.True(t, loaded.Loaded)
	assert.Equal(t, uint32(7), loaded.Program)

	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Pending())
	_, ok = r.First()
	assert.False(t, ok)
}
