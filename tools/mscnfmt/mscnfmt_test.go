package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.mscn")
	require.NoError(t, os.WriteFile(path, []byte(text), 0666))
	return path
}

func TestFormat(t *testing.T) {
	logger := log.New(io.Discard)
	path := writeFile(t, "cube.obj { basic.vert basic.frag { t 1 0 0 } }  c 0 0 5 0 0 0")
	want := "cube.obj {\n\tbasic.vert basic.frag\n\t{\n\t\tt 1 0 0\n\t}\n}\nc 0 0 5 0 0 0\n"

	var out bytes.Buffer
	require.NoError(t, format(path, options{}, logger, &out))
	assert.Equal(t, want, out.String())

	out.Reset()
	require.NoError(t, format(path, options{check: true}, logger, &out))
	assert.Empty(t, out.String())

	require.NoError(t, format(path, options{write: true}, logger, &out))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))

	out.Reset()
	require.NoError(t, format(path, options{check: true, dump: true}, logger, &out))
	assert.Contains(t, out.String(), "cube.obj")
}

func TestFormatErrors(t *testing.T) {
	logger := log.New(io.Discard)
	var out bytes.Buffer
	assert.Error(t, format(filepath.Join(t.TempDir(), "missing.mscn"), options{}, logger, &out))
	assert.Error(t, format(writeFile(t, "c 0 0 five 0 0 0"), options{}, logger, &out))
}
