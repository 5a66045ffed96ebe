package config

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Backend int

const (
	BackendUnknown Backend = iota
	BackendDX12
	BackendOpenGL
	BackendVulkan
	BackendMetal
)

var backendNames = map[Backend]string{
	BackendDX12:   "DX12",
	BackendOpenGL: "OpenGL",
	BackendVulkan: "Vulkan",
	BackendMetal:  "Metal",
}

func (b Backend) String() string {
	if name, ok := backendNames[b]; ok {
		return name
	}
	return "unknown"
}

func BackendNames() []string {
	return []string{"DX12", "OpenGL", "Vulkan", "Metal"}
}

// ParseBackend accepts the exact identifiers only.
func ParseBackend(name string) (Backend, error) {
	for b, n := range backendNames {
		if n == name {
			return b, nil
		}
	}
	return BackendUnknown, errors.Errorf("unknown backend %q, expected one of %s", name, strings.Join(BackendNames(), ", "))
}

func (b *Backend) UnmarshalYAML(value *yaml.Node) error {
	if value.Value == "" {
		*b = BackendUnknown
		return nil
	}
	parsed, err := ParseBackend(value.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", value.Line)
	}
	*b = parsed
	return nil
}

func (b Backend) MarshalYAML() (interface{}, error) {
	if b == BackendUnknown {
		return "", nil
	}
	return b.String(), nil
}
