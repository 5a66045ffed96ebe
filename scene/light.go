package scene

import "github.com/go-gl/mathgl/mgl32"

type LightType int

const (
	PointLight LightType = iota
	DirectionalLight
)

func (t LightType) String() string {
	switch t {
	case PointLight:
		return "point"
	case DirectionalLight:
		return "directional"
	default:
		return "unknown"
	}
}

// Light.Value is a position for point lights and a direction for directional ones.
type Light struct {
	Color mgl32.Vec3
	Value mgl32.Vec3
	Type  LightType
}

type Particle struct {
	Position mgl32.Vec3
	Lifetime float32
}

type ParticleSpawner struct {
	VertexShader   string
	FragmentShader string
	Position       mgl32.Vec3
	Color          mgl32.Vec3

	// runtime only, never written to scene files
	Particles []Particle
}
