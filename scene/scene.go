package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Scene is the editable model: objects with their instances, lights,
// particle spawners, the camera and the shader registry.
// It is not safe for concurrent use.
type Scene struct {
	Path string

	Camera            Camera
	PointLights       []Light
	DirectionalLights []Light
	Particles         []ParticleSpawner
	Shaders           *ShaderRegistry

	importer Importer
	textures TextureLoader
	reset    GraphicsReset

	objects     []*Object
	objectIndex map[string]int
	instances   map[int][]*ObjectInstance
}

func New(importer Importer) *Scene {
	return &Scene{
		Camera:      DefaultCamera(),
		Shaders:     NewShaderRegistry(),
		importer:    importer,
		objectIndex: make(map[string]int),
		instances:   make(map[int][]*ObjectInstance),
	}
}

func (s *Scene) SetTextureLoader(l TextureLoader) { s.textures = l }

func (s *Scene) SetGraphicsReset(f GraphicsReset) { s.reset = f }

func (s *Scene) Objects() []*Object {
	return append([]*Object(nil), s.objects...)
}

func (s *Scene) ObjectCount() int { return len(s.objects) }

func (s *Scene) Object(index int) (*Object, error) {
	if index < 0 || index >= len(s.objects) {
		return nil, errors.Wrapf(ErrInvalidIndex, "object %d of %d", index, len(s.objects))
	}
	return s.objects[index], nil
}

func (s *Scene) ObjectIndex(path string) (int, bool) {
	idx, ok := s.objectIndex[NormalizePath(path)]
	return idx, ok
}

func (s *Scene) Instances(objectIndex int) []*ObjectInstance {
	return s.instances[objectIndex]
}

func (s *Scene) Instance(objectIndex, instanceIndex int) (*ObjectInstance, error) {
	if _, err := s.Object(objectIndex); err != nil {
		return nil, err
	}
	list := s.instances[objectIndex]
	if instanceIndex < 0 || instanceIndex >= len(list) {
		return nil, errors.Wrapf(ErrInvalidIndex, "instance %d of %d (object %d)", instanceIndex, len(list), objectIndex)
	}
	return list[instanceIndex], nil
}

func (s *Scene) InstanceCount() int {
	n := 0
	for _, list := range s.instances {
		n += len(list)
	}
	return n
}

// RegisterShaderPair registers the pair when both names are set.
func (s *Scene) RegisterShaderPair(vert, frag string) *Shader {
	if vert == "" || frag == "" {
		return nil
	}
	sh, _ := s.Shaders.Register(vert, frag)
	return sh
}

func (s *Scene) bind(inst *ObjectInstance) {
	inst.Shader = s.RegisterShaderPair(inst.VertexShader, inst.FragmentShader)
}

func (s *Scene) importGeometry(path string) (*Geometry, error) {
	if s.importer == nil {
		return nil, errors.Wrapf(ErrImport, "%s: no importer", path)
	}
	if s.textures == nil {
		return nil, errors.Wrapf(ErrNoTextureLoader, "import %s", path)
	}
	g, err := s.importer.Import(path, s.textures)
	if err != nil {
		if !errors.Is(err, ErrImport) {
			err = errors.Wrapf(ErrImport, "%s: %v", path, err)
		}
		return nil, err
	}
	if g == nil {
		g = &Geometry{}
	}
	return g, nil
}

func (s *Scene) registerObject(path string, g *Geometry, vert, frag string) int {
	o := &Object{
		ID:             NewObjectID(),
		Path:           path,
		Vertices:       g.Vertices,
		Indices:        g.Indices,
		Textures:       g.Textures,
		VertexShader:   vert,
		FragmentShader: frag,
	}
	s.RegisterShaderPair(vert, frag)
	s.objects = append(s.objects, o)
	idx := len(s.objects) - 1
	s.objectIndex[path] = idx
	return idx
}

// EnsureObject returns the index of the object loaded from path, importing
// and registering it with the given default shaders on first sight.
// An already known object keeps the defaults it was first registered with.
func (s *Scene) EnsureObject(path, vert, frag string) (int, bool, error) {
	path = NormalizePath(path)
	if idx, ok := s.objectIndex[path]; ok {
		return idx, false, nil
	}
	g, err := s.importGeometry(path)
	if err != nil {
		return -1, false, err
	}
	return s.registerObject(path, g, vert, frag), true, nil
}

// AppendInstance adds a prepared instance and binds its shader pair.
func (s *Scene) AppendInstance(objectIndex int, inst *ObjectInstance) error {
	if _, err := s.Object(objectIndex); err != nil {
		return err
	}
	s.bind(inst)
	s.instances[objectIndex] = append(s.instances[objectIndex], inst)
	return nil
}

func (s *Scene) AddObjectInstance(objectIndex int) (*ObjectInstance, error) {
	o, err := s.Object(objectIndex)
	if err != nil {
		return nil, err
	}
	inst := NewObjectInstance(o)
	s.bind(inst)
	s.instances[objectIndex] = append(s.instances[objectIndex], inst)
	return inst, nil
}

// AddObject imports a new model, gives it the first registered shader
// pair as defaults and places one instance of it.
func (s *Scene) AddObject(path string) (int, error) {
	path = NormalizePath(path)
	if !IsModelPath(path) {
		return -1, errors.Wrapf(ErrImport, "%s: not a model file", path)
	}
	if _, ok := s.objectIndex[path]; ok {
		return -1, errors.Wrapf(ErrDuplicateObject, "%s", path)
	}
	g, err := s.importGeometry(path)
	if err != nil {
		return -1, err
	}
	var vert, frag string
	if key, ok := s.Shaders.First(); ok {
		vert, frag = key.Split()
	}
	idx := s.registerObject(path, g, vert, frag)
	if _, err := s.AddObjectInstance(idx); err != nil {
		return idx, err
	}
	return idx, nil
}

func (s *Scene) SwitchVertexShader(objectIndex, instanceIndex int, name string) error {
	inst, err := s.Instance(objectIndex, instanceIndex)
	if err != nil {
		return err
	}
	if !ValidShaderName(name) {
		return errors.Wrapf(ErrShaderName, "vertex shader %q", name)
	}
	inst.VertexShader = name
	s.bind(inst)
	return nil
}

func (s *Scene) SwitchFragmentShader(objectIndex, instanceIndex int, name string) error {
	inst, err := s.Instance(objectIndex, instanceIndex)
	if err != nil {
		return err
	}
	if !ValidShaderName(name) {
		return errors.Wrapf(ErrShaderName, "fragment shader %q", name)
	}
	inst.FragmentShader = name
	s.bind(inst)
	return nil
}

func (s *Scene) AddPointLight() int {
	s.PointLights = append(s.PointLights, Light{Type: PointLight})
	return len(s.PointLights) - 1
}

func (s *Scene) AddDirectionalLight() int {
	s.DirectionalLights = append(s.DirectionalLights, Light{Type: DirectionalLight})
	return len(s.DirectionalLights) - 1
}

func (s *Scene) AddLight(l Light) {
	if l.Type == DirectionalLight {
		s.DirectionalLights = append(s.DirectionalLights, l)
	} else {
		l.Type = PointLight
		s.PointLights = append(s.PointLights, l)
	}
}

func (s *Scene) Light(t LightType, index int) (*Light, error) {
	list := s.PointLights
	if t == DirectionalLight {
		list = s.DirectionalLights
	}
	if index < 0 || index >= len(list) {
		return nil, errors.Wrapf(ErrInvalidIndex, "%v light %d of %d", t, index, len(list))
	}
	return &list[index], nil
}

func (s *Scene) AddParticleSpawner(p ParticleSpawner) int {
	s.RegisterShaderPair(p.VertexShader, p.FragmentShader)
	s.Particles = append(s.Particles, p)
	return len(s.Particles) - 1
}

func (s *Scene) SetCamera(position, target mgl32.Vec3) {
	s.Camera = NewCamera(position, target)
}

// NewScene lets the renderer release what it mirrors and then empties the
// scene. The data is cleared even when the reset callback panics.
func (s *Scene) NewScene() (err error) {
	defer s.clear()
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("graphics reset: %v", r)
		}
	}()
	if s.reset != nil {
		s.reset()
	}
	return nil
}

func (s *Scene) clear() {
	s.Path = ""
	s.Camera = DefaultCamera()
	s.PointLights = nil
	s.DirectionalLights = nil
	s.Particles = nil
	s.Shaders.Reset()
	s.objects = nil
	s.objectIndex = make(map[string]int)
	s.instances = make(map[int][]*ObjectInstance)
}

// Validate checks that instances only reference existing objects and that
// every shader pair in use is registered.
func (s *Scene) Validate() error {
	for idx, list := range s.instances {
		if idx < 0 || idx >= len(s.objects) {
			return errors.Wrapf(ErrInvalidIndex, "%d instances reference missing object %d", len(list), idx)
		}
		for i, inst := range list {
			if inst.VertexShader == "" || inst.FragmentShader == "" {
				continue
			}
			if !s.Shaders.Contains(inst.VertexShader, inst.FragmentShader) {
				return errors.Errorf("instance %d of %s uses unregistered shader %q", i, s.objects[idx].Path, inst.ShaderKey())
			}
		}
	}
	for _, o := range s.objects {
		if o.VertexShader == "" || o.FragmentShader == "" {
			continue
		}
		if !s.Shaders.Contains(o.VertexShader, o.FragmentShader) {
			return errors.Errorf("%s uses unregistered shader %q", o.Path, MakeShaderKey(o.VertexShader, o.FragmentShader))
		}
	}
	for i, p := range s.Particles {
		if p.VertexShader != "" && p.FragmentShader != "" && !s.Shaders.Contains(p.VertexShader, p.FragmentShader) {
			return errors.Errorf("particle spawner %d uses unregistered shader %q", i, MakeShaderKey(p.VertexShader, p.FragmentShader))
		}
	}
	return nil
}
