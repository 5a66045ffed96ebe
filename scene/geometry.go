package scene

import (
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color    mgl32.Vec3
	TexCoord mgl32.Vec2
}

type TextureType string

const (
	TextureDiffuse  TextureType = "texture_diffuse"
	TextureSpecular TextureType = "texture_specular"
)

type Texture struct {
	ID   uint32
	Type TextureType
	Path string
}

// Geometry is what an importer hands back for one model file.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
	Textures []Texture
}

// TextureLoader turns an image path into a renderer texture handle.
type TextureLoader func(name string) (uint32, error)

// GraphicsReset is called by NewScene before the model is cleared.
type GraphicsReset func()

type Importer interface {
	Import(path string, textures TextureLoader) (*Geometry, error)
}

type ObjectID uuid.UUID

func NewObjectID() ObjectID { return ObjectID(uuid.New()) }

func (id ObjectID) String() string { return uuid.UUID(id).String() }

func (id ObjectID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *ObjectID) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(data)
}

type Object struct {
	ID   ObjectID
	Path string

	Vertices []Vertex
	Indices  []uint32
	Textures []Texture

	VertexShader   string
	FragmentShader string
}

// Name is the model file name without directory and extension.
func (o *Object) Name() string {
	base := filepath.Base(o.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func NormalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

var ModelExtensions = []string{".obj", ".gltf", ".glb"}

// IsModelPath reports whether the token names a model file. Matching is case sensitive.
func IsModelPath(p string) bool {
	for _, ext := range ModelExtensions {
		if len(p) > len(ext) && strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}
