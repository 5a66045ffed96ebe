package importer

import (
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/udhos/gwob"

	"github.com/mirielengine/mscn/scene"
)

func importObj(file string, textures scene.TextureLoader, l *log.Logger) (*scene.Geometry, error) {
	opts := &gwob.ObjParserOptions{
		Logger: func(msg string) { l.Debug(msg, "file", file) },
	}
	o, err := gwob.NewObjFromFile(file, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read obj")
	}

	g, err := objGeometry(o)
	if err != nil {
		return nil, err
	}

	tc := newTextureCache(textures)
	if err := objTextures(o, filepath.Dir(file), opts, tc, l); err != nil {
		return nil, err
	}
	g.Textures = tc.list
	return g, nil
}

// objGeometry unpacks the interleaved gwob buffer. Offsets and stride are in bytes.
func objGeometry(o *gwob.Obj) (*scene.Geometry, error) {
	stride := o.StrideSize / 4
	if stride < 3 || len(o.Indices) < 3 {
		return nil, errors.Errorf("no triangles")
	}
	count := len(o.Coord) / stride
	pos := o.StrideOffsetPosition / 4
	tex := o.StrideOffsetTexture / 4
	norm := o.StrideOffsetNormal / 4

	g := &scene.Geometry{Vertices: make([]scene.Vertex, 0, count)}
	for i := 0; i < count; i++ {
		c := o.Coord[i*stride : (i+1)*stride]
		v := scene.Vertex{
			Position: mgl32.Vec3{c[pos], c[pos+1], c[pos+2]},
			Color:    mgl32.Vec3{1, 1, 1},
		}
		if o.TextCoordFound {
			// flip v so images can be uploaded top row first
			v.TexCoord = mgl32.Vec2{c[tex], 1 - c[tex+1]}
		}
		if o.NormCoordFound {
			v.Normal = mgl32.Vec3{c[norm], c[norm+1], c[norm+2]}
		}
		g.Vertices = append(g.Vertices, v)
	}

	g.Indices = make([]uint32, 0, len(o.Indices)/3*3)
	for _, idx := range o.Indices[:len(o.Indices)/3*3] {
		if idx < 0 || idx >= count {
			return nil, errors.Errorf("index %d out of range (%d vertices)", idx, count)
		}
		g.Indices = append(g.Indices, uint32(idx))
	}
	return g, nil
}

// objTextures loads the diffuse maps of the materials the groups use. A
// missing material library only costs the textures.
func objTextures(o *gwob.Obj, dir string, opts *gwob.ObjParserOptions, tc *textureCache, l *log.Logger) error {
	if o.Mtllib == "" {
		return nil
	}
	libFile := filepath.Join(dir, filepath.FromSlash(o.Mtllib))
	lib, err := gwob.ReadMaterialLibFromFile(libFile, opts)
	if err != nil {
		l.Warn("material library unavailable", "file", libFile, "err", err)
		return nil
	}

	seen := make(map[string]bool)
	for _, group := range o.Groups {
		name := group.Usemtl
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		m, ok := lib.Lib[name]
		if !ok {
			l.Warn("material not defined", "material", name, "file", libFile)
			continue
		}
		if m.MapKd != "" {
			if err := tc.add(filepath.Join(dir, filepath.FromSlash(m.MapKd)), scene.TextureDiffuse); err != nil {
				return err
			}
		}
	}
	return nil
}
