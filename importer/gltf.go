package importer

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mirielengine/mscn/scene"
)

type gltfReader struct {
	doc      *gltf.Document
	dir      string
	log      *log.Logger
	textures *textureCache
	visited  map[uint32]bool
	g        scene.Geometry
}

func importGltf(file string, textures scene.TextureLoader, l *log.Logger) (*scene.Geometry, error) {
	doc, err := gltf.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read gltf")
	}

	r := &gltfReader{
		doc:      doc,
		dir:      filepath.Dir(file),
		log:      l,
		textures: newTextureCache(textures),
		visited:  make(map[uint32]bool),
	}

	var roots []uint32
	if len(doc.Scenes) != 0 {
		sceneIdx := uint32(0)
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			sceneIdx = *doc.Scene
		}
		roots = doc.Scenes[sceneIdx].Nodes
	} else {
		for i := range doc.Nodes {
			roots = append(roots, uint32(i))
		}
	}

	for _, node := range roots {
		if err := r.walk(node, 0); err != nil {
			return nil, err
		}
	}
	r.g.Textures = r.textures.list
	return &r.g, nil
}

func (r *gltfReader) walk(nodeIdx uint32, depth int) error {
	if int(nodeIdx) >= len(r.doc.Nodes) {
		return errors.Errorf("node %d out of range", nodeIdx)
	}
	if depth > len(r.doc.Nodes) {
		return errors.Errorf("node hierarchy loops at node %d", nodeIdx)
	}
	node := r.doc.Nodes[nodeIdx]
	if node.Mesh != nil && !r.visited[*node.Mesh] {
		r.visited[*node.Mesh] = true
		if err := r.mesh(*node.Mesh); err != nil {
			return errors.Wrapf(err, "node %q", node.Name)
		}
	}
	for _, child := range node.Children {
		if err := r.walk(child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (r *gltfReader) accessor(idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(r.doc.Accessors) {
		return nil, errors.Errorf("accessor %d out of range", idx)
	}
	return r.doc.Accessors[idx], nil
}

func (r *gltfReader) mesh(meshIdx uint32) error {
	if int(meshIdx) >= len(r.doc.Meshes) {
		return errors.Errorf("mesh %d out of range", meshIdx)
	}
	mesh := r.doc.Meshes[meshIdx]

	for iPrim, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			r.log.Warn("skipping non triangle primitive", "mesh", mesh.Name, "primitive", iPrim)
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			r.log.Warn("skipping primitive without positions", "mesh", mesh.Name, "primitive", iPrim)
			continue
		}
		acc, err := r.accessor(posIdx)
		if err != nil {
			return err
		}
		positions, err := modeler.ReadPosition(r.doc, acc, make([][3]float32, 0))
		if err != nil {
			return errors.Wrapf(err, "Failed to read positions of %q/%d", mesh.Name, iPrim)
		}

		var normals [][3]float32
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if acc, err = r.accessor(idx); err != nil {
				return err
			}
			if normals, err = modeler.ReadNormal(r.doc, acc, make([][3]float32, 0)); err != nil {
				return errors.Wrapf(err, "Failed to read normals of %q/%d", mesh.Name, iPrim)
			}
		}

		var uvs [][2]float32
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if acc, err = r.accessor(idx); err != nil {
				return err
			}
			if uvs, err = modeler.ReadTextureCoord(r.doc, acc, make([][2]float32, 0)); err != nil {
				return errors.Wrapf(err, "Failed to read texcoords of %q/%d", mesh.Name, iPrim)
			}
		}

		var indices []uint32
		if prim.Indices != nil {
			if acc, err = r.accessor(*prim.Indices); err != nil {
				return err
			}
			if indices, err = modeler.ReadIndices(r.doc, acc, make([]uint32, 0)); err != nil {
				return errors.Wrapf(err, "Failed to read indices of %q/%d", mesh.Name, iPrim)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		base := uint32(len(r.g.Vertices))
		for i, p := range positions {
			v := scene.Vertex{Position: p, Color: mgl32.Vec3{1, 1, 1}}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(uvs) {
				v.TexCoord = uvs[i]
			}
			r.g.Vertices = append(r.g.Vertices, v)
		}
		for _, idx := range indices[:len(indices)/3*3] {
			if int(idx) >= len(positions) {
				return errors.Errorf("index %d out of range in %q/%d", idx, mesh.Name, iPrim)
			}
			r.g.Indices = append(r.g.Indices, base+idx)
		}

		if prim.Material != nil {
			if err := r.material(*prim.Material); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *gltfReader) material(matIdx uint32) error {
	if int(matIdx) >= len(r.doc.Materials) {
		return errors.Errorf("material %d out of range", matIdx)
	}
	pbr := r.doc.Materials[matIdx].PBRMetallicRoughness
	if pbr == nil {
		return nil
	}
	if pbr.BaseColorTexture != nil {
		if err := r.texture(pbr.BaseColorTexture.Index, scene.TextureDiffuse); err != nil {
			return err
		}
	}
	if pbr.MetallicRoughnessTexture != nil {
		if err := r.texture(pbr.MetallicRoughnessTexture.Index, scene.TextureSpecular); err != nil {
			return err
		}
	}
	return nil
}

func (r *gltfReader) texture(texIdx uint32, typ scene.TextureType) error {
	if int(texIdx) >= len(r.doc.Textures) {
		return errors.Errorf("texture %d out of range", texIdx)
	}
	tex := r.doc.Textures[texIdx]
	if tex.Source == nil || int(*tex.Source) >= len(r.doc.Images) {
		return nil
	}
	img := r.doc.Images[*tex.Source]
	if img.URI == "" || strings.HasPrefix(img.URI, "data:") {
		r.log.Debug("skipping embedded image", "texture", texIdx, "image", img.Name)
		return nil
	}
	uri, err := url.PathUnescape(img.URI)
	if err != nil {
		uri = img.URI
	}
	return r.textures.add(filepath.Join(r.dir, filepath.FromSlash(uri)), typ)
}
