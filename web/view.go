package web

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mirielengine/mscn/scene"
)

type instanceView struct {
	Translation    mgl32.Vec3 `json:"translation"`
	Rotation       mgl32.Vec3 `json:"rotation"`
	Scale          mgl32.Vec3 `json:"scale"`
	VertexShader   string     `json:"vert"`
	FragmentShader string     `json:"frag"`
	ShaderLoaded   bool       `json:"shader_loaded"`
}

type objectView struct {
	ID             scene.ObjectID `json:"id"`
	Path           string         `json:"path"`
	Name           string         `json:"name"`
	Vertices       int            `json:"vertices"`
	Triangles      int            `json:"triangles"`
	Textures       int            `json:"textures"`
	VertexShader   string         `json:"vert"`
	FragmentShader string         `json:"frag"`
	Instances      []instanceView `json:"instances"`
}

type lightView struct {
	Color mgl32.Vec3 `json:"color"`
	Value mgl32.Vec3 `json:"value"`
}

type particleView struct {
	VertexShader   string     `json:"vert"`
	FragmentShader string     `json:"frag"`
	Position       mgl32.Vec3 `json:"position"`
	Color          mgl32.Vec3 `json:"color"`
}

type shaderView struct {
	Key     scene.ShaderKey `json:"key"`
	Loaded  bool            `json:"loaded"`
	Program uint32          `json:"program"`
}

type cameraView struct {
	Position mgl32.Vec3 `json:"position"`
	Target   mgl32.Vec3 `json:"target"`
	Up       mgl32.Vec3 `json:"camera_up"`
}

type sceneView struct {
	Path              string         `json:"path"`
	Dirty             bool           `json:"dirty"`
	Backend           string         `json:"backend"`
	Objects           []objectView   `json:"objects"`
	PointLights       []lightView    `json:"point_lights"`
	DirectionalLights []lightView    `json:"directional_lights"`
	Particles         []particleView `json:"particles"`
	Shaders           []shaderView   `json:"shaders"`
	Camera            cameraView     `json:"camera"`
}

func lightViews(lights []scene.Light) []lightView {
	views := make([]lightView, 0, len(lights))
	for _, l := range lights {
		views = append(views, lightView{Color: l.Color, Value: l.Value})
	}
	return views
}

func (s *Server) describe() *sceneView {
	v := &sceneView{
		Dirty:   s.editor.Dirty(),
		Backend: s.editor.BackendName(),
	}
	s.editor.View(func(sc *scene.Scene) {
		v.Path = sc.Path
		v.Objects = make([]objectView, 0, sc.ObjectCount())
		for idx, o := range sc.Objects() {
			ov := objectView{
				ID:             o.ID,
				Path:           o.Path,
				Name:           o.Name(),
				Vertices:       len(o.Vertices),
				Triangles:      len(o.Indices) / 3,
				Textures:       len(o.Textures),
				VertexShader:   o.VertexShader,
				FragmentShader: o.FragmentShader,
				Instances:      make([]instanceView, 0),
			}
			for _, inst := range sc.Instances(idx) {
				ov.Instances = append(ov.Instances, instanceView{
					Translation:    inst.Translation,
					Rotation:       inst.Rotation,
					Scale:          inst.Scale,
					VertexShader:   inst.VertexShader,
					FragmentShader: inst.FragmentShader,
					ShaderLoaded:   inst.Shader != nil && inst.Shader.Loaded,
				})
			}
			v.Objects = append(v.Objects, ov)
		}
		v.PointLights = lightViews(sc.PointLights)
		v.DirectionalLights = lightViews(sc.DirectionalLights)
		v.Particles = make([]particleView, 0, len(sc.Particles))
		for _, p := range sc.Particles {
			v.Particles = append(v.Particles, particleView{
				VertexShader:   p.VertexShader,
				FragmentShader: p.FragmentShader,
				Position:       p.Position,
				Color:          p.Color,
			})
		}
		v.Shaders = make([]shaderView, 0, sc.Shaders.Len())
		for _, key := range sc.Shaders.Keys() {
			sh, _ := sc.Shaders.Lookup(key)
			v.Shaders = append(v.Shaders, shaderView{Key: key, Loaded: sh.Loaded, Program: sh.Program})
		}
		v.Camera = cameraView{Position: sc.Camera.Position, Target: sc.Camera.Target, Up: sc.Camera.CameraUp}
	})
	return v
}
