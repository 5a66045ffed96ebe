package web

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mirielengine/mscn/editor"
	"github.com/mirielengine/mscn/scene"
	"github.com/mirielengine/mscn/scene/mscn"
	"github.com/mirielengine/mscn/utils"
	"github.com/mirielengine/mscn/webutils"
)

var errBadRequest = errors.New("bad request")

func statusCode(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, scene.ErrShaderName):
		return http.StatusBadRequest
	case errors.Is(err, scene.ErrInvalidIndex):
		return http.StatusNotFound
	case errors.Is(err, scene.ErrDuplicateObject):
		return http.StatusConflict
	case errors.Is(err, scene.ErrImport), errors.Is(err, scene.ErrMalformedNumber):
		return http.StatusUnprocessableEntity
	case errors.Is(err, scene.ErrFileAccess):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", "url", r.URL.Path, "err", err)
	}
	webutils.WriteError(w, code, err)
}

func (s *Server) writeJson(w http.ResponseWriter, data interface{}) {
	if err := webutils.WriteJson(w, data); err != nil {
		s.log.Warn("response write failed", "err", err)
	}
}

func index(r *http.Request, name string) int {
	// the route pattern only admits digits
	i, _ := strconv.Atoi(mux.Vars(r)[name])
	return i
}

func lightType(r *http.Request) scene.LightType {
	if mux.Vars(r)["kind"] == "directional" {
		return scene.DirectionalLight
	}
	return scene.PointLight
}

func (s *Server) HandlerJsonScene(w http.ResponseWriter, r *http.Request) {
	s.writeJson(w, s.describe())
}

func (s *Server) HandlerActionScene(w http.ResponseWriter, r *http.Request) {
	path := r.FormValue("path")
	switch mux.Vars(r)["action"] {
	case "new":
		if err := s.editor.NewScene(); err != nil {
			s.writeError(w, r, err)
			return
		}
	case "save":
		saved, err := s.editor.SaveScene(path)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJson(w, map[string]string{"path": saved})
		return
	case "load":
		if path == "" {
			s.writeError(w, r, errors.Wrapf(errBadRequest, "missing path"))
			return
		}
		if err := s.editor.LoadScene(path); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.writeJson(w, s.describe())
}

func (s *Server) HandlerActionAddObject(w http.ResponseWriter, r *http.Request) {
	path := r.FormValue("path")
	if path == "" || !scene.IsModelPath(path) {
		s.writeError(w, r, errors.Wrapf(errBadRequest, "%q is not a model path", path))
		return
	}
	idx, err := s.editor.AddObject(path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJson(w, map[string]int{"object": idx})
}

func (s *Server) HandlerActionAddInstance(w http.ResponseWriter, r *http.Request) {
	object := index(r, "object")
	idx, err := s.editor.AddObjectInstance(object)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJson(w, map[string]int{"object": object, "instance": idx})
}

func (s *Server) HandlerActionShader(w http.ResponseWriter, r *http.Request) {
	object, instance := index(r, "object"), index(r, "instance")
	name := r.FormValue("name")

	var err error
	switch r.FormValue("stage") {
	case "vert":
		err = s.editor.SwitchVertexShader(object, instance, name)
	case "frag":
		err = s.editor.SwitchFragmentShader(object, instance, name)
	default:
		err = errors.Wrapf(errBadRequest, "stage must be vert or frag")
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJson(w, s.describe())
}

type transformRequest struct {
	Translation mgl32.Vec3  `json:"translation"`
	Rotation    mgl32.Vec3  `json:"rotation"`
	Scale       *mgl32.Vec3 `json:"scale"`
}

func (s *Server) HandlerActionTransform(w http.ResponseWriter, r *http.Request) {
	var req transformRequest
	if err := webutils.ReadJson(r, &req); err != nil {
		s.writeError(w, r, errors.Wrapf(errBadRequest, "%v", err))
		return
	}
	t := editor.Transform{Translation: req.Translation, Rotation: req.Rotation, Scale: mgl32.Vec3{1, 1, 1}}
	if req.Scale != nil {
		t.Scale = *req.Scale
	}
	if err := s.editor.SetInstanceTransform(index(r, "object"), index(r, "instance"), t); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJson(w, s.describe())
}

func (s *Server) HandlerActionAddLight(w http.ResponseWriter, r *http.Request) {
	var idx int
	if lightType(r) == scene.DirectionalLight {
		idx = s.editor.AddDirectionalLight()
	} else {
		idx = s.editor.AddPointLight()
	}
	s.writeJson(w, map[string]int{"light": idx})
}

type lightRequest struct {
	Color mgl32.Vec3 `json:"color"`
	Value mgl32.Vec3 `json:"value"`
}

func (s *Server) HandlerActionSetLight(w http.ResponseWriter, r *http.Request) {
	var req lightRequest
	if err := webutils.ReadJson(r, &req); err != nil {
		s.writeError(w, r, errors.Wrapf(errBadRequest, "%v", err))
		return
	}
	if err := s.editor.SetLight(lightType(r), index(r, "index"), req.Color, req.Value); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJson(w, s.describe())
}

type particleRequest struct {
	VertexShader   string     `json:"vert"`
	FragmentShader string     `json:"frag"`
	Position       mgl32.Vec3 `json:"position"`
	Color          mgl32.Vec3 `json:"color"`
}

func (s *Server) HandlerActionAddParticles(w http.ResponseWriter, r *http.Request) {
	var req particleRequest
	if err := webutils.ReadJson(r, &req); err != nil {
		s.writeError(w, r, errors.Wrapf(errBadRequest, "%v", err))
		return
	}
	idx, err := s.editor.AddParticleSpawner(req.VertexShader, req.FragmentShader, req.Position, req.Color)
	if err != nil {
		s.writeError(w, r, errors.Wrapf(errBadRequest, "%v", err))
		return
	}
	s.writeJson(w, map[string]int{"spawner": idx})
}

type cameraRequest struct {
	Position mgl32.Vec3 `json:"position"`
	Target   mgl32.Vec3 `json:"target"`
}

func (s *Server) HandlerActionCamera(w http.ResponseWriter, r *http.Request) {
	var req cameraRequest
	if err := webutils.ReadJson(r, &req); err != nil {
		s.writeError(w, r, errors.Wrapf(errBadRequest, "%v", err))
		return
	}
	s.editor.SetCamera(req.Position, req.Target)
	s.writeJson(w, s.describe())
}

func (s *Server) HandlerDumpScene(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	var err error
	name := "scene" + editor.SceneExt
	s.editor.View(func(sc *scene.Scene) {
		err = mscn.Encode(&buf, sc)
		if sc.Path != "" {
			name = filepath.Base(sc.Path)
		}
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	webutils.WriteFile(w, &buf, name)
}

func (s *Server) HandlerDumpSceneJson(w http.ResponseWriter, r *http.Request) {
	v := s.describe()
	name := "scene"
	if v.Path != "" {
		name = strings.TrimSuffix(filepath.Base(v.Path), filepath.Ext(v.Path))
	}
	if err := webutils.WriteJsonFile(w, v, name); err != nil {
		s.log.Warn("json dump failed", "err", err)
	}
}

func (s *Server) HandlerDumpDebug(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	webutils.WriteResult(w, []byte(utils.SDump(s.describe())))
}

func (s *Server) HandlerStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	s.hub.Attach(conn)
}
