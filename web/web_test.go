package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirielengine/mscn/config"
	"github.com/mirielengine/mscn/editor"
	"github.com/mirielengine/mscn/render"
	"github.com/mirielengine/mscn/scene"
	"github.com/mirielengine/mscn/status"
)

type stubImporter struct{}

func (stubImporter) Import(path string, textures scene.TextureLoader) (*scene.Geometry, error) {
	if strings.HasPrefix(filepath.Base(path), "broken") {
		return nil, errors.Wrapf(scene.ErrImport, "%s: corrupt", path)
	}
	return &scene.Geometry{Vertices: make([]scene.Vertex, 3), Indices: []uint32{0, 1, 2}}, nil
}

func newTestRouter(t *testing.T, hub *status.Hub) (http.Handler, *editor.Editor, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.ScenesDir = filepath.Join(t.TempDir(), "scenes")
	e := editor.New(cfg, nil, render.NewHeadless("Vulkan"), stubImporter{})
	t.Cleanup(e.Close)
	return NewRouter(e, hub, nil), e, cfg
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, rd))
	return rec
}

func decodeScene(t *testing.T, rec *httptest.ResponseRecorder) sceneView {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var v sceneView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestSceneJson(t *testing.T) {
	h, _, _ := newTestRouter(t, nil)

	v := decodeScene(t, do(t, h, http.MethodGet, "/json/scene", ""))
	assert.Equal(t, "Vulkan", v.Backend)
	assert.Empty(t, v.Objects)
	assert.False(t, v.Dirty)
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, v.Camera.Position)

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPost, "/json/scene", "").Code)
}

func TestObjectActions(t *testing.T) {
	h, _, _ := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/action/objects?path=cube.obj", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"object":0}`, rec.Body.String())

	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/action/objects?path=cube.obj", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, http.MethodPost, "/action/objects?path=broken.glb", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/action/objects?path=notes.txt", "").Code)

	rec = do(t, h, http.MethodPost, "/action/objects/0/instances", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"object":0,"instance":1}`, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/action/objects/4/instances", "").Code)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/action/objects/0/instances/1/shader?stage=geom&name=x.geom", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/action/objects/0/instances/1/shader?stage=vert&name=a+b", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/action/objects/0/instances/1/shader?stage=frag&name=", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/action/objects/0/instances/9/shader?stage=vert&name=x.vert", "").Code)

	v := decodeScene(t, do(t, h, http.MethodPost, "/action/objects/0/instances/1/shader?stage=vert&name=x.vert", ""))
	require.Len(t, v.Objects, 1)
	require.Len(t, v.Objects[0].Instances, 2)
	assert.Equal(t, "x.vert", v.Objects[0].Instances[1].VertexShader)
	assert.Equal(t, "cube", v.Objects[0].Name)
	assert.Equal(t, 1, v.Objects[0].Triangles)
	assert.True(t, v.Dirty)

	v = decodeScene(t, do(t, h, http.MethodPost, "/action/objects/0/instances/0/transform",
		`{"translation":[1,2,3],"rotation":[0,90,0]}`))
	inst := v.Objects[0].Instances[0]
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, inst.Translation)
	assert.Equal(t, mgl32.Vec3{0, 90, 0}, inst.Rotation)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, inst.Scale)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/action/objects/0/instances/0/transform", `{"bogus":1}`).Code)
}

func TestLightParticleCameraActions(t *testing.T) {
	h, _, _ := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/action/lights/directional", "")
	assert.JSONEq(t, `{"light":0}`, rec.Body.String())
	rec = do(t, h, http.MethodPost, "/action/lights/point", "")
	assert.JSONEq(t, `{"light":0}`, rec.Body.String())
	rec = do(t, h, http.MethodPost, "/action/lights/point", "")
	assert.JSONEq(t, `{"light":1}`, rec.Body.String())

	v := decodeScene(t, do(t, h, http.MethodPut, "/action/lights/point/1", `{"color":[1,0,0],"value":[0,4,0]}`))
	require.Len(t, v.PointLights, 2)
	assert.Equal(t, mgl32.Vec3{0, 4, 0}, v.PointLights[1].Value)
	assert.Len(t, v.DirectionalLights, 1)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPut, "/action/lights/directional/3", `{}`).Code)

	rec = do(t, h, http.MethodPost, "/action/particles", `{"vert":"p.vert","frag":"p.frag","position":[0,1,0],"color":[1,1,1]}`)
	assert.JSONEq(t, `{"spawner":0}`, rec.Body.String())
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/action/particles", `{"vert":"p.vert"}`).Code)

	v = decodeScene(t, do(t, h, http.MethodPost, "/action/camera", `{"position":[1,1,1],"target":[0,0,0]}`))
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, v.Camera.Position)
	assert.Len(t, v.Particles, 1)
}

func TestSceneFileActions(t *testing.T) {
	h, e, cfg := newTestRouter(t, nil)
	_, err := e.AddObject("cube.obj")
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/dump/scene", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "scene.mscn")
	assert.Equal(t, "cube.obj {\n\t{\n\t}\n}\nc 0 0 5 0 0 0\n", rec.Body.String())

	target := filepath.Join(cfg.ScenesDir, "saved.mscn")
	rec = do(t, h, http.MethodPost, "/action/scene/save?path="+target, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"path":"`+target+`"}`, rec.Body.String())
	_, err = os.Stat(target)
	require.NoError(t, err)

	v := decodeScene(t, do(t, h, http.MethodPost, "/action/scene/new", ""))
	assert.Empty(t, v.Objects)
	assert.Empty(t, v.Path)

	v = decodeScene(t, do(t, h, http.MethodPost, "/action/scene/load?path=saved.mscn", ""))
	assert.Len(t, v.Objects, 1)
	assert.Equal(t, target, v.Path)
	assert.False(t, v.Dirty)

	rec = do(t, h, http.MethodGet, "/dump/scene.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="saved.json"`)
	v = decodeScene(t, rec)
	assert.Len(t, v.Objects, 1)
	assert.Equal(t, target, v.Path)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/action/scene/load", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/action/scene/load?path=nope.mscn", "").Code)

	rec = do(t, h, http.MethodGet, "/dump/debug", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusSocket(t *testing.T) {
	hub := status.NewHub()
	defer hub.Close()
	h, _, _ := newTestRouter(t, hub)
	srv := httptest.NewServer(h)
	defer srv.Close()

	hub.Broadcast("loaded scene\n")

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/status", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg struct {
		Message string `json:"message"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "loaded scene", msg.Message)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusCode(errors.Wrapf(scene.ErrInvalidIndex, "x")))
	assert.Equal(t, http.StatusUnprocessableEntity, statusCode(errors.Wrapf(scene.ErrMalformedNumber, "x")))
	assert.Equal(t, http.StatusInternalServerError, statusCode(errors.New("boom")))
}
