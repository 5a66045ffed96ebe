// Package web exposes the editor over HTTP.
package web

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mirielengine/mscn/editor"
	"github.com/mirielengine/mscn/status"
)

type Server struct {
	editor   *editor.Editor
	hub      *status.Hub
	log      *log.Logger
	upgrader websocket.Upgrader
}

func NewRouter(e *editor.Editor, hub *status.Hub, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{editor: e, hub: hub, log: logger.WithPrefix("web")}

	r := mux.NewRouter()
	r.HandleFunc("/json/scene", s.HandlerJsonScene).Methods(http.MethodGet)
	r.HandleFunc("/action/scene/{action:new|save|load}", s.HandlerActionScene).Methods(http.MethodPost)
	r.HandleFunc("/action/objects", s.HandlerActionAddObject).Methods(http.MethodPost)
	r.HandleFunc("/action/objects/{object:[0-9]+}/instances", s.HandlerActionAddInstance).Methods(http.MethodPost)
	r.HandleFunc("/action/objects/{object:[0-9]+}/instances/{instance:[0-9]+}/shader", s.HandlerActionShader).Methods(http.MethodPost)
	r.HandleFunc("/action/objects/{object:[0-9]+}/instances/{instance:[0-9]+}/transform", s.HandlerActionTransform).Methods(http.MethodPost)
	r.HandleFunc("/action/lights/{kind:point|directional}", s.HandlerActionAddLight).Methods(http.MethodPost)
	r.HandleFunc("/action/lights/{kind:point|directional}/{index:[0-9]+}", s.HandlerActionSetLight).Methods(http.MethodPut)
	r.HandleFunc("/action/particles", s.HandlerActionAddParticles).Methods(http.MethodPost)
	r.HandleFunc("/action/camera", s.HandlerActionCamera).Methods(http.MethodPost)
	r.HandleFunc("/dump/scene", s.HandlerDumpScene).Methods(http.MethodGet)
	r.HandleFunc("/dump/scene.json", s.HandlerDumpSceneJson).Methods(http.MethodGet)
	r.HandleFunc("/dump/debug", s.HandlerDumpDebug).Methods(http.MethodGet)
	if hub != nil {
		r.HandleFunc("/ws/status", s.HandlerStatus)
	}

	var h http.Handler = r
	h = handlers.LoggingHandler(s.log.StandardLog().Writer(), h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(s.log.StandardLog()), handlers.PrintRecoveryStack(true))(h)
	return h
}

// StartServer serves until ctx is cancelled and then shuts down gracefully.
func StartServer(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errc
		return nil
	}
}
