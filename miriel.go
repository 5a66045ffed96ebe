package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mirielengine/mscn/config"
	"github.com/mirielengine/mscn/editor"
	"github.com/mirielengine/mscn/render"
	"github.com/mirielengine/mscn/scene"
	"github.com/mirielengine/mscn/status"
	"github.com/mirielengine/mscn/utils"
	"github.com/mirielengine/mscn/web"
)

func fatal(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}

func main() {
	var backendName, configPath, scenePath, addr string
	var dump bool
	flag.StringVar(&backendName, "e", "", "Graphics backend: "+strings.Join(config.BackendNames(), ", "))
	flag.StringVar(&configPath, "config", config.DefaultFile, "Path to config file")
	flag.StringVar(&scenePath, "scene", "", "Scene file to open on start")
	flag.StringVar(&addr, "i", "", "Address of server, overrides config")
	flag.BoolVar(&dump, "dump", false, "Dump the loaded scene to stdout and exit")
	flag.Parse()

	if backendName == "" {
		flag.PrintDefaults()
		fatal(2, "missing backend, use -e")
	}
	backend, err := config.ParseBackend(backendName)
	if err != nil {
		fatal(2, "%v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fatal(1, "%v", err)
	}
	if err := cfg.SelectBackend(backend); err != nil {
		fatal(2, "%v", err)
	}
	if addr != "" {
		cfg.HttpAddr = addr
	}

	logFile, err := status.OpenLogFile(cfg.LogsDir, time.Now())
	if err != nil {
		fatal(1, "%v", err)
	}
	hub := status.NewHub()
	sink := status.NewSink(logFile, hub, cfg.LogQueueSize)
	logger, err := status.NewLogger(io.MultiWriter(os.Stderr, sink), cfg.LogLevel)
	if err != nil {
		sink.Close()
		fatal(1, "%v", err)
	}
	logger.Info("starting", "backend", backend, "config", configPath)

	gpu := render.NewHeadless(backend.String())
	gpu.ShadersDir = cfg.ShadersDir
	e := editor.New(cfg, logger, gpu, nil)
	defer func() {
		e.Close()
		hub.Close()
		if n := sink.Dropped(); n != 0 {
			fmt.Fprintf(os.Stderr, "%d log lines dropped\n", n)
		}
		sink.Close()
	}()

	if scenePath != "" {
		if err := e.LoadScene(scenePath); err != nil {
			logger.Error("failed to open scene", "path", scenePath, "err", err)
		}
	}
	if dump {
		e.View(func(s *scene.Scene) { utils.Dump(os.Stdout, s) })
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go e.Run(ctx)

	if cfg.WatchScenes {
		go func() {
			if err := e.Watch(ctx); err != nil {
				logger.Error("scene watcher stopped", "err", err)
			}
		}()
	}

	if err := web.StartServer(ctx, cfg.HttpAddr, web.NewRouter(e, hub, logger), logger); err != nil {
		logger.Error("server failed", "err", err)
	}
	logger.Info("shutting down")
}
