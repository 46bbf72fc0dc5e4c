// Package runtime assembles the agent: config, logging, the host bridge,
// the capture pipeline, the command socket, and the HTTP surface. Embed
// an Agent to run the whole daemon in-process.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/saker-ai/tauri-agent/internal/bridge"
	appconfig "github.com/saker-ai/tauri-agent/internal/config"
	apphttp "github.com/saker-ai/tauri-agent/internal/http"
	"github.com/saker-ai/tauri-agent/internal/hostbridge"
	applogger "github.com/saker-ai/tauri-agent/internal/logger"
	"github.com/saker-ai/tauri-agent/internal/screenshot"
	"github.com/saker-ai/tauri-agent/internal/server"
	"github.com/saker-ai/tauri-agent/internal/storage"
	"github.com/saker-ai/tauri-agent/internal/tools"
	"github.com/saker-ai/tauri-agent/internal/window"
)

// Agent is a fully wired daemon instance.
type Agent struct {
	cfg        appconfig.Config
	logger     *zap.Logger
	socket     *server.Server
	httpServer *http.Server
	pool       *screenshot.Pool
}

// New loads configuration and wires every component. An empty configPath
// uses the embedded defaults plus any agent.yaml in the working
// directory.
func New(configPath string) (*Agent, error) {
	var (
		cfg appconfig.Config
		err error
	)
	if configPath == "" {
		cfg, err = appconfig.Load()
	} else {
		cfg, err = appconfig.LoadConfig(configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("load agent config: %w", err)
	}

	logger, err := applogger.New(cfg.Log)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	logger.Info("agent config loaded",
		zap.String("config_path", configPath),
		zap.String("socket_path", cfg.SocketPath),
		zap.String("bridge_addr", cfg.BridgeAddr()),
		zap.String("application_name", cfg.ApplicationName),
	)

	br := bridge.New()
	registry := window.NewRegistry()
	hostHandler := hostbridge.NewHandler(logger, br, registry, cfg.QueryTimeout(), cfg.InputTimeout())

	var archive *storage.Archive
	if cfg.Archive.Enabled {
		archive, err = storage.NewArchive(cfg.Archive.Dir, cfg.Archive.MaxEntries)
		if err != nil {
			logger.Warn("capture archive unavailable",
				zap.String("dir", cfg.Archive.Dir),
				zap.Error(err))
			archive = nil
		}
	}

	pool := screenshot.NewPool(cfg.Screenshot.Workers)
	pipeline := screenshot.NewPipeline(logger, registry, hostHandler, hostHandler, br, pool, screenshot.Options{
		ApplicationName: cfg.ApplicationName,
		Quality:         cfg.Screenshot.Quality,
		MaxWidth:        cfg.Screenshot.MaxWidth,
		QueryTimeout:    cfg.QueryTimeout(),
	})
	tl := tools.New(logger, br, registry, hostHandler, hostHandler, hostHandler, cfg.QueryTimeout(), cfg.InputTimeout())

	dispatcher := server.NewDispatcher(logger)
	server.RegisterCommands(dispatcher, tl, pipeline, archive, logger)
	socket := server.New(logger, cfg.SocketPath, dispatcher)

	router := apphttp.NewRouter(hostHandler, archive, logger)
	httpServer := &http.Server{
		Addr:    cfg.BridgeAddr(),
		Handler: router,
	}

	return &Agent{
		cfg:        cfg,
		logger:     logger,
		socket:     socket,
		httpServer: httpServer,
		pool:       pool,
	}, nil
}

// Run binds the command socket and the bridge listener and serves until
// Shutdown or the first listener failure.
func (a *Agent) Run() error {
	if err := a.socket.Listen(); err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("starting bridge http server", zap.String("addr", a.httpServer.Addr))
		errCh <- ignoreServerClosed(a.httpServer.ListenAndServe())
	}()
	go func() {
		errCh <- a.socket.Serve()
	}()
	return <-errCh
}

// Shutdown stops both listeners and the capture workers. In-flight
// commands are cancelled.
func (a *Agent) Shutdown(ctx context.Context) error {
	err := ignoreServerClosed(a.httpServer.Shutdown(ctx))
	if closeErr := a.socket.Close(); err == nil {
		err = closeErr
	}
	a.pool.Close()
	return err
}

// SocketPath returns the command socket path.
func (a *Agent) SocketPath() string {
	return a.socket.Path()
}

// BridgeAddr returns the bridge listener address.
func (a *Agent) BridgeAddr() string {
	return a.httpServer.Addr
}

// Logger returns the agent's logger.
func (a *Agent) Logger() *zap.Logger {
	return a.logger
}

func ignoreServerClosed(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
