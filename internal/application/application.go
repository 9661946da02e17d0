package application

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/eugenenazirov/grafana-to-ntfy/internal/api"
	"github.com/eugenenazirov/grafana-to-ntfy/internal/config"
	"github.com/eugenenazirov/grafana-to-ntfy/internal/notify"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	client   *notify.Client
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
	listener net.Listener
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("failed to initialize application: %w", config.ErrMissingTopic)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := notify.NewClient(cfg.URL, logger)
	handler := api.NewHandler(client, cfg.Topic,
		api.WithAuthKey(cfg.Key),
		api.WithLogger(logger),
	)
	router := api.NewRouter(handler, logger)

	return &App{
		client:  client,
		handler: handler,
		router:  router,
		logger:  logger,
		server:  NewServer(cfg, router),
	}, nil
}

// NewServer creates and configures an HTTP server listening on all interfaces.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + strconv.Itoa(int(cfg.Port)),
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start binds the listener and serves requests in a goroutine.
// A bind failure is returned to the caller.
func (a *App) Start() error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}
	a.listener = ln

	a.logger.Info("listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound listener address, or the configured one before Start.
func (a *App) Addr() string {
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return a.server.Addr
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
