package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/grafana-to-ntfy/internal/application"
	"github.com/eugenenazirov/grafana-to-ntfy/internal/config"
	"github.com/eugenenazirov/grafana-to-ntfy/internal/logging"
)

// exitUsage matches EX_USAGE from sysexits.h.
const exitUsage = 64

var version = "dev"

var signalNotify = signal.Notify

func main() {
	logger, err := logging.New()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	code := run(os.Args[1:], logger)
	_ = logger.Sync()
	os.Exit(code)
}

// run resolves the configuration, serves until a shutdown signal arrives and
// returns the process exit code. Configuration errors return before any
// listener is bound.
func run(args []string, logger *zap.Logger) int {
	overrides, err := parseFlags(args)
	if err != nil {
		logger.Error("invalid command line", zap.Error(err))
		return exitUsage
	}

	cfg, err := config.Load(overrides, logger)
	if err != nil {
		return exitCode(err)
	}

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", zap.Error(err))
		return 1
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
	return 0
}

// parseFlags maps command-line flags onto config overrides. Only flags given
// on the command line are set, so an explicit empty or zero value still
// overrides the config file.
func parseFlags(args []string) (*config.CLIOverrides, error) {
	kingpinApp := kingpin.New("grafana-to-ntfy", "Forwards Grafana alert webhooks to an ntfy topic")
	kingpinApp.Version(version)

	var (
		urlSet, topicSet, portSet, keySet bool
		url, topic, key                   string
		port                              uint16
	)

	overrides := &config.CLIOverrides{}
	kingpinApp.Flag("config-file", "Path to the TOML configuration file (default "+config.DefaultConfigFile+")").
		Short('c').StringVar(&overrides.ConfigFile)
	kingpinApp.Flag("url", "ntfy server URL").Short('u').IsSetByUser(&urlSet).StringVar(&url)
	kingpinApp.Flag("topic", "ntfy topic").Short('t').IsSetByUser(&topicSet).StringVar(&topic)
	kingpinApp.Flag("port", "Port to listen on").Short('p').IsSetByUser(&portSet).Uint16Var(&port)
	kingpinApp.Flag("key", "Bearer key Grafana must present").Short('k').IsSetByUser(&keySet).StringVar(&key)

	if _, err := kingpinApp.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if urlSet {
		overrides.URL = &url
	}
	if topicSet {
		overrides.Topic = &topic
	}
	if portSet {
		overrides.Port = &port
	}
	if keySet {
		overrides.Key = &key
	}
	return overrides, nil
}

// exitCode maps a configuration error to the process exit status.
func exitCode(err error) int {
	if errors.Is(err, config.ErrMissingTopic) {
		return exitUsage
	}
	return 1
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
