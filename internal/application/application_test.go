package application

import (
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/grafana-to-ntfy/internal/config"
)

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(8085)
	logger := zaptest.NewLogger(t)

	app, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if app.server == nil || app.router == nil || app.handler == nil || app.client == nil {
		t.Fatalf("expected server, router, handler and client to be initialized")
	}
	if app.client.URL() != cfg.URL {
		t.Fatalf("expected client url %s, got %s", cfg.URL, app.client.URL())
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
	if app.Addr() != ":8085" {
		t.Fatalf("expected address :8085 before start, got %s", app.Addr())
	}
}

func TestNewRejectsMissingTopic(t *testing.T) {
	cfg := baseTestConfig(0)
	cfg.Topic = ""

	if _, err := New(cfg, zaptest.NewLogger(t)); !errors.Is(err, config.ErrMissingTopic) {
		t.Fatalf("expected ErrMissingTopic, got %v", err)
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig(9090)
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout || server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestStartReturnsBindError(t *testing.T) {
	occupied, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	defer occupied.Close()

	cfg := baseTestConfig(uint16(occupied.Addr().(*net.TCPAddr).Port))
	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := app.Start(); err == nil {
		_ = app.Server().Close()
		t.Fatalf("expected bind error for occupied port")
	}
}

func baseTestConfig(port uint16) config.Config {
	return config.Config{
		URL:                 "http://127.0.0.1:1",
		Topic:               "ops",
		Port:                port,
		ShutdownGracePeriod: 50 * time.Millisecond,
		ReadHeaderTimeout:   20 * time.Millisecond,
		IdleTimeout:         40 * time.Millisecond,
	}
}
