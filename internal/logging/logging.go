package logging

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options holds the logger settings read from the environment.
type Options struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// New creates a production-ready structured logger configured for JSON output.
// The level is taken from the LOG_LEVEL environment variable.
func New() (*zap.Logger, error) {
	var opts Options
	if err := env.Parse(&opts); err != nil {
		return nil, fmt.Errorf("parse logging env: %w", err)
	}
	return NewWithOptions(opts)
}

// NewWithOptions builds the logger from explicit options.
func NewWithOptions(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.DisableStacktrace = false

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
