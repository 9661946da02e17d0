package config

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"
	"go.uber.org/zap"
)

const (
	// DefaultConfigFile is read when no --config-file flag is given.
	DefaultConfigFile = "grafana_to_ntfy.toml"

	defaultURL  = "http://ntfy.sh"
	defaultPort = 8080
)

// ErrMissingTopic is returned when neither the CLI nor the config file provide an ntfy topic.
var ErrMissingTopic = errors.New("missing ntfy topic")

// Settings is one partial configuration source. A nil field is "not set";
// a non-nil pointer to a zero value is an explicit setting.
type Settings struct {
	URL   *string `toml:"url" yaml:"url"`
	Topic *string `toml:"topic" yaml:"topic"`
	Port  *uint16 `toml:"port" yaml:"port"`
	Key   *string `toml:"key" yaml:"key"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile string
	Settings
}

// Config is the effective configuration, resolved once at startup.
type Config struct {
	URL   string
	Topic string
	Port  uint16
	// Key enables bearer authentication when non-empty.
	Key string

	ShutdownGracePeriod time.Duration
	ReadHeaderTimeout   time.Duration
	IdleTimeout         time.Duration
}

// AuthEnabled reports whether inbound requests must carry a bearer token.
func (c Config) AuthEnabled() bool {
	return c.Key != ""
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > config file > Defaults
func Load(overrides *CLIOverrides, logger *zap.Logger) (Config, error) {
	if overrides == nil {
		overrides = &CLIOverrides{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	path := overrides.ConfigFile
	if path == "" {
		path = DefaultConfigFile
	}

	fileSettings, err := loadFile(path)
	if err != nil {
		logger.Warn("config file ignored", zap.String("path", path), zap.Error(err))
		fileSettings = Settings{}
	}

	settings, err := resolve(overrides.Settings, fileSettings, defaultSettings())
	if err != nil {
		return Config{}, err
	}

	if err := validateSettings(settings); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return Config{}, err
	}

	cfg := newConfig(settings)
	logger.Debug("config port", zap.Uint16("port", cfg.Port))
	logger.Debug("config key", zap.Bool("set", cfg.AuthEnabled()))
	logger.Debug("config ntfy topic", zap.String("topic", cfg.Topic))
	logger.Debug("config url", zap.String("url", cfg.URL))

	return cfg, nil
}

// defaultSettings returns the built-in values. Topic and key have no default.
func defaultSettings() Settings {
	url := defaultURL
	port := uint16(defaultPort)
	return Settings{
		URL:  &url,
		Port: &port,
	}
}

// resolve merges sources field by field; the first source with a non-nil
// value for a field wins, even when that value is empty or zero.
func resolve(sources ...Settings) (Settings, error) {
	var out Settings
	for _, src := range sources {
		// WithoutDereference keeps mergo from writing into a set pointer whose
		// target is a zero value.
		if err := mergo.Merge(&out, src, mergo.WithoutDereference); err != nil {
			return Settings{}, fmt.Errorf("merge config sources: %w", err)
		}
	}
	return out, nil
}

func validateSettings(s Settings) error {
	if s.Topic == nil {
		return ErrMissingTopic
	}
	return nil
}

func newConfig(s Settings) Config {
	return Config{
		URL:                 deref(s.URL),
		Topic:               deref(s.Topic),
		Port:                deref(s.Port),
		Key:                 deref(s.Key),
		ShutdownGracePeriod: 10 * time.Second,
		ReadHeaderTimeout:   5 * time.Second,
		IdleTimeout:         60 * time.Second,
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
