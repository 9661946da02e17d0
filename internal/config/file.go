package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// loadFile reads a config file. YAML is used for .yaml/.yml, TOML otherwise.
func loadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read file: %w", err)
	}

	var s Settings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("parse YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), &s); err != nil {
			return Settings{}, fmt.Errorf("parse TOML: %w", err)
		}
	}

	return s, nil
}
