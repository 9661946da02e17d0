// Package config resolves the bridge configuration from CLI flags, an optional
// TOML (or YAML) file and built-in defaults with per-field precedence:
// CLI flags > config file > Defaults. A missing ntfy topic is reported as
// ErrMissingTopic so the caller can abort before binding a listener.
package config
