// Package config holds the application configuration, loaded from a YAML
// file and environment variables.
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Upstream    UpstreamConfig    `yaml:"upstream"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Collections CollectionsConfig `yaml:"collections"`
	Session     SessionConfig     `yaml:"session"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// UpstreamConfig points at the entity API every collection reads and writes.
type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url" env:"UPSTREAM_BASE_URL" env-required:"true"`
	Timeout time.Duration `yaml:"timeout"  env:"UPSTREAM_TIMEOUT"  env-default:"15s"`
}

// PreferencesConfig holds the two preference tiers: the remote service and
// the local SQLite fallback. An empty remote URL disables the remote tier.
type PreferencesConfig struct {
	RemoteURL  string `yaml:"remote_url"  env:"PREFERENCES_REMOTE_URL"`
	SQLitePath string `yaml:"sqlite_path" env:"PREFERENCES_SQLITE_PATH" env-default:"console-prefs.db"`
}

// CollectionsConfig controls where collection definitions come from. The
// builtin set always loads; Dir adds CUE definition files on top.
type CollectionsConfig struct {
	Dir string `yaml:"dir" env:"COLLECTIONS_DIR"`
}

// SessionConfig bounds WebSocket session lifetime.
type SessionConfig struct {
	MaxAge      time.Duration `yaml:"max_age"      env:"SESSION_MAX_AGE"      env-default:"12h"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"SESSION_IDLE_TIMEOUT" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
