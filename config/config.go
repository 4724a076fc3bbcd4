// Package config holds the process-wide settings of the dispatch core.
// The Config struct is constructed once at start-up and passed by
// reference into the components that read it; changing it after the
// server starts accepting connections is undefined behavior.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the immutable application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`

	// PublicDir is the directory static assets are served from.
	PublicDir string `yaml:"public_dir"`

	// UploadDir is the directory multipart file parts are persisted to.
	UploadDir string `yaml:"upload_dir"`

	// IndexPath is the resource the default INDEX behavior redirects to.
	IndexPath string `yaml:"index_path"`

	// CORS enables auto-registration of OPTIONS preflight routes for
	// mutating route registrations.
	CORS bool `yaml:"cors"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	// MaxConns caps simultaneous connections. Zero means unlimited.
	MaxConns int `yaml:"max_conns"`
}

// SessionConfig holds session cookie settings.
type SessionConfig struct {
	// CookieName is the session-id cookie name.
	CookieName string `yaml:"cookie_name"`

	// MaxAge is the session cookie lifetime in seconds.
	MaxAge int `yaml:"max_age"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Session: SessionConfig{
			CookieName: "__sid",
			MaxAge:     86400 * 30,
		},
		PublicDir: "public",
		UploadDir: "uploads",
		IndexPath: "/index.html",
	}
}

// Load reads a YAML configuration file over the defaults and applies
// environment overrides last.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// FromEnv returns the defaults with environment overrides applied,
// for deployments that carry no configuration file.
func FromEnv() Config {
	cfg := Default()
	applyEnv(&cfg)
	return cfg
}

// applyEnv overlays WEFT_-prefixed environment variables.
func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "WEFT_ADDR")
	setInt(&cfg.Server.MaxConns, "WEFT_MAX_CONNS")
	setString(&cfg.PublicDir, "WEFT_PUBLIC_DIR")
	setString(&cfg.UploadDir, "WEFT_UPLOAD_DIR")
	setString(&cfg.IndexPath, "WEFT_INDEX_PATH")
	setBool(&cfg.CORS, "WEFT_CORS")
	setString(&cfg.Session.CookieName, "WEFT_SESSION_COOKIE")
	setInt(&cfg.Session.MaxAge, "WEFT_SESSION_MAX_AGE")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
