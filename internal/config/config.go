// internal/config/config.go
//
// Runtime configuration for the server.
// Values come from (lowest to highest precedence):
//   1. Defaults() below.
//   2. Process environment (a .env file is loaded into it by main via godotenv).
//
// Environment keys are the upper-case form of the koanf tags, e.g.
// FETCH_TIMEOUT=10s, CANVAS_SIZE=1200. Unknown variables are ignored.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds every tunable the server reads at startup.
type Config struct {
	Port         string `koanf:"port"`
	LogLevel     string `koanf:"log_level"`
	LogFormat    string `koanf:"log_format"` // "json" | "console"
	ClientOrigin string `koanf:"client_origin"`
	NodeEnv      string `koanf:"node_env"`

	DatabasePath string `koanf:"database_path"`

	SessionSecret string `koanf:"session_secret"`
	SessionCookie string `koanf:"session_cookie"`

	FetchTimeout   time.Duration `koanf:"fetch_timeout"`
	CanvasSize     int           `koanf:"canvas_size"`
	JPEGQuality    int           `koanf:"jpeg_quality"`
	MaxUploadBytes int64         `koanf:"max_upload_bytes"`

	ArchiveCacheSize int           `koanf:"archive_cache_size"`
	ArchiveTTL       time.Duration `koanf:"archive_ttl"`
	BatchTimeout     time.Duration `koanf:"batch_timeout"` // whole upload request, all rows
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Port:             "5175",
		LogLevel:         "info",
		LogFormat:        "json",
		ClientOrigin:     "http://localhost:5173",
		DatabasePath:     "./data/app.db",
		SessionSecret:    "dev_secret_change_me",
		SessionCookie:    "gridchase_session",
		FetchTimeout:     25 * time.Second,
		CanvasSize:       1500,
		JPEGQuality:      95,
		MaxUploadBytes:   32 << 20,
		ArchiveCacheSize: 32,
		ArchiveTTL:       30 * time.Minute,
		BatchTimeout:     30 * time.Minute,
	}
}

// Load layers the environment over Defaults and validates the result.
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(key)
			if !k.Exists(key) {
				return "", nil
			}
			return key, value
		},
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Port == "":
		return fmt.Errorf("config: port is empty")
	case c.CanvasSize <= 0:
		return fmt.Errorf("config: canvas_size must be positive, got %d", c.CanvasSize)
	case c.JPEGQuality < 1 || c.JPEGQuality > 100:
		return fmt.Errorf("config: jpeg_quality must be 1-100, got %d", c.JPEGQuality)
	case c.FetchTimeout <= 0:
		return fmt.Errorf("config: fetch_timeout must be positive")
	case c.ArchiveCacheSize <= 0:
		return fmt.Errorf("config: archive_cache_size must be positive")
	case c.BatchTimeout <= 0:
		return fmt.Errorf("config: batch_timeout must be positive")
	}
	return nil
}

// Production reports whether cookies should be Secure/SameSite=None.
func (c Config) Production() bool { return c.NodeEnv == "production" }
