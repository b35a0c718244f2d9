// Package config centralises configuration parsing for the activity directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Config captures runtime configuration values for the activity directory.
type Config struct {
	HTTPAddress       string        `env:"HTTP_ADDRESS,default=:8000"`
	StaticDir         string        `env:"STATIC_DIR"` // Empty serves the embedded front-end.
	LogLevel          string        `env:"LOG_LEVEL,default=info"`
	LogFormat         string        `env:"LOG_FORMAT,default=text"`
	CORSAllowedOrigin string        `env:"CORS_ALLOWED_ORIGIN,default=http://localhost:5173"`
	KafkaBrokersRaw   string        `env:"KAFKA_BROKERS"` // Comma separated; empty disables roster events.
	KafkaTopic        string        `env:"KAFKA_TOPIC,default=roster_events"`
	PublishTimeout    time.Duration `env:"PUBLISH_TIMEOUT,default=2s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=15s"`
	ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT,default=5s"`
	WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT,default=10s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT,default=60s"`
}

// Load reads an optional .env file, then environment variables, applying
// defaults suitable for local dev. A missing .env is fine; an unreadable one
// is an error. Variables already set in the environment win over .env values.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// KafkaBrokers returns the configured broker list, dropping blank entries.
func (c Config) KafkaBrokers() []string {
	return splitAndTrim(c.KafkaBrokersRaw)
}

// EventsEnabled reports whether roster events should be published.
func (c Config) EventsEnabled() bool {
	return len(c.KafkaBrokers()) > 0
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
