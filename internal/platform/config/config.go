// Package config builds process configuration from the environment so main
// stays lean.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures everything the server process needs at startup.
type Config struct {
	Addr            string        `env:"ATTENDANCE_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"ATTENDANCE_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"ATTENDANCE_REQUEST_TIMEOUT" envDefault:"30s"`

	// DatabaseURL is the postgres DSN. Empty falls back to the in-memory
	// store, which only makes sense for local development.
	DatabaseURL string `env:"DATABASE_URL"`

	// JWTSigningKey signs and validates access tokens. The default exists
	// for development and must be overridden in production.
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"dotwysion"`

	Redis RedisConfig `envPrefix:"REDIS_"`
}

// RedisConfig configures the optional notification fan-out. An empty URL
// disables it.
type RedisConfig struct {
	URL          string        `env:"URL"`
	Channel      string        `env:"CHANNEL" envDefault:"attendance.events"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// FromEnv parses the process environment into a Config.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
