package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Environment values recognised in PORTAL_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all portal gateway configuration.
type Config struct {
	Env            string        `env:"PORTAL_ENV" envDefault:"development"`
	AppName        string        `env:"APP_NAME" envDefault:"AccessWash Portal"`
	ListenAddr     string        `env:"LISTEN_ADDR" envDefault:":3000"`
	PlatformDomain string        `env:"PLATFORM_DOMAIN" envDefault:"accesswash.org"`
	LocalAPIPort   int           `env:"LOCAL_API_PORT" envDefault:"8000"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"168h"` // 7 days
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	RedisAddr      string        `env:"REDIS_ADDR"` // empty = cookie-backed sessions
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	AuthRatePerSec float64       `env:"AUTH_RATE_PER_SEC" envDefault:"5"`
	AuthRateBurst  int           `env:"AUTH_RATE_BURST" envDefault:"10"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the portal runs against the live platform.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
