package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	KVFile        = "file"
	KVRedis       = "redis"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName            string        `env:"APP_NAME"              envDefault:"Siaga"`
	AppEnv             string        `env:"APP_ENV"               envDefault:"development"`
	Port               string        `env:"PORT"                  envDefault:"8080"`
	LogLevel           string        `env:"LOG_LEVEL"             envDefault:"info"`
	StoreDriver        string        `env:"STORE_DRIVER"          envDefault:"sqlite"`
	SQLitePath         string        `env:"SQLITE_PATH"           envDefault:"emergency_app.db"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	KVDriver           string        `env:"KV_DRIVER"             envDefault:"file"`
	KVPath             string        `env:"KV_PATH"               envDefault:"device_info.json"`
	KVNamespace        string        `env:"KV_NAMESPACE"          envDefault:"siaga"`
	RedisURL           string        `env:"REDIS_URL"`
	ShutdownPeriod     time.Duration `env:"SHUTDOWN_TIMEOUT"      envDefault:"10s"`
	IdempotencyTTL     time.Duration `env:"IDEMPOTENCY_TTL"       envDefault:"24h"`
	MaxLoginAttempts   int           `env:"MAX_LOGIN_ATTEMPTS"    envDefault:"5"`
	LockDuration       time.Duration `env:"LOCK_DURATION"         envDefault:"15m"`
	LoginRatePerMinute int           `env:"LOGIN_RATE_PER_MINUTE" envDefault:"5"`
}

// Load reads an optional .env file, then parses and validates the
// environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	cfg.KVDriver = strings.ToLower(cfg.KVDriver)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks driver selections and the settings they depend on.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH must be set when STORE_DRIVER=%s", StoreSQLite)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when STORE_DRIVER=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.KVDriver {
	case KVFile:
		if strings.TrimSpace(c.KVPath) == "" {
			return fmt.Errorf("KV_PATH must be set when KV_DRIVER=%s", KVFile)
		}
	case KVRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL must be set when KV_DRIVER=%s", KVRedis)
		}
	default:
		return fmt.Errorf("invalid KV_DRIVER %q", c.KVDriver)
	}

	if c.MaxLoginAttempts <= 0 {
		return fmt.Errorf("MAX_LOGIN_ATTEMPTS must be positive")
	}
	if c.LockDuration <= 0 {
		return fmt.Errorf("LOCK_DURATION must be positive")
	}
	return nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
