package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	RelayLocal = "local"
	RelayRedis = "redis"
)

type Config struct {
	Port      string        `env:"PORT,      default=4000"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=720h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	Store     string        `env:"STORE_DRIVER, default=mongo"`

	AllowOrigins []string `env:"CORS_ALLOW_ORIGINS, default=*"`

	// UnscopedSearch lets a task search match tasks the caller neither
	// created nor is assigned to. Kept only for clients relying on it.
	UnscopedSearch bool `env:"TASKS_UNSCOPED_SEARCH, default=false"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Realtime RealtimeConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=task_manager"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type RealtimeConfig struct {
	Relay       string `env:"REALTIME_RELAY,   default=local"`
	Workers     int    `env:"REALTIME_WORKERS, default=8"`
	QueueBuffer int    `env:"REALTIME_BUFFER,  default=256"`
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// IsDevelopment reports whether pretty logging and verbose errors are wanted.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from the given lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	switch cfg.Store {
	case StoreMongo, StoreMemory:
	default:
		return nil, fmt.Errorf("config: unknown STORE_DRIVER %q", cfg.Store)
	}
	switch cfg.Realtime.Relay {
	case RelayLocal, RelayRedis:
	default:
		return nil, fmt.Errorf("config: unknown REALTIME_RELAY %q", cfg.Realtime.Relay)
	}
	return &cfg, nil
}
