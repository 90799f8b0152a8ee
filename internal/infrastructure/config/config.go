// Package config loads the devserver settings from the environment.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const envPrefix = "ECORUTA_DEV_"

type Config struct {
	Port          string        `env:"PORT,           default=8000"`
	Env           string        `env:"ENV,            default=development"`
	JWTSecret     string        `env:"JWT_SECRET,     default=dev-secret-change-me"`
	AccessTTL     time.Duration `env:"ACCESS_TTL,     default=5m"`
	RefreshTTL    time.Duration `env:"REFRESH_TTL,    default=24h"`
	RotateRefresh bool          `env:"ROTATE_REFRESH, default=false"`
	LogLevel      string        `env:"LOG_LEVEL,      default=info"`

	Mongo MongoConfig
	Redis RedisConfig
}

// MongoConfig enables the mongo user repository when URI is set; otherwise
// users live in memory.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=ecoruta"`
}

// RedisConfig enables the redis refresh denylist when Addr is set.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Load reads ECORUTA_DEV_* variables.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.PrefixLookuper(envPrefix, envconfig.OsLookuper()))
}

// LoadFrom reads the settings from an explicit lookuper. Used by tests.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: load devserver settings: %w", err)
	}
	return &cfg, nil
}
