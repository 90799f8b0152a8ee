// Package config loads the client and portal settings from the environment.
// Command-line flags override these values.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const envPrefix = "ECORUTA_"

// Token store backends.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

type Config struct {
	APIURL     string        `env:"API_URL,      default=http://localhost:8000/api"`
	APITimeout time.Duration `env:"API_TIMEOUT,  default=10s"`
	LogLevel   string        `env:"LOG_LEVEL,    default=info"`
	Pretty     bool          `env:"LOG_PRETTY,   default=false"`

	Store  StoreConfig
	Portal PortalConfig
}

// StoreConfig selects where the token pair is persisted.
type StoreConfig struct {
	Kind    string `env:"STORE,         default=file"`
	Path    string `env:"STORE_PATH"`
	Profile string `env:"STORE_PROFILE, default=default"`

	RedisAddr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,       default=0"`

	MongoURI      string `env:"MONGO_URI,      default=mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DB,       default=ecoruta"`
}

type PortalConfig struct {
	Port string `env:"PORTAL_PORT, default=8080"`
}

// Load reads ECORUTA_* variables.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.PrefixLookuper(envPrefix, envconfig.OsLookuper()))
}

// LoadFrom reads the settings from an explicit lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.Store.Kind {
	case StoreFile, StoreMemory, StoreRedis, StoreMongo:
	default:
		return nil, fmt.Errorf("config: unknown token store %q", cfg.Store.Kind)
	}
	return &cfg, nil
}
