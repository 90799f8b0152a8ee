package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.APIURL != "http://localhost:8000/api" {
		t.Fatalf("unexpected API URL %q", cfg.APIURL)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.APITimeout)
	}
	if cfg.Store.Kind != StoreFile || cfg.Store.Profile != "default" {
		t.Fatalf("unexpected store %+v", cfg.Store)
	}
	if cfg.Portal.Port != "8080" {
		t.Fatalf("unexpected portal port %q", cfg.Portal.Port)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"API_URL":     "https://api.ecoruta.mx/api",
		"API_TIMEOUT": "3s",
		"STORE":       "redis",
		"REDIS_ADDR":  "cache:6379",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.APIURL != "https://api.ecoruta.mx/api" || cfg.APITimeout != 3*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Store.Kind != StoreRedis || cfg.Store.RedisAddr != "cache:6379" {
		t.Fatalf("unexpected store %+v", cfg.Store)
	}
}

func TestLoadFrom_UnknownStore(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{"STORE": "sqlite"}))
	if err == nil {
		t.Fatalf("expected an error for an unknown store")
	}
}
