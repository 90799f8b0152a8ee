package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"ACCESS_TTL":     "30s",
		"ROTATE_REFRESH": "true",
		"MONGO_URI":      "mongodb://db:27017",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Port != "8000" || cfg.RefreshTTL != 24*time.Hour {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AccessTTL != 30*time.Second || !cfg.RotateRefresh {
		t.Fatalf("unexpected token settings: %+v", cfg)
	}
	if cfg.Mongo.URI != "mongodb://db:27017" || cfg.Mongo.Database != "ecoruta" {
		t.Fatalf("unexpected mongo settings: %+v", cfg.Mongo)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("redis must stay disabled by default, got %q", cfg.Redis.Addr)
	}
}
