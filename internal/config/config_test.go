package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error without jwt secret")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: \"9000\"\njwt_secret: file-secret\ncache_ttl: 1m\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PORT", "9100")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9100" {
		t.Fatalf("env must override file port, got %s", cfg.Port)
	}
	if cfg.JWTSecret != "file-secret" {
		t.Fatalf("file secret not loaded, got %q", cfg.JWTSecret)
	}
	if cfg.CacheTTL != time.Minute {
		t.Fatalf("cache_ttl not parsed, got %v", cfg.CacheTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins not split from env: %#v", cfg.CORSOrigins)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if cfg.Port != "8081" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
}
