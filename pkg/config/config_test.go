package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:5000/api" {
		t.Fatalf("unexpected default base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %v", cfg.API.Timeout)
	}
	if cfg.API.PageSize != 20 {
		t.Fatalf("expected page size 20, got %d", cfg.API.PageSize)
	}
	if cfg.Session.Backend != SessionBackendFile {
		t.Fatalf("expected file backend, got %q", cfg.Session.Backend)
	}
	if !strings.HasSuffix(cfg.Session.Path, filepath.Join("shopdash", "session.json")) {
		t.Fatalf("unexpected session path %q", cfg.Session.Path)
	}
	if cfg.Dashboard.TopCustomers != 5 || cfg.Dashboard.RangeDays != 30 {
		t.Fatalf("unexpected dashboard defaults %+v", cfg.Dashboard)
	}
	if cfg.App.Profile != "default" {
		t.Fatalf("unexpected profile %q", cfg.App.Profile)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://analytics.example.com/api")
	t.Setenv(EnvSessionBackend, "Redis")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/2")
	t.Setenv(EnvPageSize, "50")
	t.Setenv(EnvHTTPTimeout, "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "https://analytics.example.com/api" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.Session.Backend != SessionBackendRedis {
		t.Fatalf("expected normalized redis backend, got %q", cfg.Session.Backend)
	}
	if cfg.API.PageSize != 50 || cfg.API.Timeout != 3*time.Second {
		t.Fatalf("unexpected api config %+v", cfg.API)
	}
}

func TestLoad_RedisBackendRequiresAddress(t *testing.T) {
	t.Setenv(EnvSessionBackend, SessionBackendRedis)

	if _, err := Load(); err == nil {
		t.Fatal("expected redis backend without address to fail")
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv(EnvSessionBackend, "cookies")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown backend to fail")
	}
}

func TestLoad_RejectsNonHTTPBaseURL(t *testing.T) {
	t.Setenv(EnvAPIURL, "ftp://example.com")

	if _, err := Load(); err == nil {
		t.Fatal("expected non-http base url to fail")
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}
