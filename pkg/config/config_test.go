package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if cfg.Remote.BaseURL != "http://localhost:9090" {
		t.Fatalf("unexpected remote base url %q", cfg.Remote.BaseURL)
	}
	if cfg.Remote.Timeout != 15*time.Second {
		t.Fatalf("expected default remote timeout 15s, got %v", cfg.Remote.Timeout)
	}
	if cfg.Reservations.SubmitGuardTTL != 30*time.Second {
		t.Fatalf("expected default submit guard ttl 30s, got %v", cfg.Reservations.SubmitGuardTTL)
	}
	if cfg.Reservations.NotesMaxLength != 250 {
		t.Fatalf("expected default notes max 250, got %d", cfg.Reservations.NotesMaxLength)
	}
	if cfg.Realtime.CreatedChannel != "reservation.created" {
		t.Fatalf("unexpected created channel %q", cfg.Realtime.CreatedChannel)
	}
	if cfg.DB.Path != "stockdesk.db" {
		t.Fatalf("unexpected db path %q", cfg.DB.Path)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv("STOCKDESK_APP_ENV"); err != nil {
		t.Fatalf("failed to unset env: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv("STOCKDESK_APP_ENV", "prod")
	t.Setenv("STOCKDESK_APP_PORT", "8081")
	t.Setenv("STOCKDESK_REMOTE_BASE_URL", "http://localhost:9090")
	t.Setenv("STOCKDESK_REDIS_URL", "redis://localhost:6379/0")
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
