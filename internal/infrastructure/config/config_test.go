package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func load(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	return LoadFrom(context.Background(), envconfig.MapLookuper(env))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, map[string]string{"JWT_SECRET": "s3cret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || cfg.HTTPAddress() != ":8080" {
		t.Errorf("unexpected port: %q", cfg.Port)
	}
	if cfg.StoreDriver != StoreMongo {
		t.Errorf("expected mongo store, got %q", cfg.StoreDriver)
	}
	if cfg.Notify.Driver != NotifyLog {
		t.Errorf("expected log notifier, got %q", cfg.Notify.Driver)
	}
	if cfg.Notify.Timeout != 10*time.Second {
		t.Errorf("unexpected notify timeout: %s", cfg.Notify.Timeout)
	}
	if len(cfg.Notify.Recipients) != 1 || cfg.Notify.Recipients[0] != "admin@example.com" {
		t.Errorf("unexpected recipients: %v", cfg.Notify.Recipients)
	}
	if !cfg.IsDevelopment() || !cfg.ShouldSeed() {
		t.Errorf("development should seed by default")
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	if _, err := load(t, map[string]string{}); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoad_PostgresNeedsURL(t *testing.T) {
	_, err := load(t, map[string]string{"JWT_SECRET": "x", "STORE_DRIVER": "postgres"})
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}

	cfg, err := load(t, map[string]string{"JWT_SECRET": "x", "STORE_DRIVER": "postgres", "DATABASE_URL": "postgres://localhost/db"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Postgres.URL != "postgres://localhost/db" {
		t.Errorf("unexpected url: %q", cfg.Postgres.URL)
	}
}

func TestLoad_UnknownDrivers(t *testing.T) {
	if _, err := load(t, map[string]string{"JWT_SECRET": "x", "STORE_DRIVER": "sqlite"}); err == nil {
		t.Error("expected error for unknown store driver")
	}
	if _, err := load(t, map[string]string{"JWT_SECRET": "x", "NOTIFY_DRIVER": "pigeon"}); err == nil {
		t.Error("expected error for unknown notify driver")
	}
}

func TestLoad_RedisNotifierNeedsRedis(t *testing.T) {
	if _, err := load(t, map[string]string{"JWT_SECRET": "x", "NOTIFY_DRIVER": "redis"}); err == nil {
		t.Error("expected error when redis is disabled")
	}
	if _, err := load(t, map[string]string{"JWT_SECRET": "x", "NOTIFY_DRIVER": "redis", "REDIS_ENABLED": "true"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_SMTPNeedsSender(t *testing.T) {
	if _, err := load(t, map[string]string{"JWT_SECRET": "x", "NOTIFY_DRIVER": "smtp"}); err == nil {
		t.Error("expected error without SMTP sender")
	}
	cfg, err := load(t, map[string]string{
		"JWT_SECRET":        "x",
		"NOTIFY_DRIVER":     "smtp",
		"SMTP_FROM":         "alerts@example.com",
		"NOTIFY_RECIPIENTS": "ops@example.com,oncall@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Notify.Recipients) != 2 {
		t.Errorf("expected two recipients, got %v", cfg.Notify.Recipients)
	}
}

func TestShouldSeed(t *testing.T) {
	cfg, _ := load(t, map[string]string{"JWT_SECRET": "x", "ENV": "production"})
	if cfg.ShouldSeed() {
		t.Error("production should not seed by default")
	}

	cfg, _ = load(t, map[string]string{"JWT_SECRET": "x", "ENV": "production", "SEED_USERS": "true"})
	if !cfg.ShouldSeed() {
		t.Error("SEED_USERS=true should force seeding")
	}

	cfg, _ = load(t, map[string]string{"JWT_SECRET": "x", "SEED_USERS": "false"})
	if cfg.ShouldSeed() {
		t.Error("SEED_USERS=false should disable seeding")
	}
}
