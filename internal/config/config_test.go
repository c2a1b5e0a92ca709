package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.DocsDir != "docs" {
		t.Errorf("expected default docs dir, got %q", cfg.DocsDir)
	}
	if cfg.MaxUploadSize != 52428800 {
		t.Errorf("expected 50 MiB upload limit, got %d", cfg.MaxUploadSize)
	}
	if cfg.MaxSources != 5 {
		t.Errorf("expected 5 max sources, got %d", cfg.MaxSources)
	}
	if cfg.SettleDelay != 2*time.Second {
		t.Errorf("expected 2s settle delay, got %v", cfg.SettleDelay)
	}
	if cfg.QueueProvider != "memory" {
		t.Errorf("expected memory queue by default, got %q", cfg.QueueProvider)
	}
	if cfg.CacheProvider != "noop" {
		t.Errorf("expected noop cache by default, got %q", cfg.CacheProvider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SETTLE_DELAY", "500ms")
	t.Setenv("MAX_SOURCES", "3")
	t.Setenv("QUEUE_PROVIDER", "nats")

	cfg := Load()
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.SettleDelay != 500*time.Millisecond {
		t.Errorf("expected 500ms settle delay, got %v", cfg.SettleDelay)
	}
	if cfg.MaxSources != 3 {
		t.Errorf("expected 3 max sources, got %d", cfg.MaxSources)
	}
	if cfg.QueueProvider != "nats" {
		t.Errorf("expected nats queue, got %q", cfg.QueueProvider)
	}
}

func TestCacheTTLDuration(t *testing.T) {
	cfg := Config{CacheTTL: 90}
	if got := cfg.CacheTTLDuration(); got != 90*time.Second {
		t.Errorf("expected 90s, got %v", got)
	}
}
