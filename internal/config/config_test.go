package config

import (
	"testing"
	"time"
)

func TestLoadRequiresUpstreamBaseURL(t *testing.T) {
	t.Setenv("UPSTREAM_API_URL", "")
	t.Setenv("CHANNEL_JWT_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPSTREAM_API_URL is missing")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("UPSTREAM_API_URL", "https://api.example.com/")
	t.Setenv("CHANNEL_JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("LIST_DEBOUNCE_WINDOW", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Upstream.BaseURL != "https://api.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.Upstream.BaseURL)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Server.Port)
	}
	if cfg.Session.CookieName != "auth_token" {
		t.Fatalf("expected auth_token cookie, got %s", cfg.Session.CookieName)
	}
	if cfg.Session.CookieMaxAge != 7*24*time.Hour {
		t.Fatalf("expected 7 day cookie, got %s", cfg.Session.CookieMaxAge)
	}
	if cfg.Listing.DebounceWindow != 500*time.Millisecond {
		t.Fatalf("expected 500ms debounce, got %s", cfg.Listing.DebounceWindow)
	}
}

func TestLoadParsesKafkaBrokerList(t *testing.T) {
	t.Setenv("UPSTREAM_API_URL", "https://api.example.com")
	t.Setenv("CHANNEL_JWT_SECRET", "secret")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "broker-2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
}
