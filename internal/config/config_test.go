package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("TELEGRAM_CHAT_ID", "@testchannel")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NewsURL != "https://www.bangladeshguardian.com/latest" {
		t.Errorf("NewsURL = %q", cfg.NewsURL)
	}
	if cfg.CheckInterval != 5*time.Minute {
		t.Errorf("CheckInterval = %v, want 5m", cfg.CheckInterval)
	}
	if cfg.ErrorCooldown != time.Minute {
		t.Errorf("ErrorCooldown = %v, want 1m", cfg.ErrorCooldown)
	}
	if cfg.PostedLinksFile != "posted_links.json" {
		t.Errorf("PostedLinksFile = %q", cfg.PostedLinksFile)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CHECK_INTERVAL_SECONDS", "30")
	t.Setenv("NEWS_URL", "https://news.example.com/feed")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CheckInterval != 30*time.Second {
		t.Errorf("CheckInterval = %v, want 30s", cfg.CheckInterval)
	}
	if cfg.NewsURL != "https://news.example.com/feed" {
		t.Errorf("NewsURL = %q", cfg.NewsURL)
	}
	if !cfg.Debug {
		t.Error("Debug should be enabled")
	}
}

func TestLoadBadIntervalFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("CHECK_INTERVAL_SECONDS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CheckInterval != 5*time.Minute {
		t.Errorf("CheckInterval = %v, want default 5m", cfg.CheckInterval)
	}
}

func TestValidateMissingToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "@testchannel")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing TELEGRAM_TOKEN")
	}
}

func TestValidateMissingChatID(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing TELEGRAM_CHAT_ID")
	}
}
