// Package config loads all runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Telegram settings
	TelegramToken  string
	TelegramChatID string
	DebugChatID    string // optional side channel for operational notices

	// News source settings
	NewsURL       string
	WaitSelector  string
	ItemSelector  string
	TitleSelector string
	SourcesPath   string // optional YAML list of extra RSS feeds

	// Loop cadence
	CheckInterval time.Duration // sleep between poll cycles
	ErrorCooldown time.Duration // sleep after an unhandled cycle error
	PublishPause  time.Duration // pacing after each successful publish

	// Persistence
	PostedLinksFile string
	DatabaseURL     string // when set, the postgres store is used instead

	// Card settings
	TemplatePath string

	// Renderer settings
	ChromeBin       string
	ChromeExtraArgs string
	RenderCacheDir  string
	RenderTimeout   time.Duration

	// App settings
	Debug   bool
	LogFile string
}

func Load() (*Config, error) {
	cfg := &Config{
		NewsURL:         getEnvOrDefault("NEWS_URL", "https://www.bangladeshguardian.com/latest"),
		WaitSelector:    getEnvOrDefault("NEWS_WAIT_SELECTOR", ".LatestNews"),
		ItemSelector:    getEnvOrDefault("NEWS_ITEM_SELECTOR", "div.LatestNews"),
		TitleSelector:   getEnvOrDefault("NEWS_TITLE_SELECTOR", "h3.Title"),
		SourcesPath:     os.Getenv("SOURCES_CONFIG_PATH"),
		CheckInterval:   getEnvDurationOrDefault("CHECK_INTERVAL_SECONDS", 300),
		ErrorCooldown:   getEnvDurationOrDefault("ERROR_COOLDOWN_SECONDS", 60),
		PublishPause:    getEnvDurationOrDefault("PUBLISH_PAUSE_SECONDS", 3),
		PostedLinksFile: getEnvOrDefault("POSTED_LINKS_FILE", "posted_links.json"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		TemplatePath:    getEnvOrDefault("CARD_TEMPLATE_PATH", "imagecard.jpg"),
		ChromeBin:       os.Getenv("CHROME_BIN"),
		ChromeExtraArgs: os.Getenv("CHROME_EXTRA_ARGS"),
		RenderCacheDir:  os.Getenv("RENDER_CACHE_DIR"),
		RenderTimeout:   getEnvDurationOrDefault("RENDER_TIMEOUT_SECONDS", 20),
		LogFile:         getEnvOrDefault("LOG_FILE", "news_bot.log"),
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")
	cfg.DebugChatID = os.Getenv("DEBUG_CHAT_ID")

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	if c.NewsURL == "" {
		return fmt.Errorf("NEWS_URL must not be empty")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return time.Duration(defaultSeconds) * time.Second
}
