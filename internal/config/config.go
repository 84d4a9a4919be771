package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the environment driven settings of the service binaries.
type Config struct {
	Port           string
	DatabaseDriver string
	DatabaseURL    string
	RedisAddr      string
	YoutubeAPIKey  string
	UptimeURL      string
	CheckSchedule  string
	FeedHost       string
	LogLevel       string
	LogFile        string
	StorageBucket  string
	OnlySSL        bool
	TrustProxy     bool
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		DatabaseDriver: getenv("DATABASE_DRIVER", "sqlite"),
		DatabaseURL:    getenv("DATABASE_URL", "ytsub.db"),
		RedisAddr:      getenv("REDIS_ADDR", "127.0.0.1:6379"),
		YoutubeAPIKey:  os.Getenv("YOUTUBE_API_KEY"),
		UptimeURL:      os.Getenv("UPTIME_URL"),
		CheckSchedule:  getenv("CHECK_SCHEDULE", "@every 10m"),
		FeedHost:       getenv("FEED_HOST", "https://www.youtube.com"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFile:        os.Getenv("LOG_FILE"),
		StorageBucket:  os.Getenv("STORAGE_BUCKET"),
	}

	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	var err error
	if cfg.OnlySSL, err = parseBool("ONLY_SSL", false); err != nil {
		return nil, err
	}
	if cfg.TrustProxy, err = parseBool("TRUST_PROXY", false); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = parseFloat("RATE_LIMIT_RPS", 1); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = parseInt("RATE_LIMIT_BURST", 5); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func parseInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}
