package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPPort        string
	ShutdownTimeout time.Duration
	Database        DatabaseConfig
	Session         SessionConfig
	Admin           AdminConfig
	Catalog         CatalogConfig
}

type DatabaseConfig struct {
	// Path is the sqlite file used by default. When DSN is set the server
	// uses postgres instead.
	Path string
	DSN  string
}

type SessionConfig struct {
	Lifetime     time.Duration
	CookieSecure bool
}

type AdminConfig struct {
	Username string
	Password string
}

type CatalogConfig struct {
	SubscriptionURL string
	PaidURL         string
	// SubscriptionKey is the server-side fallback used when a request does
	// not carry its own subscription key.
	SubscriptionKey string
	Timeout         time.Duration
	CacheTTL        time.Duration
}

func Load() Config {
	return Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ShutdownTimeout: getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "data/superkagi.db"),
			DSN:  getEnv("DATABASE_DSN", ""),
		},
		Session: SessionConfig{
			Lifetime:     getDuration("SESSION_LIFETIME", 30*24*time.Hour),
			CookieSecure: getBool("SESSION_COOKIE_SECURE", false),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Catalog: CatalogConfig{
			SubscriptionURL: getEnv("CATALOG_SUBSCRIPTION_URL", "https://nano-gpt.com/api/subscription/v1/models"),
			PaidURL:         getEnv("CATALOG_PAID_URL", "https://nano-gpt.com/api/v1/models"),
			SubscriptionKey: getEnv("CATALOG_SUBSCRIPTION_KEY", ""),
			Timeout:         getDuration("CATALOG_TIMEOUT", 15*time.Second),
			CacheTTL:        getDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
