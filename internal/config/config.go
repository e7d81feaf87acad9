package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	ServiceName    string
	DatabaseURL    string
	HTTPListenAddr string
	LogLevel       string
	// MailRelayURL is the base URL of the outbound mail relay API.
	MailRelayURL   string
	MailRelayToken string
	MailFrom       string
	// ListCacheTTLSeconds bounds how long list responses may be served from
	// cache. Zero disables the cache.
	ListCacheTTLSeconds int
}

func Load() (*Config, error) {
	cfg := &Config{
		ServiceName:         getEnv("SERVICE_NAME", "mailings-api"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		HTTPListenAddr:      getEnv("HTTP_LISTEN_ADDR", ":8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		MailRelayURL:        getEnv("MAIL_RELAY_URL", ""),
		MailRelayToken:      getEnv("MAIL_RELAY_TOKEN", ""),
		MailFrom:            getEnv("MAIL_FROM", ""),
		ListCacheTTLSeconds: getEnvInt("LIST_CACHE_TTL_SECONDS", 30),
	}

	return cfg, nil
}

// Validate checks that the fields required by the given service are set.
func (c *Config) Validate(service string) error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%s: DATABASE_URL is required", service)
	}
	if service == "mailings-api" {
		if c.MailRelayURL == "" {
			return fmt.Errorf("%s: MAIL_RELAY_URL is required", service)
		}
		if c.MailFrom == "" {
			return fmt.Errorf("%s: MAIL_FROM is required", service)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
