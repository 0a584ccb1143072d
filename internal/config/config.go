// Package config loads the application configuration from environment
// variables, with a .env file loaded by the commands for local development.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Hosted backend
	BackendURL string
	AnonKey    string
	// ServiceKey is the service-role key; only the reporter needs it and
	// only the reporter validates it.
	ServiceKey string

	// Notification collaborator; empty disables notifications.
	NotifyEndpoint string

	// HTTP
	HTTPTimeout time.Duration

	// Session persistence
	SessionFile string

	// Balance cache
	CacheSize int
	CacheTTL  time.Duration

	// Reporter
	MetricsTextfile string
}

func Load() *Config {
	return &Config{
		BackendURL:     getEnv("BACKEND_URL", ""),
		AnonKey:        getEnv("BACKEND_ANON_KEY", ""),
		ServiceKey:     getEnv("BACKEND_SERVICE_KEY", ""),
		NotifyEndpoint: getEnv("NOTIFY_ENDPOINT", ""),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 15*time.Second),

		SessionFile: getEnv("SESSION_FILE", defaultSessionFile()),

		CacheSize: getEnvInt("BALANCE_CACHE_SIZE", 64),
		CacheTTL:  getEnvDuration("BALANCE_CACHE_TTL", 5*time.Minute),

		MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),
	}
}

// Validate validates the configuration and returns an error listing every
// problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.BackendURL == "" {
		problems = append(problems, "BACKEND_URL is required")
	} else if parsed, err := url.Parse(c.BackendURL); err != nil {
		problems = append(problems, fmt.Sprintf("invalid BACKEND_URL '%s': %v", c.BackendURL, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		problems = append(problems, fmt.Sprintf("invalid BACKEND_URL scheme '%s': must be http or https", parsed.Scheme))
	}

	if c.AnonKey == "" {
		problems = append(problems, "BACKEND_ANON_KEY is required")
	}
	if c.HTTPTimeout <= 0 {
		problems = append(problems, "HTTP_TIMEOUT must be positive")
	}
	if c.SessionFile == "" {
		problems = append(problems, "SESSION_FILE cannot be empty")
	}
	if c.CacheSize < 1 {
		problems = append(problems, "BALANCE_CACHE_SIZE must be at least 1")
	}
	if c.CacheTTL <= 0 {
		problems = append(problems, "BALANCE_CACHE_TTL must be positive")
	}

	if c.NotifyEndpoint != "" {
		if _, err := url.Parse(c.NotifyEndpoint); err != nil {
			problems = append(problems, fmt.Sprintf("invalid NOTIFY_ENDPOINT '%s': %v", c.NotifyEndpoint, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ValidateReporter runs Validate plus the reporter's extra requirements.
func (c *Config) ValidateReporter() error {
	if err := c.Validate(); err != nil {
		return err
	}
	var problems []string
	if c.ServiceKey == "" {
		problems = append(problems, "BACKEND_SERVICE_KEY is required for the reporter")
	}
	if c.MetricsTextfile != "" {
		dir := filepath.Dir(c.MetricsTextfile)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			problems = append(problems, fmt.Sprintf("METRICS_TEXTFILE directory '%s' does not exist", dir))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".spiltzee-session.json")
	}
	return filepath.Join(dir, "spiltzee", "session.json")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
