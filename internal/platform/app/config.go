package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"penalty-console/internal/application"
)

const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
	BackendRedis    = "redis"
)

type Config struct {
	Port           string
	APIBaseURL     string
	SessionBackend string
	TableName      string
	Region         string
	RedisURL       string
	SessionTTL     time.Duration
	APITimeout     time.Duration
	LogLevel       string
	SecureCookies  bool
	Tracing        bool
}

// LoadConfig reads the console configuration from the environment.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:           envOr("PORT", "8080"),
		APIBaseURL:     os.Getenv("API_BASE_URL"),
		SessionBackend: envOr("SESSION_BACKEND", BackendMemory),
		TableName:      os.Getenv("TABLE_NAME"),
		Region:         os.Getenv("AWS_REGION"),
		RedisURL:       os.Getenv("REDIS_URL"),
		LogLevel:       envOr("LOG_LEVEL", "info"),
	}
	var err error
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", application.DefaultSessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.APITimeout, err = durationEnv("API_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SecureCookies, err = boolEnv("SECURE_COOKIES", true); err != nil {
		return Config{}, err
	}
	if cfg.Tracing, err = boolEnv("XRAY_ENABLED", false); err != nil {
		return Config{}, err
	}

	if cfg.APIBaseURL == "" {
		return Config{}, errors.New("API_BASE_URL is required")
	}
	switch cfg.SessionBackend {
	case BackendMemory:
	case BackendDynamoDB:
		if cfg.TableName == "" || cfg.Region == "" {
			return Config{}, errors.New("TABLE_NAME and AWS_REGION are required for the dynamodb session backend")
		}
	case BackendRedis:
		if cfg.RedisURL == "" {
			return Config{}, errors.New("REDIS_URL is required for the redis session backend")
		}
	default:
		return Config{}, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}
