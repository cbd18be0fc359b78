package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	Port       string
	DBPath     string
	LogLevel   string
	LogFormat  string
	GinMode    string
	RateLimit  int           // requests per RateWindow and client IP
	RateWindow time.Duration
}

// Load reads configuration from the environment, after loading an optional
// .env file. Variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", ":5000"),
		DBPath:    getEnv("DB_PATH", "./data/gps_data.db"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		GinMode:   getEnv("GIN_MODE", "release"),
	}

	limit, err := strconv.Atoi(getEnv("RATE_LIMIT", "120"))
	if err != nil || limit < 1 {
		return nil, fmt.Errorf("RATE_LIMIT must be a positive integer")
	}
	cfg.RateLimit = limit

	window, err := time.ParseDuration(getEnv("RATE_WINDOW", "1m"))
	if err != nil || window <= 0 {
		return nil, fmt.Errorf("RATE_WINDOW must be a positive duration")
	}
	cfg.RateWindow = window

	cfg.Port = normalizePort(cfg.Port)
	return cfg, nil
}

// normalizePort accepts both "5000" and ":5000"
func normalizePort(port string) string {
	if _, err := strconv.Atoi(port); err == nil {
		return ":" + port
	}
	return port
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
