package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *envConfig

type envConfig struct {
	// api config
	API_BASE_URL string
	API_TIMEOUT  time.Duration
	// preference store config
	PREFS_DIR       string
	PREFS_IN_MEMORY bool
	// view config
	PAGE_SIZE       int
	SEARCH_DEBOUNCE time.Duration
	// seeder config
	SEED_WORKERS int
	SEED_RETRIES int
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
}

// LoadEnvConfig reads .env when present and then the process environment.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &envConfig{
		API_BASE_URL:    getEnvString("API_BASE_URL", "http://localhost:3000"),
		API_TIMEOUT:     getEnvDuration("API_TIMEOUT", 10*time.Second),
		PREFS_DIR:       getEnvString("PREFS_DIR", ".employee-console"),
		PREFS_IN_MEMORY: getEnvBool("PREFS_IN_MEMORY", false),
		PAGE_SIZE:       getEnvInt("PAGE_SIZE", 5),
		SEARCH_DEBOUNCE: getEnvDuration("SEARCH_DEBOUNCE", 500*time.Millisecond),
		SEED_WORKERS:    getEnvInt("SEED_WORKERS", 4),
		SEED_RETRIES:    getEnvInt("SEED_RETRIES", 2),
		LOG_FILE_PATH:   getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:       getEnvString("LOG_LEVEL", "info"),
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
