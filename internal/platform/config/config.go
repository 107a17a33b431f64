package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Cache backend names accepted in CACHE_BACKEND.
const (
	CacheBackendMemory    = "memory"
	CacheBackendSQLite    = "sqlite"
	CacheBackendFirestore = "firestore"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port                string
	GinMode             string
	WorkerBaseURL       string
	CacheBackend        string
	CacheTTLMinutes     int
	CacheDBPath         string
	FirebaseProjectID   string
	FirebaseCredsBase64 string
	FirebaseCredsFile   string
	AllowedOrigins      string
}

// Load reads environment variables into a Config with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		GinMode:             getEnv("GIN_MODE", "release"),
		WorkerBaseURL:       strings.TrimSpace(os.Getenv("WORKER_BASE_URL")),
		CacheBackend:        getEnv("CACHE_BACKEND", CacheBackendMemory),
		CacheDBPath:         getEnv("CACHE_DB_PATH", "./cache.db"),
		FirebaseProjectID:   strings.TrimSpace(os.Getenv("FIREBASE_PROJECT_ID")),
		FirebaseCredsBase64: strings.TrimSpace(os.Getenv("FIREBASE_CREDS_BASE64")),
		FirebaseCredsFile:   strings.TrimSpace(os.Getenv("FIREBASE_CREDS_FILE")),
		AllowedOrigins:      strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")),
	}

	ttl, err := parseIntEnv("CACHE_TTL_MINUTES", 60)
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL_MINUTES: %w", err)
	}
	cfg.CacheTTLMinutes = ttl

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures required fields are present and consistent.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.CacheTTLMinutes <= 0 {
		return errors.New("CACHE_TTL_MINUTES must be positive")
	}
	switch c.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendSQLite:
		if c.CacheDBPath == "" {
			return errors.New("CACHE_DB_PATH is required for the sqlite cache backend")
		}
	case CacheBackendFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required for the firestore cache backend")
		}
		if c.FirebaseCredsBase64 == "" && c.FirebaseCredsFile == "" {
			return errors.New("provide FIREBASE_CREDS_BASE64 or FIREBASE_CREDS_FILE for Firestore auth")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q (want memory, sqlite or firestore)", c.CacheBackend)
	}
	return nil
}

// FirebaseCredentialsJSON returns the service account JSON bytes and the source used.
func (c Config) FirebaseCredentialsJSON() ([]byte, string, error) {
	if c.FirebaseCredsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.FirebaseCredsBase64)
		if err != nil {
			return nil, "base64", fmt.Errorf("decode FIREBASE_CREDS_BASE64: %w", err)
		}
		return decoded, "base64", nil
	}
	if c.FirebaseCredsFile != "" {
		data, err := os.ReadFile(c.FirebaseCredsFile)
		if err != nil {
			return nil, "file", fmt.Errorf("read FIREBASE_CREDS_FILE: %w", err)
		}
		return data, "file", nil
	}
	return nil, "", errors.New("no firebase credentials found")
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func parseIntEnv(key string, defaultVal int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}
