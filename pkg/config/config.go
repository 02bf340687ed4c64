package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"

	AuthFirebase = "firebase"
	AuthDev      = "dev"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	Environment     string
	LogLevel        string

	StoreDriver   string
	AuthMode      string
	StorageBucket string

	ServiceAccountJSON string
	ServiceAccountPath string

	TxMaxAttempts   int
	ReportThreshold int
	MaxUploadBytes  int64
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		FirebaseProject:    getEnv("FIREBASE_PROJECT_ID", ""),
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StoreFirestore)),
		AuthMode:           strings.ToLower(getEnv("AUTH_MODE", AuthFirebase)),
		StorageBucket:      getEnv("STORAGE_BUCKET", ""),
		ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		TxMaxAttempts:      getEnvAsInt("TX_MAX_ATTEMPTS", 5),
		ReportThreshold:    getEnvAsInt("REPORT_THRESHOLD", 2),
		MaxUploadBytes:     getEnvAsInt64("MAX_UPLOAD_BYTES", 5*1024*1024),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreFirestore:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when STORE_DRIVER=%s", StoreFirestore)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.AuthMode {
	case AuthFirebase:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when AUTH_MODE=%s", AuthFirebase)
		}
	case AuthDev:
		if c.Environment == "production" {
			return fmt.Errorf("AUTH_MODE=%s is not allowed in production", AuthDev)
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", c.AuthMode)
	}

	if c.TxMaxAttempts < 1 {
		c.TxMaxAttempts = 1
	}
	if c.ReportThreshold < 1 {
		c.ReportThreshold = 2
	}
	return nil
}

// UsesFirebase reports whether a Firebase app has to be initialised at startup.
func (c *Config) UsesFirebase() bool {
	return c.StoreDriver == StoreFirestore || c.AuthMode == AuthFirebase || c.StorageBucket != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
