package config

import (
	"os"
	"strings"
	"time"
)

const (
	StoreDriverAppwrite = "appwrite"
	StoreDriverPostgres = "postgres"
)

type AppConfig struct {
	// Server
	HTTPAddr string
	Version  string

	// Customer store
	StoreDriver  string
	StoreTimeout time.Duration
	Appwrite     AppwriteConfig
	DatabaseURL  string

	// SMS gateway
	SMS SMSConfig

	// Registration
	AccountPrefix string

	// Redis (optional)
	RedisAddr       string
	RedisPass       string
	TurnLockEnabled bool
	TurnLockTTL     time.Duration
	DedupeTTL       time.Duration
}

type AppwriteConfig struct {
	Endpoint              string
	ProjectID             string
	DatabaseID            string
	APIKey                string
	CustomersCollectionID string
}

type SMSConfig struct {
	APIKey      string
	Username    string
	SenderID    string
	BaseURL     string
	CountryCode string
	Timeout     time.Duration
}

// TestMode reports whether outbound SMS should only be logged.
func (c SMSConfig) TestMode() bool {
	return c.APIKey == ""
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr: getEnv("HTTP_ADDR", ":8000"),
		Version:  "2.0",

		StoreDriver:  strings.ToLower(getEnv("STORE_DRIVER", StoreDriverAppwrite)),
		StoreTimeout: getEnvDuration("STORE_TIMEOUT", 10*time.Second),
		Appwrite: AppwriteConfig{
			Endpoint:              strings.TrimRight(getEnv("APPWRITE_ENDPOINT", "http://appwrite-traefik/v1"), "/"),
			ProjectID:             getEnv("APPWRITE_PROJECT_ID", ""),
			DatabaseID:            getEnv("APPWRITE_DATABASE_ID", ""),
			APIKey:                getEnv("APPWRITE_API_KEY", ""),
			CustomersCollectionID: getEnv("CUSTOMERS_COLLECTION_ID", "customers"),
		},
		DatabaseURL: getEnv("DATABASE_URL", ""),

		SMS: SMSConfig{
			APIKey:      getEnv("AFRICAS_TALKING_API_KEY", ""),
			Username:    getEnv("AFRICAS_TALKING_USERNAME", "sandbox"),
			SenderID:    getEnv("AFRICAS_TALKING_SENDER_ID", ""),
			BaseURL:     getEnv("AFRICAS_TALKING_URL", ""),
			CountryCode: strings.TrimPrefix(getEnv("SMS_COUNTRY_CODE", "254"), "+"),
			Timeout:     getEnvDuration("SMS_TIMEOUT", 15*time.Second),
		},

		AccountPrefix: getEnv("ACCOUNT_PREFIX", "TSF"),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPass:       getEnv("REDIS_PASS", ""),
		TurnLockEnabled: getEnvBool("TURN_LOCK_ENABLED", false),
		TurnLockTTL:     getEnvDuration("TURN_LOCK_TTL", 30*time.Second),
		DedupeTTL:       getEnvDuration("DEDUPE_TTL", 24*time.Hour),
	}
}

// MissingStoreConfig lists the environment variables the selected store
// needs but does not have.
func (c AppConfig) MissingStoreConfig() []string {
	if c.StoreDriver == StoreDriverPostgres {
		if c.DatabaseURL == "" {
			return []string{"DATABASE_URL"}
		}
		return nil
	}

	var missing []string
	if c.Appwrite.ProjectID == "" {
		missing = append(missing, "APPWRITE_PROJECT_ID")
	}
	if c.Appwrite.DatabaseID == "" {
		missing = append(missing, "APPWRITE_DATABASE_ID")
	}
	if c.Appwrite.APIKey == "" {
		missing = append(missing, "APPWRITE_API_KEY")
	}
	return missing
}

// RequiredStoreConfig lists every variable the selected store reads credentials from.
func (c AppConfig) RequiredStoreConfig() []string {
	if c.StoreDriver == StoreDriverPostgres {
		return []string{"DATABASE_URL"}
	}
	return []string{"APPWRITE_PROJECT_ID", "APPWRITE_DATABASE_ID", "APPWRITE_API_KEY"}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
