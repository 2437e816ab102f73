package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Fund     FundConfig
	API      APIConfig
	Storage  StorageConfig
	Upstream UpstreamConfig
	CORS     CORSConfig
	Security SecurityConfig
	Sync     SyncConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// FundConfig identifies the on-chain address whose history defines the fund
type FundConfig struct {
	Address string
}

// APIConfig holds the base URLs of the three upstream data sources
type APIConfig struct {
	TxBaseURL              string
	HistoricalPriceBaseURL string
	LivePriceBaseURL       string
}

// StorageConfig holds the paths of the two durable sqlite stores
type StorageConfig struct {
	TxPath    string
	PricePath string
}

// UpstreamConfig controls timeout and retry behaviour for upstream API calls
type UpstreamConfig struct {
	Timeout    time.Duration
	MaxRetries uint64
	RetryBase  time.Duration
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig holds the credentials guarding mutating endpoints.
// Both values may be empty when mutating endpoints are not used.
type SecurityConfig struct {
	InternalAPIKey string
	FernetKey      string
}

// SyncConfig holds the optional background sync schedule.
// An empty Schedule disables the scheduler entirely.
type SyncConfig struct {
	Schedule string
}

// Load reads configuration from environment variables and .env file.
// The fund address, the three API base URLs, and the two storage paths
// are required; any missing value is a fatal configuration error.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	required := map[string]string{
		"FUND_ADDRESS":             "",
		"TX_API_URL":               "",
		"HISTORICAL_PRICE_API_URL": "",
		"LIVE_PRICE_API_URL":       "",
		"TX_DB_PATH":               "",
		"PRICE_DB_PATH":            "",
	}
	var missing []string
	for _, key := range []string{
		"FUND_ADDRESS",
		"TX_API_URL",
		"HISTORICAL_PRICE_API_URL",
		"LIVE_PRICE_API_URL",
		"TX_DB_PATH",
		"PRICE_DB_PATH",
	} {
		value := os.Getenv(key)
		if value == "" {
			missing = append(missing, key)
			continue
		}
		required[key] = value
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	timeout, err := getDurationEnv("UPSTREAM_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	retryBase, err := getDurationEnv("UPSTREAM_RETRY_BASE", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	maxRetries, err := getUintEnv("UPSTREAM_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Fund: FundConfig{
			Address: required["FUND_ADDRESS"],
		},
		API: APIConfig{
			TxBaseURL:              strings.TrimRight(required["TX_API_URL"], "/"),
			HistoricalPriceBaseURL: required["HISTORICAL_PRICE_API_URL"],
			LivePriceBaseURL:       required["LIVE_PRICE_API_URL"],
		},
		Storage: StorageConfig{
			TxPath:    required["TX_DB_PATH"],
			PricePath: required["PRICE_DB_PATH"],
		},
		Upstream: UpstreamConfig{
			Timeout:    timeout,
			MaxRetries: maxRetries,
			RetryBase:  retryBase,
		},
		CORS: CORSConfig{
			AllowedOrigins: strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost"), ","),
		},
		Security: SecurityConfig{
			InternalAPIKey: os.Getenv("INTERNAL_API_KEY"),
			FernetKey:      os.Getenv("FERNET_KEY"),
		},
		Sync: SyncConfig{
			Schedule: os.Getenv("SYNC_SCHEDULE"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getDurationEnv parses an environment variable as a duration or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return parsed, nil
}

// getUintEnv parses an environment variable as an unsigned integer or returns a default value
func getUintEnv(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return parsed, nil
}
