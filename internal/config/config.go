package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the authentication service configuration
type Config struct {
	// Database connection string (DSN)
	DatabaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// Maximum database connection pool size
	MaxDBConnections int

	// Authenticator selects the pluggable authenticator:
	// ""/"no"/"off"/"disable"/"false" disable external authentication,
	// "yes"/"on"/"true"/"default" enable the built-in one, any other value
	// names a registered authenticator.
	Authenticator string

	// AuthConfigFile is the explicit authentication configuration location.
	// When empty, discovery falls back to quarry-auth.yaml in the working
	// directory, then the built-in default configuration.
	AuthConfigFile string

	// AllowInternalUsers enables local password authentication for
	// connections that carry no realm.
	AllowInternalUsers bool

	// CORSOrigins lists allowed origins for the admin surface
	CORSOrigins []string

	// Enable debug logging
	Debug bool
}

// Load reads configuration from environment variables with fallback defaults
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", "quarry-auth.db"),
		ServerAddr:         getEnv("SERVER_ADDR", "localhost:8080"),
		MaxDBConnections:   getEnvInt("MAX_DB_CONNECTIONS", 25),
		Authenticator:      getEnv("AUTHENTICATOR", "default"),
		AuthConfigFile:     getEnv("AUTH_CONFIG_FILE", ""),
		AllowInternalUsers: getEnvBool("ALLOW_INTERNAL_USERS", true),
		CORSOrigins:        getEnvList("CORS_ORIGINS", nil),
		Debug:              getEnvBool("DEBUG", false),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ServerAddr == "" {
		return nil, fmt.Errorf("SERVER_ADDR is required")
	}
	if cfg.AuthConfigFile != "" {
		if _, err := os.Stat(cfg.AuthConfigFile); err != nil {
			return nil, fmt.Errorf("AUTH_CONFIG_FILE: %w", err)
		}
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated environment variable or returns a
// default value
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
