package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the application configuration
type Config struct {
	// Database connection string (DSN)
	DatabaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// InstanceName qualifies role identifiers in the policy store so one
	// store can serve several installations
	InstanceName string

	// Superusers are user names that bypass enforcement checks. At least one
	// is required: without it a deployment can lock itself out before any
	// privileges exist.
	Superusers []string

	// Maximum database connection pool size
	MaxDBConnections int

	// Enable debug logging
	Debug bool
}

// Load reads configuration from environment variables with fallback defaults.
// DATABASE_URL and SUPERUSERS are required.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		ServerAddr:       getEnv("SERVER_ADDR", "localhost:8080"),
		InstanceName:     getEnv("INSTANCE_NAME", "cdap"),
		Superusers:       splitList(getEnv("SUPERUSERS", "")),
		MaxDBConnections: getEnvInt("MAX_DB_CONNECTIONS", 25),
		Debug:            getEnvBool("DEBUG", false),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if len(cfg.Superusers) == 0 {
		return nil, fmt.Errorf("SUPERUSERS is required: comma-separated list of users that bypass enforcement")
	}
	if cfg.InstanceName == "" {
		return nil, fmt.Errorf("INSTANCE_NAME must not be empty")
	}

	return cfg, nil
}

// splitList parses a comma-separated list, trimming whitespace and dropping
// empty elements.
func splitList(value string) []string {
	if value == "" {
		return nil
	}

	var result []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
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
