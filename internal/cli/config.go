package cli

import (
	"os"
	"time"
)

// Config holds CLI configuration for the client commands
type Config struct {
	ServerURL string
	Token     string // account password for admin-only HTTP endpoints
	Output    string
	Timeout   time.Duration
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("ARENA_SERVER", "http://localhost:8080"),
		Token:     os.Getenv("ARENA_TOKEN"),
		Output:    "text",
		Timeout:   5 * time.Second,
		Verbose:   false,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
