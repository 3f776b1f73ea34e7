package cli

import (
	"os"
)

// Config holds CLI configuration
type Config struct {
	StorageType string
	RedisURL    string
	Output      string
	UserID      string
	Admin       bool
	Verbose     bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		StorageType: getEnvOrDefault("QUIZBACK_STORAGE", "redis"),
		RedisURL:    getEnvOrDefault("QUIZBACK_REDIS_URL", "redis://localhost:6379/0"),
		Output:      "text",
		UserID:      os.Getenv("QUIZBACK_USER"),
		Admin:       false,
		Verbose:     false,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
