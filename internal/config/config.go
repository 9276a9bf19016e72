// Package config resolves tinv defaults from the environment.
package config

import (
	"os"
	"strconv"
)

// DefaultLimit is the number of cycles a complete reference run injects.
const DefaultLimit = 200

// Config holds settings that command-line flags may override.
type Config struct {
	LogPath      string // sequence log to check
	Limit        int    // expected entries and exits
	TopologyPath string // CUE topology file; empty means the reference model
	Database     string // run history database; empty disables recording
	Engine       string // extraction engine name
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		LogPath:      getenv("TINV_LOG", "logs/sequence.txt"),
		Limit:        getenvInt("TINV_LIMIT", DefaultLimit),
		TopologyPath: os.Getenv("TINV_TOPOLOGY"),
		Database:     os.Getenv("TINV_DB"),
		Engine:       getenv("TINV_ENGINE", "fsm"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getenvInt parses a positive integer; anything else yields fallback.
func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
