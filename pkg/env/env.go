package env

import (
	"os"
	"path/filepath"
)

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// ConfigDir returns the per-user directory shopdash keeps its state in.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "shopdash")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".shopdash"
	}
	return filepath.Join(home, ".config", "shopdash")
}
