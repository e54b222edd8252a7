// Package config loads process settings from the environment.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultPort    = 4518
	DefaultMapFile = "map-new.txt"
	DefaultLogFile = "bananarealm.log"
)

// Config holds the server's environment-derived settings. The listen port
// comes from the command line, not from here.
type Config struct {
	// MapFile is the flat text file the boot world is loaded from.
	MapFile string
	// LogFile is where the rolling log is written.
	LogFile string
	// Seed overrides the engine's random seed when non-zero, for
	// reproducible worlds.
	Seed int64
}

// Load reads .env (if present) and the environment. Missing variables fall
// back to defaults.
func Load() Config {
	// Not fatal: env vars may be set directly.
	_ = godotenv.Load()

	cfg := Config{
		MapFile: DefaultMapFile,
		LogFile: DefaultLogFile,
	}
	if v := os.Getenv("BANANAREALM_MAP"); v != "" {
		cfg.MapFile = v
	}
	if v := os.Getenv("BANANAREALM_LOG"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("BANANAREALM_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}
	return cfg
}
