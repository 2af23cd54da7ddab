package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envFiles are loaded in order; variables already present win, so the
// process environment overrides .env.local, which overrides .env.
var envFiles = []string{".env.local", ".env"}

// loadEnvFiles loads the supported .env files from the current directory.
// Missing files are skipped; a malformed file is an error.
func loadEnvFiles() error {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// applyEnv overlays environment variables onto cfg. Unset variables leave the
// file/default value untouched.
func applyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
