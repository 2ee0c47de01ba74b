package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// loadDotenv exports the variables of the given .env files into the process
// environment. Missing files are skipped and variables that are already set
// win.
func loadDotenv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("dotenv %s: %w", f, err)
		}
	}
	return nil
}

// parseEnv overlays ROSTERHUB_* variables. Unset variables leave the current
// value in place.
func parseEnv(config *Config) error {
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return fmt.Errorf("env: %w", err)
	}
	return nil
}
