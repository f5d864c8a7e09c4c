package main

import (
	"errors"
	"fmt"
	"os"

	"advanced-calculator/internal/config"

	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// envFileVar names an alternative dotenv file. A missing .env is fine; a
// missing file named here is an error.
var envFileVar = config.Prefix + "_ENV_FILE"

// loadDotEnv loads environment variables from the dotenv file when present.
// Existing process environment variables are not overridden.
func loadDotEnv() error {
	path, explicit := os.LookupEnv(envFileVar)
	if !explicit || path == "" {
		path, explicit = defaultEnvFile, false
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) && !explicit {
		return nil
	}

	return fmt.Errorf("load %s: %w", path, err)
}
