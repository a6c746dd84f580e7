package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnvFiles loads environment variables from .env files in the current
// directory and in the directory of the executable. Variables already set
// in the environment win. It returns the files that were loaded.
func LoadEnvFiles() []string {
	var loaded []string

	if err := godotenv.Load(); err == nil {
		loaded = append(loaded, ".env")
	}

	execPath, err := os.Executable()
	if err != nil {
		return loaded
	}

	envPath := filepath.Join(filepath.Dir(execPath), ".env")
	if err := godotenv.Load(envPath); err == nil {
		loaded = append(loaded, envPath)
	}

	return loaded
}
