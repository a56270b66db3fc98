package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	defaultConfigPath = "./config.yaml"
	defaultEnvFile    = ".env"
)

// Load builds the configuration from, in increasing priority: env-default
// tags, the YAML file at CONFIG_PATH (./config.yaml when unset), and the
// process environment.
//
// A dotenv file (ENV_FILE, default .env) is merged into the environment
// first without overriding variables that are already set. A missing
// default file is fine; a missing file that was named explicitly is an error.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	path, explicit := lookupDefault("CONFIG_PATH", defaultConfigPath)

	var cfg Config
	if err := read(&cfg, path, explicit); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Usage writes every supported environment variable with its default and
// description. Commands print it for -h.
func Usage(w io.Writer) {
	var cfg Config
	cleanenv.FUsage(w, &cfg, nil)()
}

func loadEnvFile() error {
	path, explicit := lookupDefault("ENV_FILE", defaultEnvFile)
	err := godotenv.Load(path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		return nil
	default:
		return fmt.Errorf("config: load %s: %w", path, err)
	}
}

func read(cfg *Config, path string, explicit bool) error {
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit:
		return fmt.Errorf("config: file %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("config: read env: %w", err)
		}
	}
	return nil
}

func lookupDefault(key, fallback string) (string, bool) {
	if v := os.Getenv(key); v != "" {
		return v, true
	}
	return fallback, false
}
