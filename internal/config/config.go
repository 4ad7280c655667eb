// Package config assembles the service configuration from defaults, an optional
// YAML file, an optional .env file and the process environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/evidenceledger/noticegen/internal/errl"
)

// Environment variables read by Load
const (
	EnvDevelopment   = "NOTICE_DEVELOPMENT"
	EnvPort          = "PORT"
	EnvBaseURL       = "BASE_URL"
	EnvAdminPassword = "NOTICE_ADMIN_PASSWORD"
	EnvDBPath        = "NOTICE_DB_PATH"
	EnvStripeKey     = "STRIPE_SECRET_KEY"
)

// Config is the configuration of the notice server
type Config struct {
	Development     bool   `yaml:"development"`
	Port            string `yaml:"port"`
	BaseURL         string `yaml:"base_url"`
	AdminPassword   string `yaml:"admin_password"`
	DBPath          string `yaml:"db_path"`
	StripeSecretKey string `yaml:"stripe_secret_key"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Port:    "8020",
		BaseURL: "http://localhost:8020",
		DBPath:  "./noticegen.db",
	}
}

// PaymentsConfigured reports whether a payment credential is available
func (c Config) PaymentsConfigured() bool {
	return c.StripeSecretKey != ""
}

// Load builds the configuration. Later sources override earlier ones:
// defaults, the YAML file at configFile, the .env file at envFile, and the
// process environment as returned by getenv. Missing files are ignored.
func Load(configFile string, envFile string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFile(configFile, &cfg); err != nil {
			return cfg, err
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, errl.Errorf("reading %s: %w", envFile, err)
		}
		if m != nil {
			dotenv = m
		}
	}

	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}

	applyEnv(&cfg, lookup)

	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errl.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errl.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) string) {
	if v := lookup(EnvDevelopment); v != "" {
		cfg.Development = strings.ToLower(v) == "true"
	}
	if v := lookup(EnvPort); v != "" {
		cfg.Port = v
	}
	if v := lookup(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := lookup(EnvAdminPassword); v != "" {
		cfg.AdminPassword = v
	}
	if v := lookup(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := lookup(EnvStripeKey); v != "" {
		cfg.StripeSecretKey = v
	}
}
