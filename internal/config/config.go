// internal/config/config.go
//
// Process configuration for the mastermind binary.
// Sources, lowest precedence first:
//   - built-in defaults (Defaults)
//   - an optional YAML file named by --config or MASTERMIND_CONFIG
//   - environment variables (a .env file is loaded into the environment by main)
//   - command-line flags, applied by the caller after Load
//
// Notes:
//   - Env tags carry no defaults so an unset variable never clobbers a value
//     that came from the YAML file.

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/mastermind/internal/game"
)

// Config holds every setting the commands read.
type Config struct {
	LogLevel     string        `yaml:"log_level" env:"LOG_LEVEL"`
	ConfigFile   string        `yaml:"-" env:"MASTERMIND_CONFIG"`
	DBPath       string        `yaml:"db" env:"MASTERMIND_DB"`
	Player       string        `yaml:"player" env:"MASTERMIND_PLAYER"`
	Port         string        `yaml:"port" env:"PORT"`
	JWTSecret    string        `yaml:"-" env:"JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
	DailySalt    string        `yaml:"daily_salt" env:"DAILY_SALT"`
	ClientOrigin string        `yaml:"client_origin" env:"CLIENT_ORIGIN"`
	Retention    time.Duration `yaml:"retention" env:"GAME_RETENTION"`
	Rules        game.Rules    `yaml:"rules" envPrefix:"MASTERMIND_"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LogLevel:     "warn",
		Port:         "5175",
		TokenTTL:     24 * time.Hour,
		DailySalt:    "local_dev_salt",
		ClientOrigin: "http://localhost:5173",
		Retention:    24 * time.Hour,
		Rules:        game.DefaultRules(),
	}
}

// Load builds a Config from defaults, the YAML file and the environment.
// file overrides MASTERMIND_CONFIG when non-empty.
func Load(file string) (Config, error) {
	cfg := Defaults()
	if file == "" {
		file = os.Getenv("MASTERMIND_CONFIG")
	}
	if file != "" {
		if err := loadYAML(file, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.ConfigFile = file
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the values Load cannot check by type alone.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	return nil
}

// Level returns the zerolog level for LogLevel, warn if it does not parse.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.WarnLevel
	}
	return lvl
}

// RequireSecret reports an error when no JWT secret is configured.
func (c Config) RequireSecret() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to serve the API")
	}
	return nil
}
