package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-feedbackform/pkg/theme"
	"github.com/goliatone/go-feedbackform/pkg/validation"
)

// Config carries every tunable of the feedback form. Values are layered:
// defaults, then the YAML file, then environment variables.
type Config struct {
	SubmitDelay time.Duration     `yaml:"submit_delay" env:"FEEDBACK_SUBMIT_DELAY" validate:"gte=0"`
	Theme       string            `yaml:"theme" env:"FEEDBACK_THEME"`
	Variant     string            `yaml:"variant" env:"FEEDBACK_THEME_VARIANT"`
	LogLevel    string            `yaml:"log_level" env:"FEEDBACK_LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format      string            `yaml:"format" env:"FEEDBACK_OUTPUT_FORMAT" validate:"oneof=json form pretty"`
	Schema      string            `yaml:"schema" env:"FEEDBACK_SCHEMA"`
	Templates   string            `yaml:"templates" env:"FEEDBACK_TEMPLATES"`
	Counter     theme.Thresholds  `yaml:"counter"`
	Limits      validation.Limits `yaml:"limits"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		SubmitDelay: 2 * time.Second,
		Theme:       theme.DefaultName,
		Variant:     theme.DefaultVariant,
		LogLevel:    "info",
		Format:      "json",
		Counter:     theme.DefaultThresholds(),
		Limits:      validation.DefaultLimits(),
	}
}

// Load builds the configuration from path (optional) and the environment.
// A .env file in the working directory is read when present.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints, including nested thresholds and limits.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Logger builds a text slog logger at the configured level.
func (c Config) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.Level()}))
}

// Level maps LogLevel onto slog levels.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
