// Package config loads server settings from built-in defaults, an optional
// YAML file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/qninhdt/aethelgard/server/internal/rpg"
	"github.com/qninhdt/aethelgard/server/internal/story"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Oracle providers.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

var (
	// ErrMissingAPIKey is returned when the selected provider has no key.
	ErrMissingAPIKey = errors.New("missing API key for oracle provider")
	// ErrInvalid is returned for out-of-range settings.
	ErrInvalid = errors.New("invalid configuration")
)

// Config holds every runtime setting.
type Config struct {
	Port      int    `yaml:"port" env:"PORT"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	StoreDriver string `yaml:"store_driver" env:"STORE_DRIVER"`
	DBPath      string `yaml:"db_path" env:"DB_PATH"`

	Provider         string `yaml:"oracle_provider" env:"ORACLE_PROVIDER"`
	GeminiAPIKey     string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	OpenRouterAPIKey string `yaml:"openrouter_api_key" env:"OPENROUTER_API_KEY"`
	OpenRouterURL    string `yaml:"openrouter_url" env:"OPENROUTER_URL"`
	NarratorModel    string `yaml:"narrator_model" env:"NARRATOR_MODEL"`
	ValidatorModel   string `yaml:"validator_model" env:"VALIDATOR_MODEL"`
	ImageModel       string `yaml:"image_model" env:"IMAGE_MODEL"`

	SessionSecret  string        `yaml:"session_secret" env:"SESSION_SECRET"`
	SessionIdleTTL time.Duration `yaml:"session_idle_ttl" env:"SESSION_IDLE_TTL"`
	MaxSessions    int           `yaml:"max_sessions" env:"MAX_SESSIONS"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`

	SlowAfter             time.Duration `yaml:"slow_after" env:"SLOW_AFTER"`
	NotificationTTL       time.Duration `yaml:"notification_ttl" env:"NOTIFICATION_TTL"`
	SkillEscalationChance float64       `yaml:"skill_escalation_chance" env:"SKILL_ESCALATION_CHANCE"`
	HistoryWindow         int           `yaml:"history_window" env:"HISTORY_WINDOW"`

	Pacing map[rpg.Length]story.Rule `yaml:"pacing"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Port:                  8080,
		LogLevel:              "info",
		LogFormat:             "text",
		StoreDriver:           StoreMemory,
		DBPath:                "aethelgard.db",
		Provider:              ProviderGemini,
		SessionIdleTTL:        time.Hour,
		MaxSessions:           1000,
		RateLimitRPS:          5,
		RateLimitBurst:        10,
		SlowAfter:             10 * time.Second,
		NotificationTTL:       5 * time.Second,
		SkillEscalationChance: 0.3,
		HistoryWindow:         20,
	}
}

// Load reads path (optional, may be empty) over the defaults, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyModelDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyModelDefaults fills unset model names for the selected provider.
func (c *Config) applyModelDefaults() {
	narrator, validator, image := "gemini-2.5-flash", "gemini-2.5-flash", "gemini-2.5-flash-image"
	if c.Provider == ProviderOpenRouter {
		narrator, validator, image = "google/gemini-2.5-flash", "google/gemini-2.5-flash", "google/gemini-2.5-flash-image"
	}
	if c.NarratorModel == "" {
		c.NarratorModel = narrator
	}
	if c.ValidatorModel == "" {
		c.ValidatorModel = validator
	}
	if c.ImageModel == "" {
		c.ImageModel = image
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingAPIKey)
		}
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return fmt.Errorf("%w: OPENROUTER_API_KEY", ErrMissingAPIKey)
		}
	default:
		return fmt.Errorf("%w: unknown oracle provider %q", ErrInvalid, c.Provider)
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("%w: DB_PATH is required for sqlite", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalid, c.StoreDriver)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalid, c.Port)
	}
	if c.HistoryWindow < 2 {
		return fmt.Errorf("%w: history window must hold at least one exchange", ErrInvalid)
	}
	if c.SkillEscalationChance <= 0 || c.SkillEscalationChance >= 1 {
		return fmt.Errorf("%w: skill escalation chance must be in (0,1)", ErrInvalid)
	}
	for length := range c.Pacing {
		switch length {
		case rpg.LengthQuick, rpg.LengthMedium, rpg.LengthLong, rpg.LengthEndless:
		default:
			return fmt.Errorf("%w: pacing for unknown length %q", ErrInvalid, length)
		}
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
