// Package config loads the run configuration: which model speaks for which
// power, how to reach the generation service, and where the audit trail goes.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"concordat/internal/types"
)

// Config holds all concordat configuration.
type Config struct {
	// Generator configures the text-generation service.
	Generator GeneratorConfig `yaml:"generator"`

	// Models maps each power to its model; powers without an entry use
	// Generator.DefaultModel.
	Models map[types.Power]string `yaml:"models"`

	// Game settings.
	Game GameConfig `yaml:"game"`

	// Audit output paths.
	Audit AuditConfig `yaml:"audit"`
}

// GeneratorConfig selects and configures the generation backend.
type GeneratorConfig struct {
	Provider     string `yaml:"provider"` // gemini, openai, ollama
	APIKey       string `yaml:"api_key"`
	APIKeyEnv    string `yaml:"api_key_env"`
	BaseURL      string `yaml:"base_url"`
	DefaultModel string `yaml:"default_model"`
	MaxTokens    int    `yaml:"max_tokens"`
	Timeout      string `yaml:"timeout"`
}

// GameConfig bounds the run.
type GameConfig struct {
	MaxYear int  `yaml:"max_year"`
	Press   bool `yaml:"press"`
}

// AuditConfig says where the trail is persisted.
type AuditConfig struct {
	TrailPath   string `yaml:"trail_path"`
	ArchivePath string `yaml:"archive_path"`
}

// Default returns the built-in configuration: local Ollama, full press, the
// original run bounds.
func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Provider:     "ollama",
			BaseURL:      "http://localhost:11434/v1",
			DefaultModel: "llama3",
			MaxTokens:    4096,
			Timeout:      "120s",
		},
		Models: map[types.Power]string{
			"AUSTRIA": "mistral:7b-instruct",
			"ENGLAND": "llama3",
			"FRANCE":  "qwen2.5:7b-instruct",
			"GERMANY": "mistral:7b-instruct",
			"ITALY":   "llama3",
			"RUSSIA":  "qwen2.5:7b-instruct",
			"TURKEY":  "mistral:7b-instruct",
		},
		Game: GameConfig{
			MaxYear: 1912,
			Press:   true,
		},
		Audit: AuditConfig{
			TrailPath:   "dialogue_log.jsonl",
			ArchivePath: "dialogue_log.db",
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config for obvious misconfiguration.
func (c *Config) Validate() error {
	switch c.Generator.Provider {
	case "gemini", "openai", "ollama":
	default:
		return fmt.Errorf("unknown generator provider %q", c.Generator.Provider)
	}
	if c.Generator.DefaultModel == "" && len(c.Models) == 0 {
		return fmt.Errorf("no models configured")
	}
	if _, err := c.GeneratorTimeout(); err != nil {
		return err
	}
	return nil
}

// ResolveAPIKey returns the configured key, falling back to the named
// environment variable.
func (c *Config) ResolveAPIKey() string {
	if c.Generator.APIKey != "" {
		return c.Generator.APIKey
	}
	if c.Generator.APIKeyEnv != "" {
		return os.Getenv(c.Generator.APIKeyEnv)
	}
	return ""
}

// GeneratorTimeout parses the configured timeout.
func (c *Config) GeneratorTimeout() (time.Duration, error) {
	if c.Generator.Timeout == "" {
		return 120 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Generator.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid generator timeout %q: %w", c.Generator.Timeout, err)
	}
	return d, nil
}
