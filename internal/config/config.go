// Package config loads the Symbi configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/symbi-app/symbi/internal/classify"
	"github.com/symbi-app/symbi/internal/model"
)

// Config is the user-editable configuration, stored as YAML.
type Config struct {
	Thresholds classify.Thresholds `yaml:"thresholds"`
	Evolution  EvolutionConfig     `yaml:"evolution"`
	Gemini     GeminiConfig        `yaml:"gemini"`
	Health     HealthConfig        `yaml:"health"`
}

// EvolutionConfig sets the streak requirement and generation policy.
type EvolutionConfig struct {
	RequiredDays      int      `yaml:"required_days"`
	PositiveStates    []string `yaml:"positive_states"`
	GenerationTimeout string   `yaml:"generation_timeout"` // e.g. "30s"
}

// GeminiConfig configures the generative collaborator. The API key is
// normally supplied via GEMINI_API_KEY rather than the file.
type GeminiConfig struct {
	APIKey        string `yaml:"api_key"`
	ImageModel    string `yaml:"image_model"`
	TextModel     string `yaml:"text_model"`
	AppearanceDir string `yaml:"appearance_dir"`
}

// HealthConfig points at the companion app's export file.
type HealthConfig struct {
	ExportPath string `yaml:"export_path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Thresholds: classify.Thresholds{
			Low:           2000,
			High:          8000,
			LowSleepHours: classify.DefaultLowSleepHours,
			LowHRV:        classify.DefaultLowHRV,
		},
		Evolution: EvolutionConfig{
			RequiredDays:      30,
			GenerationTimeout: "30s",
		},
		Gemini: GeminiConfig{
			AppearanceDir: filepath.Join(home, ".symbi", "appearances"),
		},
		Health: HealthConfig{
			ExportPath: filepath.Join(home, ".symbi", "health.json"),
		},
	}
}

// Load reads the config at path, applying defaults for absent fields. A
// missing file yields the defaults. GEMINI_API_KEY overrides the file's
// api_key.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the classifier and streak invariants.
func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.Evolution.RequiredDays <= 0 {
		return fmt.Errorf("evolution.required_days must be positive, got %d", c.Evolution.RequiredDays)
	}
	for _, s := range c.Evolution.PositiveStates {
		if !model.EmotionalState(s).Valid() {
			return fmt.Errorf("unknown positive state %q", s)
		}
	}
	if _, err := c.GenerationTimeout(); err != nil {
		return err
	}
	return nil
}

// PositiveSet returns the configured positive states as a set, or nil when
// unset (callers fall back to model.PositiveDefaults).
func (c *Config) PositiveSet() map[model.EmotionalState]bool {
	if len(c.Evolution.PositiveStates) == 0 {
		return nil
	}
	set := make(map[model.EmotionalState]bool, len(c.Evolution.PositiveStates))
	for _, s := range c.Evolution.PositiveStates {
		set[model.EmotionalState(s)] = true
	}
	return set
}

// GenerationTimeout parses the configured timeout.
func (c *Config) GenerationTimeout() (time.Duration, error) {
	if c.Evolution.GenerationTimeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Evolution.GenerationTimeout)
	if err != nil {
		return 0, fmt.Errorf("evolution.generation_timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("evolution.generation_timeout must be positive, got %s", d)
	}
	return d, nil
}
