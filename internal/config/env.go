package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// EnvConfig holds LANGCORRECT_* overrides. Empty values are unset.
type EnvConfig struct {
	Layouts    []string `env:"LANGCORRECT_LAYOUTS" envSeparator:","`
	Canonical  string   `env:"LANGCORRECT_CANONICAL"`
	Window     int      `env:"LANGCORRECT_WINDOW"`
	Classifier string   `env:"LANGCORRECT_CLASSIFIER"`
	Model      string   `env:"LANGCORRECT_MODEL"`
	History    string   `env:"LANGCORRECT_HISTORY"`
}

// LoadEnv loads an optional .env file, then parses the environment.
// Variables already set in the environment win over the file.
func LoadEnv(dotenvPath string) (EnvConfig, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return EnvConfig{}, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Apply overlays the set environment values onto c.
func (e EnvConfig) Apply(c *CorrectConfig) error {
	if len(e.Layouts) > 0 {
		layouts := make([]string, 0, len(e.Layouts))
		for _, l := range e.Layouts {
			if l = strings.TrimSpace(l); l != "" {
				layouts = append(layouts, l)
			}
		}
		c.Layouts = layouts
	}
	if e.Canonical != "" {
		c.Canonical = &e.Canonical
	}
	if e.Window != 0 {
		c.Window = &e.Window
	}
	if e.Classifier != "" {
		c.Classifier = &e.Classifier
	}
	if e.Model != "" {
		c.Model = &e.Model
	}
	if e.History != "" {
		switch strings.ToLower(e.History) {
		case "1", "true", "yes", "on":
			v := true
			c.History = &v
		case "0", "false", "no", "off":
			v := false
			c.History = &v
		default:
			return fmt.Errorf("LANGCORRECT_HISTORY: invalid boolean %q", e.History)
		}
	}
	return nil
}
