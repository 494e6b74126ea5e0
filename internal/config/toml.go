// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Correct CorrectConfig  `toml:"correct"`
	Layouts []CustomLayout `toml:"layout"`
}

// CorrectConfig maps correction settings. Nil fields are unset.
type CorrectConfig struct {
	Layouts    []string `toml:"layouts"`
	Canonical  *string  `toml:"canonical"`
	Window     *int     `toml:"window"`
	Classifier *string  `toml:"classifier"`
	Model      *string  `toml:"model"`
	History    *bool    `toml:"history"`
}

// CustomLayout defines an extra layout in the config file.
type CustomLayout struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Keys    string `toml:"keys"`
	Letters string `toml:"letters"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
