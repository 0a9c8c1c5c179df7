package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ctlConfig is the cantierectl config file: where the server lives and
// which token to present.
type ctlConfig struct {
	API apiConfig `toml:"api"`
}

type apiConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token,omitempty"`
}

func defaultConfig() ctlConfig {
	return ctlConfig{API: apiConfig{BaseURL: "http://localhost:8080"}}
}

// configDir returns the XDG-compliant config directory.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cantiere")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cantiere")
}

// configPath returns the full path to the config file.
func configPath() string {
	return filepath.Join(configDir(), "config.toml")
}

// loadConfig reads the config file, returning defaults when none exists.
func loadConfig() (ctlConfig, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// saveConfig writes the config to disk. The file holds a token, so it is
// created with owner-only permissions.
func saveConfig(cfg ctlConfig) error {
	if err := os.MkdirAll(configDir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(configPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// configExists reports whether a config file is present on disk.
func configExists() bool {
	_, err := os.Stat(configPath())
	return err == nil
}
