package internal

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultServerURL is used when no config file or environment override exists
const DefaultServerURL = "http://localhost:8000"

const configFile = "config.yaml"

// Config holds client-side settings stored in the profile directory
type Config struct {
	ServerURL string `yaml:"server_url"`
}

// ProfileDir returns the directory holding the token, config and archive.
// TEAMTASK_HOME overrides the default ~/.teamtask (useful for tests and
// multiple profiles).
func ProfileDir() (string, error) {
	if dir := os.Getenv("TEAMTASK_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".teamtask"), nil
}

// LoadConfig reads the config file from the profile directory. A missing
// file is not an error; defaults apply. TEAMTASK_SERVER overrides the
// configured server URL.
func LoadConfig(profileDir string) (*Config, error) {
	cfg := &Config{ServerURL: DefaultServerURL}

	path := filepath.Join(profileDir, configFile)
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigError{Path: path, Op: "parse", Err: err}
		}
		if cfg.ServerURL == "" {
			cfg.ServerURL = DefaultServerURL
		}
	} else if !os.IsNotExist(err) {
		return nil, &ConfigError{Path: path, Op: "read", Err: err}
	}

	if url := os.Getenv("TEAMTASK_SERVER"); url != "" {
		cfg.ServerURL = url
	}

	return cfg, nil
}

// SaveConfig writes the config file to the profile directory
func SaveConfig(profileDir string, cfg *Config) error {
	if err := os.MkdirAll(profileDir, 0700); err != nil {
		return &ConfigError{Path: profileDir, Op: "write", Err: err}
	}

	path := filepath.Join(profileDir, configFile)
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return &ConfigError{Path: path, Op: "write", Err: err}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return &ConfigError{Path: path, Op: "write", Err: err}
	}
	return nil
}
