// Package config loads the optional YAML configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the server settings. Flags given on the command line take
// precedence over values read from a file.
type Config struct {
	Database  string `yaml:"database"`
	Addr      string `yaml:"addr"`
	AdminUser string `yaml:"admin_user"`
	Log       string `yaml:"log"`
	NotifyAt  string `yaml:"notify_at"`
	DryRun    bool   `yaml:"dry_run"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database:  "izposoja.sqlite3",
		Addr:      ":8080",
		AdminUser: "Admin",
		NotifyAt:  "08:00",
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()

	buf, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
