// Package config handles configuration loading and validation for imebridge.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"imebridge/internal/logging"
)

// Config holds the bridge configuration.
type Config struct {
	// ClientName is the name sent to the daemon when creating an input
	// context.
	ClientName string `toml:"client_name"`

	// AddressFile overrides the derived daemon address-file path. The
	// IBUS_ADDRESS environment variable still wins over this.
	AddressFile string `toml:"address_file"`

	// WatchAddressFile enables the fsnotify staleness watcher.
	WatchAddressFile bool `toml:"watch_address_file"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `toml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format"`

	// File, when set, receives log output instead of stderr.
	File string `toml:"file"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		ClientName:       "imebridge",
		WatchAddressFile: true,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns the conventional config location,
// $XDG_CONFIG_HOME/imebridge/config.toml with the usual HOME fallback.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "imebridge", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return filepath.Join(home, ".config", "imebridge", "config.toml"), nil
}

// Load reads the configuration at path over the defaults. A missing file
// is not an error; you get the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.ClientName == "" {
		return errors.New("client_name must not be empty")
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}
