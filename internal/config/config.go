// Package config loads the nrrdtool configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the nrrdtool configuration
type Config struct {
	Check   Check   `yaml:"check"`
	Convert Convert `yaml:"convert"`
	Info    Info    `yaml:"info"`
}

// Check contains defaults for the check command
type Check struct {
	Strict bool `yaml:"strict"`
}

// Convert contains defaults for the convert command
type Convert struct {
	Encoding string `yaml:"encoding"`
	// Endian is "little", "big" or empty for the host byte order.
	Endian string `yaml:"endian"`
}

// Info contains defaults for the info command
type Info struct {
	Format string `yaml:"format"`
}

// Output formats for the info command.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Convert: Convert{
			Encoding: "raw",
		},
		Info: Info{
			Format: FormatText,
		},
	}
}

// LoadConfig loads configuration from the specified path. Fields missing
// from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig writes the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports the first setting that is not one of its allowed values.
func (c *Config) Validate() error {
	switch c.Convert.Encoding {
	case "raw", "ascii":
	default:
		return fmt.Errorf("invalid convert.encoding %q: want raw or ascii", c.Convert.Encoding)
	}
	switch c.Convert.Endian {
	case "", "little", "big":
	default:
		return fmt.Errorf("invalid convert.endian %q: want little or big", c.Convert.Endian)
	}
	switch c.Info.Format {
	case FormatText, FormatYAML:
	default:
		return fmt.Errorf("invalid info.format %q: want text or yaml", c.Info.Format)
	}
	return nil
}
