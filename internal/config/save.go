package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Save writes the config to path, or as YAML to the user's config directory when path is empty.
//
// Parameters:
//   - path: the destination, usually ConfigPath()
//
// Returns:
//   - string: the file written
//   - error: error if encoding or writing fails
func (c *Config) Save(path string) (string, error) {
	if path == "" {
		path = filepath.Join(ConfigDir(), "config.yaml")
	}
	return path, c.SaveTo(path)
}

// SaveTo writes the config to a specific path, as TOML when the extension is .toml
// and as YAML otherwise.
func (c *Config) SaveTo(path string) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return err
	}

	// Create parent directory if needed
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
