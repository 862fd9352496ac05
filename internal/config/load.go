package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
// ParseFlags must have been called.
func Load() (*Config, error) {
	return load(commandLine)
}

func load(fv *flagValues) (*Config, error) {
	cfg := Default()

	// Explicit path takes priority over discovery
	configPath := fv.config
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := LoadFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	fv.apply(cfg)

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./sloth.yaml",
		"./sloth.toml",
		filepath.Join(ConfigDir(), "config.yaml"),
		filepath.Join(ConfigDir(), "config.toml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	home, _ := homedir.Dir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Sloth")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Sloth")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "sloth")
		}
		return filepath.Join(home, ".config", "sloth")
	}
}

// LoadFile merges the file at path into cfg. The format is chosen by extension:
// .yaml and .yml are YAML, .toml is TOML. A leading ~ is expanded.
//
// Parameters:
//   - cfg: the config to merge into
//   - path: the config file
//
// Returns:
//   - error: error if the file cannot be read, has an unknown extension or does not parse
func LoadFile(cfg *Config, path string) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unknown config format %q", filepath.Ext(path))
	}
}
