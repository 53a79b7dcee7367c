package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".psinsight"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .psinsight configuration file.
//
// Example:
//
//	api_key: AIza...
//	timeout: 90s
//	urls:
//	  - https://example.com
//	  - https://example.org
type File struct {
	// APIKey is the PageSpeed Insights API credential.
	// A key given via the --api-key flag takes precedence over this value.
	APIKey string `yaml:"api_key,omitempty"`

	// Timeout overrides the default per-request timeout.
	// Stored as a Go duration string ("90s", "2m") because yaml.v3 does not
	// decode time.Duration from strings directly. Use ParseTimeout to read it.
	Timeout string `yaml:"timeout,omitempty"`

	// URLs is the default list of page URLs to analyze when no positional
	// arguments are given.
	URLs []string `yaml:"urls,omitempty"`
}

// ParseTimeout parses the file's timeout value.
// Returns zero (meaning "not set") when the field is empty.
func (cf *File) ParseTimeout() (time.Duration, error) {
	if cf.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(cf.Timeout)
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .psinsight in the current directory
// 3. Look for .psinsight in the XDG config directory
// 4. Look for .psinsight in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check XDG config directory
	xdgConfig := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
