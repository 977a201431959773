package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".sourcedrift"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// TrackedRepo is one entry of the market signals tracking list: a
// repository paired with the tutorial that covers it and an editorial note.
type TrackedRepo struct {
	// Repo is the owner/name form of the tracked repository.
	Repo string `yaml:"repo"`

	// TutorialPath is the corpus-relative path of the covering tutorial.
	TutorialPath string `yaml:"tutorial_path"`

	// TutorialLabel is the display label of the covering tutorial.
	TutorialLabel string `yaml:"tutorial_label"`

	// Why is a one-line note on why the repository is tracked.
	Why string `yaml:"why"`
}

// File is the parsed YAML configuration file.
//
// All sections are optional. The alias table extends (and can override) the
// built-in defaults shipped with the resolver.
type File struct {
	// Self is the owner/name of the documentation repository itself.
	// Self-links inside the corpus are skipped during extraction.
	Self string `yaml:"self"`

	// Ignore lists owner/name repositories excluded from extraction,
	// e.g. template repositories linked from every document.
	Ignore []string `yaml:"ignore"`

	// Aliases maps raw owner/name identities to their canonical
	// owner/name, covering known renames and forks-of-record.
	Aliases map[string]string `yaml:"aliases"`

	// Tracked lists the repositories included in the market signals
	// snapshot.
	Tracked []TrackedRepo `yaml:"tracked"`
}

// LoadConfigFile loads the configuration from a YAML file.
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

	if cf.Aliases == nil {
		cf.Aliases = make(map[string]string)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .sourcedrift in the current directory
//  3. Look for .sourcedrift in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
