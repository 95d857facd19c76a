package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends accepted in the store field.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreKuzu   = "kuzu"
)

// FileName is the config file written by Write. Load also accepts
// kinship.yaml.
const FileName = "kinship.yml"

// ProjectConfig holds settings loaded from kinship.yml.
type ProjectConfig struct {
	Locale           string        `yaml:"locale,omitempty"`
	Store            string        `yaml:"store,omitempty"`
	DBPath           string        `yaml:"dbPath,omitempty"`
	AutosaveDebounce time.Duration `yaml:"autosaveDebounce,omitempty"` // negative: save on every edit
	MCPAddr          string        `yaml:"mcpAddr,omitempty"`
	Verbose          bool          `yaml:"verbose,omitempty"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() ProjectConfig {
	return ProjectConfig{
		Locale:           "ru",
		Store:            StoreSQLite,
		DBPath:           filepath.Join(".kinship", "kinship.db"),
		AutosaveDebounce: time.Second,
		MCPAddr:          "localhost:8090",
	}
}

// Load attempts to read kinship.yml or kinship.yaml from the given
// directory. Fields missing from the file keep their defaults. Returns the
// defaults (not an error) if no config file exists.
func Load(dir string) (*ProjectConfig, error) {
	cfg := Defaults()
	for _, name := range []string{FileName, "kinship.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return &cfg, nil
	}
	return &cfg, nil
}

// Write stores cfg as kinship.yml in dir, replacing any existing file.
func Write(dir string, cfg ProjectConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Validate rejects unknown store backends.
func (c ProjectConfig) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite, StoreKuzu:
	default:
		return fmt.Errorf("unknown store %q (want memory, sqlite or kuzu)", c.Store)
	}
	return nil
}
