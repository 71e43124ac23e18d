package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default workflow values applied when the config file omits them.
const (
	DefaultMaxFixAttempts = 3
	DefaultToolTimeout    = 300 * time.Second
	DefaultDistDir        = "dist"
)

// Load reads and parses a driftgate configuration from the given YAML file
// path. After parsing, defaults are applied to anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault searches for a config in standard locations and loads the
// first one found. Search order: ./driftgate.yaml, ~/.driftgate/config.yaml.
// When no file exists, a config with all defaults is returned.
func LoadDefault() (*Config, error) {
	candidates := []string{"driftgate.yaml"}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".driftgate", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := &Config{}
	applyDefaults(cfg)
	return cfg, nil
}

// ToolTimeout returns the parsed tool timeout, falling back to the default
// for empty or malformed values.
func (c *Config) ToolTimeout() time.Duration {
	if c.Workflow.ToolTimeout == "" {
		return DefaultToolTimeout
	}
	d, err := time.ParseDuration(c.Workflow.ToolTimeout)
	if err != nil || d <= 0 {
		return DefaultToolTimeout
	}
	return d
}

// applyDefaults fills in defaults for anything the file left unset.
func applyDefaults(cfg *Config) {
	w := &cfg.Workflow
	if w.MaxFixAttempts == 0 {
		w.MaxFixAttempts = DefaultMaxFixAttempts
	}
	if w.DistDir == "" {
		w.DistDir = DefaultDistDir
	}

	t := &cfg.Tools
	if t.Terraform == "" {
		t.Terraform = "terraform"
	}
	if t.TFLint == "" {
		t.TFLint = "tflint"
	}
	if t.Checkov == "" {
		t.Checkov = "checkov"
	}
	if t.Hadolint == "" {
		t.Hadolint = "hadolint"
	}
	if t.Docker == "" {
		t.Docker = "docker"
	}
	if t.Helm == "" {
		t.Helm = "helm"
	}

	if cfg.DB.Path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.DB.Path = filepath.Join(home, ".driftgate", "driftgate.db")
		}
	}
}
