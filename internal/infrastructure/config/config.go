// Package config loads the sprintlens.yaml settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/sprintlens/internal/infrastructure/provider"
)

const configFile = "sprintlens.yaml"

// Provider kinds accepted in the config file.
const (
	ProviderFile      = "file"
	ProviderGitHub    = "github"
	ProviderJira      = "jira"
	ProviderSynthetic = "synthetic"
	ProviderPlugin    = "plugin"
)

// Config stores connection and runtime settings outside the domain.
// Credentials left empty fall back to environment variables.
type Config struct {
	Provider string `yaml:"provider"`

	// File provider: directory holding payload files.
	PayloadDir string `yaml:"payload_dir"`

	// GitHub provider.
	GitHubToken string `yaml:"github_token"`

	// Jira provider.
	Jira provider.JiraConfig `yaml:"jira"`

	// Plugin provider.
	PluginPath   string            `yaml:"plugin_path"`
	PluginConfig map[string]string `yaml:"plugin_config"`

	// Synthetic provider.
	SyntheticSeed int64 `yaml:"synthetic_seed"`

	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	DashboardAddr   string `yaml:"dashboard_addr"`
}

// Load reads sprintlens.yaml from root. A missing file yields the
// defaults instead of an error.
func Load(root string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(filepath.Join(root, configFile))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// Save writes the config back to root.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(root, configFile), data, 0600)
}

// CacheTTL returns the configured TTL as a duration; zero means the
// service default.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func defaults() *Config {
	return &Config{
		Provider:      ProviderFile,
		PayloadDir:    ".",
		DashboardAddr: ":8090",
	}
}

// applyEnv fills empty credentials from the environment.
func (c *Config) applyEnv() {
	if c.GitHubToken == "" {
		c.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
	if c.Jira.Domain == "" {
		c.Jira.Domain = os.Getenv("JIRA_DOMAIN")
	}
	if c.Jira.Email == "" {
		c.Jira.Email = os.Getenv("JIRA_EMAIL")
	}
	if c.Jira.APIToken == "" {
		c.Jira.APIToken = os.Getenv("JIRA_API_TOKEN")
	}
}
