package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != ProviderFile {
		t.Errorf("Expected default provider %q, got %q", ProviderFile, cfg.Provider)
	}
	if cfg.PayloadDir != "." {
		t.Errorf("Expected default payload dir, got %q", cfg.PayloadDir)
	}
	if cfg.DashboardAddr != ":8090" {
		t.Errorf("Expected default dashboard addr, got %q", cfg.DashboardAddr)
	}
	if cfg.CacheTTL() != 0 {
		t.Errorf("Expected zero TTL to mean the service default, got %v", cfg.CacheTTL())
	}
}

func TestLoad_ParsesFile(t *testing.T) {
	dir := t.TempDir()
	content := `provider: synthetic
synthetic_seed: 42
cache_ttl_seconds: 120
dashboard_addr: ":9000"
`
	if err := os.WriteFile(filepath.Join(dir, "sprintlens.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != ProviderSynthetic {
		t.Errorf("Expected synthetic, got %q", cfg.Provider)
	}
	if cfg.SyntheticSeed != 42 {
		t.Errorf("Expected seed 42, got %d", cfg.SyntheticSeed)
	}
	if cfg.CacheTTL() != 2*time.Minute {
		t.Errorf("Expected 2m TTL, got %v", cfg.CacheTTL())
	}
	if cfg.DashboardAddr != ":9000" {
		t.Errorf("Expected :9000, got %q", cfg.DashboardAddr)
	}
}

func TestLoad_MalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sprintlens.yaml"), []byte("provider: [broken"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected a malformed config to fail")
	}
}

func TestLoad_EnvFallbacks(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_env")
	t.Setenv("JIRA_DOMAIN", "acme.atlassian.net")
	t.Setenv("JIRA_EMAIL", "env@acme.dev")
	t.Setenv("JIRA_API_TOKEN", "jira_env")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GitHubToken != "ghp_env" {
		t.Errorf("Expected the env token, got %q", cfg.GitHubToken)
	}
	if cfg.Jira.Domain != "acme.atlassian.net" || cfg.Jira.APIToken != "jira_env" {
		t.Errorf("Expected env jira settings, got %+v", cfg.Jira)
	}
}

func TestLoad_FileWinsOverEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_env")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sprintlens.yaml"), []byte("github_token: ghp_file\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GitHubToken != "ghp_file" {
		t.Errorf("Expected the file token to win, got %q", cfg.GitHubToken)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := defaults()
	cfg.Provider = ProviderPlugin
	cfg.PluginPath = "/usr/local/bin/sprintlens-plugin-mock"
	cfg.PluginConfig = map[string]string{"region": "eu"}
	cfg.CacheTTLSeconds = 60

	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderPlugin || loaded.PluginPath != cfg.PluginPath {
		t.Errorf("round trip lost plugin settings: %+v", loaded)
	}
	if loaded.PluginConfig["region"] != "eu" {
		t.Errorf("round trip lost plugin config: %v", loaded.PluginConfig)
	}
	if loaded.CacheTTLSeconds != 60 {
		t.Errorf("Expected 60s TTL, got %d", loaded.CacheTTLSeconds)
	}
}

func TestSave_NilConfig(t *testing.T) {
	if err := Save(t.TempDir(), nil); err == nil {
		t.Fatal("expected an error for a nil config")
	}
}
