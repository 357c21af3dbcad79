// Package wiring assembles the configured provider and the analytics
// service into the object graph shared by the CLI, the MCP server and
// the dashboard.
package wiring

import (
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/sprintlens/internal/infrastructure/config"
	"github.com/felixgeelhaar/sprintlens/internal/infrastructure/provider"
	"github.com/felixgeelhaar/sprintlens/pkg/application"
)

// AppServices exposes the application layer wired together for a root
// directory.
type AppServices struct {
	Config    *config.Config
	Source    application.DataSource
	Analytics *application.AnalyticsService
	Logger    *slog.Logger

	cleanup func()
}

// BuildAppServices loads the config from root and constructs the
// provider and analytics service. An unknown provider kind is an error;
// a missing config file falls back to defaults.
func BuildAppServices(root string, logger *slog.Logger) (*AppServices, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	source, cleanup, err := buildSource(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &AppServices{
		Config:    cfg,
		Source:    source,
		Analytics: application.NewAnalyticsService(source, cfg.CacheTTL(), logger),
		Logger:    logger,
		cleanup:   cleanup,
	}, nil
}

// BuildAppServicesWithSource wires a caller-supplied source, for tests
// and embedders.
func BuildAppServicesWithSource(cfg *config.Config, source application.DataSource, logger *slog.Logger) *AppServices {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppServices{
		Config:    cfg,
		Source:    source,
		Analytics: application.NewAnalyticsService(source, cfg.CacheTTL(), logger),
		Logger:    logger,
	}
}

// Close releases provider resources such as plugin processes.
func (s *AppServices) Close() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

// buildSource constructs the provider named in the config. Network
// providers are wrapped with retry and timeout policies.
func buildSource(cfg *config.Config, logger *slog.Logger) (application.DataSource, func(), error) {
	switch cfg.Provider {
	case config.ProviderFile, "":
		return provider.NewFileProvider(cfg.PayloadDir, logger), nil, nil

	case config.ProviderGitHub:
		return provider.NewResilientSource(provider.NewGitHubProvider(cfg.GitHubToken)), nil, nil

	case config.ProviderJira:
		jira, err := provider.NewJiraProvider(cfg.Jira)
		if err != nil {
			return nil, nil, err
		}
		return provider.NewResilientSource(jira), nil, nil

	case config.ProviderSynthetic:
		return provider.NewSyntheticProvider(cfg.SyntheticSeed), nil, nil

	case config.ProviderPlugin:
		src, err := provider.LoadPluginSource(cfg.PluginPath, cfg.PluginConfig)
		if err != nil {
			return nil, nil, err
		}
		return provider.NewResilientSource(src), src.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
