package provider

import (
	"context"
	"fmt"

	pluginproto "github.com/felixgeelhaar/sprintlens/internal/infrastructure/provider/plugin"
	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

// PluginSource adapts a loaded plugin Provider to application.DataSource.
// The RPC boundary cannot carry a context, so cancellation is checked
// before each call and deadlines belong to the resilient decorator.
type PluginSource struct {
	provider pluginproto.Provider
	loader   *pluginproto.Loader
}

// LoadPluginSource launches a plugin binary and runs its auth check.
func LoadPluginSource(path string, config map[string]string) (*PluginSource, error) {
	loader := pluginproto.NewLoader()
	prov, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	if err := prov.Init(config); err != nil {
		loader.Cleanup()
		return nil, fmt.Errorf("initialize plugin %s: %w", path, err)
	}
	return &PluginSource{provider: prov, loader: loader}, nil
}

func (p *PluginSource) FetchSprint(ctx context.Context, sprintID string) (*normalize.SprintPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.provider.Sprint(sprintID)
}

func (p *PluginSource) FetchSprintHistory(ctx context.Context, projectID string, limit int) ([]domain.SprintSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.provider.History(projectID, limit)
}

func (p *PluginSource) FetchWorkItems(ctx context.Context, projectID string) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.provider.WorkItems(projectID)
}

// Close kills the plugin process.
func (p *PluginSource) Close() {
	p.loader.Cleanup()
}
