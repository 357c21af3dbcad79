// Package plugin defines the external-provider plugin protocol. Plugin
// binaries speak net/rpc through hashicorp/go-plugin and return payloads
// in the collaborator contract shape, so every plugin benefits from the
// same normalization as the built-in providers.
package plugin

import (
	"encoding/gob"
	"net/rpc"

	"github.com/hashicorp/go-plugin"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

func init() {
	// Raw payload values travel as interface{} over gob.
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register([]map[string]any{})
}

// Provider is the interface plugin binaries implement. Calls carry no
// context because net/rpc cannot transport one; the host enforces
// deadlines around the RPC boundary instead.
type Provider interface {
	// Init ensures the plugin can connect (auth check).
	Init(config map[string]string) error

	// Sprint returns the raw payload for one sprint.
	Sprint(sprintID string) (*normalize.SprintPayload, error)

	// History returns committed/completed pairs, oldest first.
	History(projectID string, limit int) ([]domain.SprintSummary, error)

	// WorkItems returns raw work items for a project.
	WorkItems(projectID string) ([]map[string]any, error)
}

// ProviderPlugin is the plugin.Plugin implementation used on both sides
// of the process boundary.
type ProviderPlugin struct {
	Impl Provider
}

func (p *ProviderPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &ProviderRPCServer{Impl: p.Impl}, nil
}

func (p *ProviderPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &ProviderRPCClient{Client: c}, nil
}

// RPC Client/Server wrappers

type HistoryArgs struct {
	ProjectID string
	Limit     int
}

type ProviderRPCClient struct{ Client *rpc.Client }

func (g *ProviderRPCClient) Init(config map[string]string) error {
	var resp interface{}
	return g.Client.Call("Plugin.Init", config, &resp)
}

func (g *ProviderRPCClient) Sprint(sprintID string) (*normalize.SprintPayload, error) {
	var resp normalize.SprintPayload
	err := g.Client.Call("Plugin.Sprint", sprintID, &resp)
	return &resp, err
}

func (g *ProviderRPCClient) History(projectID string, limit int) ([]domain.SprintSummary, error) {
	var resp []domain.SprintSummary
	args := &HistoryArgs{ProjectID: projectID, Limit: limit}
	err := g.Client.Call("Plugin.History", args, &resp)
	return resp, err
}

func (g *ProviderRPCClient) WorkItems(projectID string) ([]map[string]any, error) {
	var resp []map[string]any
	err := g.Client.Call("Plugin.WorkItems", projectID, &resp)
	return resp, err
}

type ProviderRPCServer struct{ Impl Provider }

func (s *ProviderRPCServer) Init(config map[string]string, resp *interface{}) error {
	return s.Impl.Init(config)
}

func (s *ProviderRPCServer) Sprint(sprintID string, resp *normalize.SprintPayload) error {
	payload, err := s.Impl.Sprint(sprintID)
	if payload != nil {
		*resp = *payload
	}
	return err
}

func (s *ProviderRPCServer) History(args *HistoryArgs, resp *[]domain.SprintSummary) error {
	history, err := s.Impl.History(args.ProjectID, args.Limit)
	*resp = history
	return err
}

func (s *ProviderRPCServer) WorkItems(projectID string, resp *[]map[string]any) error {
	items, err := s.Impl.WorkItems(projectID)
	*resp = items
	return err
}
