// Package mcp exposes the analytics operations as MCP tools over stdio,
// HTTP and WebSocket transports.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/sprintlens/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/sprintlens/pkg/application"
	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

type Server struct {
	mcpServer *mcp.Server
	analytics *application.AnalyticsService
	services  *wiring.AppServices
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients.
// Internal details are omitted — only the friendly message is returned.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

func NewServer(root string) (*Server, error) {
	services, err := wiring.BuildAppServices(root, nil)
	if err != nil {
		return nil, fmt.Errorf("build services: %w", err)
	}
	return NewServerWithServices(services), nil
}

// NewServerWithServices wires the server over an already-built graph.
func NewServerWithServices(services *wiring.AppServices) *Server {
	info := mcp.ServerInfo{
		Name:    "sprintlens",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("SprintLens MCP Server"),
			mcp.WithDescription("SprintLens computes burndown, velocity, flow and sprint health analytics from project tracker data."),
			mcp.WithWebsiteURL("https://github.com/felixgeelhaar/sprintlens"),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Use tools to compute charts for a sprint or project. Results are cached; call sprintlens_clear_cache after upstream data changes."),
		),
		analytics: services.Analytics,
		services:  services,
	}

	s.registerTools()
	return s
}

type BurndownArgs struct {
	SprintID string `json:"sprint_id" jsonschema:"description=The sprint to chart"`
	Scope    string `json:"scope,omitempty" jsonschema:"description=Scope metric: story_points (default), tasks or hours"`
}

type VelocityArgs struct {
	ProjectID string `json:"project_id" jsonschema:"description=The project whose sprint history to chart"`
	Limit     int    `json:"limit,omitempty" jsonschema:"description=Number of recent sprints to include (default 6)"`
}

type ProjectArgs struct {
	ProjectID string `json:"project_id" jsonschema:"description=The project to chart"`
}

type RangeArgs struct {
	ProjectID string `json:"project_id" jsonschema:"description=The project to chart"`
	From      string `json:"from,omitempty" jsonschema:"description=Range start date (ISO-8601, default 30 days before to)"`
	To        string `json:"to,omitempty" jsonschema:"description=Range end date (ISO-8601, default today)"`
}

type DistributionArgs struct {
	ProjectID string `json:"project_id" jsonschema:"description=The project to chart"`
	Dimension string `json:"dimension,omitempty" jsonschema:"description=Grouping dimension: assignee (default), priority, type or status"`
}

type SprintReportArgs struct {
	SprintID string `json:"sprint_id" jsonschema:"description=The sprint to report on"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("sprintlens_burndown").
		Description("Compute the burndown chart for a sprint: ideal line, actual remaining work, and scope changes").
		Handler(s.handleBurndown)

	s.mcpServer.Tool("sprintlens_velocity").
		Description("Compute velocity over recent sprints with trend and predictability score").
		Handler(s.handleVelocity)

	s.mcpServer.Tool("sprintlens_cumulative_flow").
		Description("Compute the cumulative flow diagram for a project over a date range").
		Handler(s.handleCumulativeFlow)

	s.mcpServer.Tool("sprintlens_cycle_time").
		Description("Compute cycle time scatter with p50/p85/p95 percentiles and outliers").
		Handler(s.handleCycleTime)

	s.mcpServer.Tool("sprintlens_work_distribution").
		Description("Group a project's work items by assignee, priority, type or status").
		Handler(s.handleWorkDistribution)

	s.mcpServer.Tool("sprintlens_issue_trend").
		Description("Compute created versus resolved issue counts over a date range").
		Handler(s.handleIssueTrend)

	s.mcpServer.Tool("sprintlens_sprint_report").
		Description("Aggregate a sprint into a report: commitment, scope changes, team performance, highlights and concerns").
		Handler(s.handleSprintReport)

	s.mcpServer.Tool("sprintlens_clear_cache").
		Description("Purge all cached analytics so the next request recomputes from fresh data").
		Handler(s.handleClearCache)
}

func (s *Server) handleBurndown(ctx context.Context, args BurndownArgs) (any, error) {
	scope := domain.ScopeStoryPoints
	if args.Scope != "" {
		scope = domain.ScopeType(args.Scope)
	}
	chart, err := s.analytics.GetBurndown(ctx, args.SprintID, scope)
	if err != nil {
		if domain.IsInvalidArgument(err) {
			return nil, mcpErr("Invalid burndown arguments. Provide sprint_id and an optional scope of story_points, tasks or hours.")
		}
		return nil, mcpErr("Failed to compute the burndown chart. Check the provider configuration and sprint ID.")
	}
	return chart, nil
}

func (s *Server) handleVelocity(ctx context.Context, args VelocityArgs) (any, error) {
	chart, err := s.analytics.GetVelocity(ctx, args.ProjectID, args.Limit)
	if err != nil {
		return nil, mcpErr("Failed to compute the velocity chart. Check the provider configuration and project ID.")
	}
	return chart, nil
}

func (s *Server) handleCumulativeFlow(ctx context.Context, args RangeArgs) (any, error) {
	from, to, err := parseRange(args.From, args.To)
	if err != nil {
		return nil, mcpErr("Invalid date range. Use ISO-8601 dates such as 2026-08-01.")
	}
	chart, err := s.analytics.GetCumulativeFlow(ctx, args.ProjectID, from, to)
	if err != nil {
		return nil, mcpErr("Failed to compute the cumulative flow diagram. Check the provider configuration and project ID.")
	}
	return chart, nil
}

func (s *Server) handleCycleTime(ctx context.Context, args ProjectArgs) (any, error) {
	chart, err := s.analytics.GetCycleTime(ctx, args.ProjectID)
	if err != nil {
		return nil, mcpErr("Failed to compute cycle time statistics. Check the provider configuration and project ID.")
	}
	return chart, nil
}

func (s *Server) handleWorkDistribution(ctx context.Context, args DistributionArgs) (any, error) {
	dimension := domain.DimensionAssignee
	if args.Dimension != "" {
		dimension = domain.Dimension(args.Dimension)
	}
	chart, err := s.analytics.GetWorkDistribution(ctx, args.ProjectID, dimension)
	if err != nil {
		if domain.IsInvalidArgument(err) {
			return nil, mcpErr("Invalid dimension. Use assignee, priority, type or status.")
		}
		return nil, mcpErr("Failed to compute the work distribution. Check the provider configuration and project ID.")
	}
	return chart, nil
}

func (s *Server) handleIssueTrend(ctx context.Context, args RangeArgs) (any, error) {
	from, to, err := parseRange(args.From, args.To)
	if err != nil {
		return nil, mcpErr("Invalid date range. Use ISO-8601 dates such as 2026-08-01.")
	}
	chart, err := s.analytics.GetIssueTrend(ctx, args.ProjectID, from, to)
	if err != nil {
		return nil, mcpErr("Failed to compute the issue trend. Check the provider configuration and project ID.")
	}
	return chart, nil
}

func (s *Server) handleSprintReport(ctx context.Context, args SprintReportArgs) (any, error) {
	report, err := s.analytics.GetSprintReport(ctx, args.SprintID)
	if err != nil {
		if domain.IsInvalidArgument(err) {
			return nil, mcpErr("Invalid sprint report arguments. Provide a sprint_id.")
		}
		return nil, mcpErr("Failed to build the sprint report. Check the provider configuration and sprint ID.")
	}
	return report, nil
}

func (s *Server) handleClearCache(ctx context.Context, args struct{}) (any, error) {
	s.analytics.ClearCache()
	return "Analytics cache cleared.", nil
}

// parseRange parses optional ISO-8601 bounds; empty strings stay zero so
// the service applies its defaults.
func parseRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if fromRaw != "" {
		if from, err = normalize.ParseTime(fromRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toRaw != "" {
		if to, err = normalize.ParseTime(toRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}

func (s *Server) Start() error {
	return s.StartStdio()
}

func (s *Server) StartStdio() error {
	return s.ServeStdio(context.Background())
}

func (s *Server) StartHTTP(addr string) error {
	return s.ServeHTTP(context.Background(), addr)
}

func (s *Server) StartWebSocket(addr string) error {
	return s.ServeWebSocket(context.Background(), addr)
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}

func (s *Server) ServeWebSocket(ctx context.Context, addr string) error {
	return mcp.ServeWebSocket(ctx, s.mcpServer, addr)
}
