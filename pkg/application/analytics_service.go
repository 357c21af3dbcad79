package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/charts"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

// DataSource is the collaborator that supplies raw project data. It is
// the only potentially blocking dependency of the service; every method
// honors context cancellation. A nil DataSource is legal: operations then
// resolve to empty responses instead of failing.
type DataSource interface {
	// FetchSprint returns the raw payload for one sprint.
	FetchSprint(ctx context.Context, sprintID string) (*normalize.SprintPayload, error)
	// FetchSprintHistory returns per-sprint committed/completed pairs,
	// oldest first, at most limit entries.
	FetchSprintHistory(ctx context.Context, projectID string, limit int) ([]domain.SprintSummary, error)
	// FetchWorkItems returns raw work items for a project.
	FetchWorkItems(ctx context.Context, projectID string) ([]map[string]any, error)
}

// AnalyticsService orchestrates the analytics pipeline: fetch raw data
// from the collaborator, normalize it, invoke the calculator, cache the
// result with a TTL, and return it. Calculators are pure; the cache is the
// only shared mutable state.
type AnalyticsService struct {
	source     DataSource
	normalizer *normalize.Normalizer
	cache      *Cache
	logger     *slog.Logger
	now        func() time.Time
}

// NewAnalyticsService creates a service over the given source. The source
// may be nil for a service without a configured provider; cacheTTL of 0
// uses the default.
func NewAnalyticsService(source DataSource, cacheTTL time.Duration, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		source:     source,
		normalizer: normalize.New(logger),
		cache:      NewCache(cacheTTL),
		logger:     logger,
		now:        time.Now,
	}
}

// GetBurndown computes the burndown chart for one sprint.
func (s *AnalyticsService) GetBurndown(ctx context.Context, sprintID string, scope domain.ScopeType) (*domain.ChartResponse, error) {
	if sprintID == "" {
		return nil, domain.NewInvalidArgument("sprint_id", sprintID)
	}
	key := cacheKey("burndown", sprintID, string(scope))
	if cached, ok := s.cachedChart(key); ok {
		return cached, nil
	}

	sprint, resp, err := s.loadSprint(ctx, sprintID, domain.ChartBurndown, "Burndown")
	if err != nil || resp != nil {
		return resp, err
	}

	chart, err := charts.Burndown(sprint, scope, s.now())
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, chart)
	return chart, nil
}

// GetVelocity computes the velocity chart over a project's sprint history.
func (s *AnalyticsService) GetVelocity(ctx context.Context, projectID string, limit int) (*domain.ChartResponse, error) {
	if limit <= 0 {
		limit = 6
	}
	key := cacheKey("velocity", projectID, fmt.Sprintf("%d", limit))
	if cached, ok := s.cachedChart(key); ok {
		return cached, nil
	}
	if s.source == nil {
		return s.noSource(domain.ChartVelocity, "Velocity"), nil
	}

	history, err := s.source.FetchSprintHistory(ctx, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch sprint history: %w", err)
	}

	chart, err := charts.Velocity(history)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, chart)
	return chart, nil
}

// GetCumulativeFlow computes the cumulative flow diagram for a project
// over a date range. A zero to defaults to today; a zero from defaults to
// thirty days before to.
func (s *AnalyticsService) GetCumulativeFlow(ctx context.Context, projectID string, from, to time.Time) (*domain.ChartResponse, error) {
	from, to = s.defaultRange(from, to)
	key := cacheKey("cfd", projectID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if cached, ok := s.cachedChart(key); ok {
		return cached, nil
	}

	items, resp, err := s.loadItems(ctx, projectID, domain.ChartCumulativeFlow, "Cumulative Flow")
	if err != nil || resp != nil {
		return resp, err
	}

	chart, err := charts.CumulativeFlow(items, from, to, nil)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, chart)
	return chart, nil
}

// GetCycleTime computes cycle-time statistics over a project's items.
func (s *AnalyticsService) GetCycleTime(ctx context.Context, projectID string) (*domain.ChartResponse, error) {
	key := cacheKey("cycle_time", projectID)
	if cached, ok := s.cachedChart(key); ok {
		return cached, nil
	}

	items, resp, err := s.loadItems(ctx, projectID, domain.ChartCycleTime, "Cycle Time")
	if err != nil || resp != nil {
		return resp, err
	}

	chart, err := charts.CycleTime(items)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, chart)
	return chart, nil
}

// GetWorkDistribution groups a project's items along a dimension.
func (s *AnalyticsService) GetWorkDistribution(ctx context.Context, projectID string, dimension domain.Dimension) (*domain.ChartResponse, error) {
	key := cacheKey("work_distribution", projectID, string(dimension))
	if cached, ok := s.cachedChart(key); ok {
		return cached, nil
	}

	items, resp, err := s.loadItems(ctx, projectID, domain.ChartWorkDistribution, "Work Distribution")
	if err != nil || resp != nil {
		return resp, err
	}

	chart, err := charts.WorkDistribution(items, dimension)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, chart)
	return chart, nil
}

// GetIssueTrend computes created/resolved counts over a date range.
func (s *AnalyticsService) GetIssueTrend(ctx context.Context, projectID string, from, to time.Time) (*domain.ChartResponse, error) {
	from, to = s.defaultRange(from, to)
	key := cacheKey("issue_trend", projectID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if cached, ok := s.cachedChart(key); ok {
		return cached, nil
	}

	items, resp, err := s.loadItems(ctx, projectID, domain.ChartIssueTrend, "Issue Trend")
	if err != nil || resp != nil {
		return resp, err
	}

	chart, err := charts.IssueTrend(items, from, to)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, chart)
	return chart, nil
}

// GetSprintReport aggregates one sprint into a report.
func (s *AnalyticsService) GetSprintReport(ctx context.Context, sprintID string) (*domain.SprintReport, error) {
	if sprintID == "" {
		return nil, domain.NewInvalidArgument("sprint_id", sprintID)
	}
	key := cacheKey("sprint_report", sprintID)
	if cached, ok := s.cache.Get(key); ok {
		if report, ok := cached.(*domain.SprintReport); ok {
			return report, nil
		}
	}
	if s.source == nil {
		report := charts.SprintReport(nil)
		report.Metadata = map[string]any{"message": noSourceMessage}
		return report, nil
	}

	payload, err := s.source.FetchSprint(ctx, sprintID)
	if err != nil {
		return nil, fmt.Errorf("fetch sprint %s: %w", sprintID, err)
	}
	sprint, stats := s.normalizer.Sprint(payload)
	s.logStats(sprintID, stats)

	report := charts.SprintReport(sprint)
	s.cache.Set(key, report)
	return report, nil
}

// ClearCache purges all cached results unconditionally.
func (s *AnalyticsService) ClearCache() {
	s.cache.Clear()
	s.logger.Debug("analytics cache cleared")
}

// CacheSize returns the number of live cache entries.
func (s *AnalyticsService) CacheSize() int {
	return s.cache.Len()
}

const noSourceMessage = "no data source configured; connect a provider to compute this chart"

func (s *AnalyticsService) noSource(chartType domain.ChartType, title string) *domain.ChartResponse {
	s.logger.Warn("chart requested without a data source", "chart_type", string(chartType))
	return domain.EmptyChartResponse(chartType, title, noSourceMessage)
}

// cachedChart returns a cache hit when the stored value is a chart.
func (s *AnalyticsService) cachedChart(key string) (*domain.ChartResponse, bool) {
	cached, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	chart, ok := cached.(*domain.ChartResponse)
	return chart, ok
}

// loadSprint fetches and normalizes one sprint. The second return value
// is non-nil when the operation resolved early to an empty response.
func (s *AnalyticsService) loadSprint(ctx context.Context, sprintID string, chartType domain.ChartType, title string) (*domain.SprintData, *domain.ChartResponse, error) {
	if s.source == nil {
		return nil, s.noSource(chartType, title), nil
	}
	payload, err := s.source.FetchSprint(ctx, sprintID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch sprint %s: %w", sprintID, err)
	}
	sprint, stats := s.normalizer.Sprint(payload)
	s.logStats(sprintID, stats)
	return sprint, nil, nil
}

// loadItems fetches and normalizes a project's work items.
func (s *AnalyticsService) loadItems(ctx context.Context, projectID string, chartType domain.ChartType, title string) ([]domain.WorkItem, *domain.ChartResponse, error) {
	if s.source == nil {
		return nil, s.noSource(chartType, title), nil
	}
	raw, err := s.source.FetchWorkItems(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch work items: %w", err)
	}
	items, stats := s.normalizer.Items(raw)
	s.logStats(projectID, stats)
	return items, nil, nil
}

func (s *AnalyticsService) logStats(scope string, stats *normalize.Stats) {
	if stats.Dropped == 0 && stats.SuspectHistory == 0 {
		return
	}
	s.logger.Info("normalization degraded some items",
		"scope", scope,
		"normalized", stats.Normalized,
		"dropped", stats.Dropped,
		"suspect_history", stats.SuspectHistory)
}

func (s *AnalyticsService) defaultRange(from, to time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	return from, to
}

// cacheKey builds a cache key from the operation name and all parameters.
func cacheKey(op string, params ...string) string {
	key := op
	for _, p := range params {
		key += "|" + p
	}
	return key
}
