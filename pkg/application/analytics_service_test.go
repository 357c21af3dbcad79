package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

// stubSource records fetch counts and serves a fixed sprint and item set.
type stubSource struct {
	sprintCalls  int
	historyCalls int
	itemsCalls   int
	err          error
}

func (s *stubSource) FetchSprint(ctx context.Context, sprintID string) (*normalize.SprintPayload, error) {
	s.sprintCalls++
	if s.err != nil {
		return nil, s.err
	}
	return &normalize.SprintPayload{
		Sprint: map[string]any{
			"id":         sprintID,
			"name":       "Sprint 1",
			"status":     "active",
			"start_date": "2026-03-01",
			"end_date":   "2026-03-14",
		},
		Tasks: []map[string]any{
			{"id": "S-1", "status": "Done", "story_points": float64(5), "created_at": "2026-03-01", "completed_at": "2026-03-05"},
			{"id": "S-2", "status": "To Do", "story_points": float64(3), "created_at": "2026-03-01"},
		},
	}, nil
}

func (s *stubSource) FetchSprintHistory(ctx context.Context, projectID string, limit int) ([]domain.SprintSummary, error) {
	s.historyCalls++
	if s.err != nil {
		return nil, s.err
	}
	return []domain.SprintSummary{
		{ID: "s-1", Name: "Sprint 1", Committed: 20, Completed: 18},
		{ID: "s-2", Name: "Sprint 2", Committed: 20, Completed: 21},
	}, nil
}

func (s *stubSource) FetchWorkItems(ctx context.Context, projectID string) ([]map[string]any, error) {
	s.itemsCalls++
	if s.err != nil {
		return nil, s.err
	}
	return []map[string]any{
		{"id": "W-1", "status": "Done", "type": "Story", "created_at": "2026-03-01", "completed_at": "2026-03-04"},
		{"id": "W-2", "status": "In Progress", "type": "Bug", "created_at": "2026-03-02"},
	}, nil
}

func newTestService(source DataSource) *AnalyticsService {
	return NewAnalyticsService(source, time.Minute, nil)
}

func TestAnalyticsService_GetBurndown(t *testing.T) {
	svc := newTestService(&stubSource{})

	chart, err := svc.GetBurndown(context.Background(), "s-1", domain.ScopeStoryPoints)
	if err != nil {
		t.Fatalf("GetBurndown failed: %v", err)
	}
	if chart.ChartType != domain.ChartBurndown {
		t.Errorf("Expected burndown, got %q", chart.ChartType)
	}
	if len(chart.Series) != 2 {
		t.Errorf("Expected 2 series, got %d", len(chart.Series))
	}
}

func TestAnalyticsService_GetBurndown_EmptySprintID(t *testing.T) {
	svc := newTestService(&stubSource{})
	_, err := svc.GetBurndown(context.Background(), "", domain.ScopeStoryPoints)
	if err == nil {
		t.Fatal("expected an error for an empty sprint id")
	}
	if !domain.IsInvalidArgument(err) {
		t.Errorf("expected an invalid-argument error, got %v", err)
	}
}

func TestAnalyticsService_CachesResults(t *testing.T) {
	source := &stubSource{}
	svc := newTestService(source)

	for i := 0; i < 3; i++ {
		if _, err := svc.GetBurndown(context.Background(), "s-1", domain.ScopeStoryPoints); err != nil {
			t.Fatalf("GetBurndown failed: %v", err)
		}
	}
	if source.sprintCalls != 1 {
		t.Errorf("Expected 1 fetch for 3 requests, got %d", source.sprintCalls)
	}
	if svc.CacheSize() != 1 {
		t.Errorf("Expected 1 cache entry, got %d", svc.CacheSize())
	}
}

func TestAnalyticsService_CacheKeyIncludesParameters(t *testing.T) {
	source := &stubSource{}
	svc := newTestService(source)

	svc.GetBurndown(context.Background(), "s-1", domain.ScopeStoryPoints)
	svc.GetBurndown(context.Background(), "s-1", domain.ScopeTasks)
	svc.GetBurndown(context.Background(), "s-2", domain.ScopeStoryPoints)

	if source.sprintCalls != 3 {
		t.Errorf("Expected 3 fetches for distinct parameters, got %d", source.sprintCalls)
	}
	if svc.CacheSize() != 3 {
		t.Errorf("Expected 3 cache entries, got %d", svc.CacheSize())
	}
}

func TestAnalyticsService_ClearCacheForcesRecompute(t *testing.T) {
	source := &stubSource{}
	svc := newTestService(source)

	svc.GetCycleTime(context.Background(), "web")
	svc.ClearCache()
	svc.GetCycleTime(context.Background(), "web")

	if source.itemsCalls != 2 {
		t.Errorf("Expected 2 fetches after a cache clear, got %d", source.itemsCalls)
	}
}

func TestAnalyticsService_NoSourceResolvesToEmptyChart(t *testing.T) {
	svc := newTestService(nil)

	chart, err := svc.GetVelocity(context.Background(), "web", 6)
	if err != nil {
		t.Fatalf("GetVelocity failed: %v", err)
	}
	if len(chart.Series) != 0 {
		t.Errorf("Expected no series without a source, got %d", len(chart.Series))
	}
	msg, _ := chart.Metadata["message"].(string)
	if msg == "" {
		t.Error("expected an explanatory message in metadata")
	}
}

func TestAnalyticsService_NoSourceSprintReport(t *testing.T) {
	svc := newTestService(nil)

	report, err := svc.GetSprintReport(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("GetSprintReport failed: %v", err)
	}
	if _, ok := report.Metadata["message"]; !ok {
		t.Error("expected an explanatory message in the report metadata")
	}
}

func TestAnalyticsService_SourceErrorsPropagate(t *testing.T) {
	boom := errors.New("upstream unavailable")
	svc := newTestService(&stubSource{err: boom})

	if _, err := svc.GetVelocity(context.Background(), "web", 6); !errors.Is(err, boom) {
		t.Errorf("expected the upstream error to propagate, got %v", err)
	}
	if _, err := svc.GetBurndown(context.Background(), "s-1", domain.ScopeStoryPoints); !errors.Is(err, boom) {
		t.Errorf("expected the upstream error to propagate, got %v", err)
	}
}

func TestAnalyticsService_GetWorkDistribution_BadDimension(t *testing.T) {
	svc := newTestService(&stubSource{})
	_, err := svc.GetWorkDistribution(context.Background(), "web", domain.Dimension("moon_phase"))
	if err == nil {
		t.Fatal("expected an error for an unknown dimension")
	}
	if !domain.IsInvalidArgument(err) {
		t.Errorf("expected an invalid-argument error, got %v", err)
	}
}

func TestAnalyticsService_GetIssueTrend_DefaultRange(t *testing.T) {
	svc := newTestService(&stubSource{})
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }

	chart, err := svc.GetIssueTrend(context.Background(), "web", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetIssueTrend failed: %v", err)
	}
	// Default range is the 30 days up to now, 31 daily buckets inclusive.
	if days, _ := chart.Metadata["days"].(int); days != 31 {
		t.Errorf("Expected 31 days in the default range, got %d", days)
	}
}

func TestAnalyticsService_GetSprintReport(t *testing.T) {
	svc := newTestService(&stubSource{})

	report, err := svc.GetSprintReport(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("GetSprintReport failed: %v", err)
	}
	if report.SprintName != "Sprint 1" {
		t.Errorf("Expected Sprint 1, got %q", report.SprintName)
	}
	if report.Commitment.TotalItems != 2 || report.Commitment.CompletedItems != 1 {
		t.Errorf("Expected 2 total / 1 completed, got %d / %d",
			report.Commitment.TotalItems, report.Commitment.CompletedItems)
	}
}

func TestAnalyticsService_GetCumulativeFlow(t *testing.T) {
	svc := newTestService(&stubSource{})

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	chart, err := svc.GetCumulativeFlow(context.Background(), "web", from, to)
	if err != nil {
		t.Fatalf("GetCumulativeFlow failed: %v", err)
	}
	if chart.ChartType != domain.ChartCumulativeFlow {
		t.Errorf("Expected cumulative flow, got %q", chart.ChartType)
	}
	if len(chart.Series) == 0 {
		t.Error("expected at least one series")
	}
}
