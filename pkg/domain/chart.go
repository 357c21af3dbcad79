package domain

import "time"

// ChartType identifies which calculator produced a ChartResponse.
type ChartType string

const (
	ChartBurndown         ChartType = "burndown"
	ChartVelocity         ChartType = "velocity"
	ChartCumulativeFlow   ChartType = "cumulative_flow"
	ChartCycleTime        ChartType = "cycle_time"
	ChartIssueTrend       ChartType = "issue_trend"
	ChartWorkDistribution ChartType = "work_distribution"
	ChartSprintReport     ChartType = "sprint_report"
)

// ScopeType selects the metric a burndown is measured in.
type ScopeType string

const (
	ScopeStoryPoints ScopeType = "story_points"
	ScopeTasks       ScopeType = "tasks"
	ScopeHours       ScopeType = "hours"
)

// Dimension selects the grouping axis for work distribution.
type Dimension string

const (
	DimensionAssignee Dimension = "assignee"
	DimensionPriority Dimension = "priority"
	DimensionType     Dimension = "type"
	DimensionStatus   Dimension = "status"
)

// ChartDataPoint is one point on a chart series. Date is nil for
// categorical points (bars, pie slices).
type ChartDataPoint struct {
	Date     *time.Time     `json:"date"`
	Value    float64        `json:"value"`
	Label    string         `json:"label,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ChartSeries is an ordered, named list of data points with optional
// rendering hints for downstream chart renderers.
type ChartSeries struct {
	Name     string           `json:"name"`
	Data     []ChartDataPoint `json:"data"`
	Color    string           `json:"color,omitempty"`
	Type     string           `json:"type,omitempty"`
	Metadata map[string]any   `json:"metadata,omitempty"`
}

// ChartResponse is the chart-ready output contract consumed by renderers
// and reporting layers. Field names and nesting are part of the wire
// contract and must not change.
//
// GeneratedAt is set at construction and changes on every fresh
// computation even for identical inputs; idempotence comparisons must
// ignore it.
type ChartResponse struct {
	ChartType   ChartType      `json:"chart_type"`
	Title       string         `json:"title"`
	Series      []ChartSeries  `json:"series"`
	Metadata    map[string]any `json:"metadata"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// NewChartResponse constructs a response stamped with the current time.
func NewChartResponse(chartType ChartType, title string, series []ChartSeries, metadata map[string]any) *ChartResponse {
	if series == nil {
		series = []ChartSeries{}
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &ChartResponse{
		ChartType:   chartType,
		Title:       title,
		Series:      series,
		Metadata:    metadata,
		GeneratedAt: time.Now().UTC(),
	}
}

// EmptyChartResponse returns a zeroed response carrying a human-readable
// message, used when no data source is configured or no items qualify.
func EmptyChartResponse(chartType ChartType, title, message string) *ChartResponse {
	return NewChartResponse(chartType, title, []ChartSeries{}, map[string]any{
		"message": message,
	})
}
