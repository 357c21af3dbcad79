// Package charts implements the analytics calculators. Every calculator
// is a pure, synchronous function over canonical entities: no I/O, no
// shared state, safe for any number of concurrent callers. Output is the
// ChartResponse wire contract; data-quality problems degrade to zeroed or
// empty results instead of errors, so only structurally invalid requests
// (unknown enums) fail.
package charts

import (
	"time"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

// scopeMetric returns the per-item measure for a scope type: story points,
// a flat count of one, or estimated hours.
func scopeMetric(scope domain.ScopeType) (func(domain.WorkItem) float64, error) {
	switch scope {
	case domain.ScopeStoryPoints:
		return domain.WorkItem.Points, nil
	case domain.ScopeTasks:
		return func(domain.WorkItem) float64 { return 1 }, nil
	case domain.ScopeHours:
		return domain.WorkItem.Hours, nil
	default:
		return nil, domain.NewInvalidArgument("scope_type", string(scope))
	}
}

// sumMetric totals a metric over a list of items.
func sumMetric(items []domain.WorkItem, metric func(domain.WorkItem) float64) float64 {
	var total float64
	for _, item := range items {
		total += metric(item)
	}
	return total
}

// eachDay iterates midnight-UTC days from start through end inclusive.
func eachDay(start, end time.Time, fn func(day time.Time)) {
	start = normalize.Day(start)
	end = normalize.Day(end)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		fn(day)
	}
}

// datePtr copies a time for use in a ChartDataPoint.
func datePtr(t time.Time) *time.Time {
	d := t
	return &d
}
