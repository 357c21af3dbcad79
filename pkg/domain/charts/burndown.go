package charts

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

// Burndown produces the ideal and actual remaining-work series for one
// sprint, measured in the chosen scope metric. The actual line stops at
// today when the sprint is still running.
//
// Items marked done without a completed_at default their completion to
// the sprint end date. That is a policy choice, surfaced in the response
// metadata as completion_date_fallback.
func Burndown(sprint *domain.SprintData, scope domain.ScopeType, today time.Time) (*domain.ChartResponse, error) {
	metric, err := scopeMetric(scope)
	if err != nil {
		return nil, err
	}
	if sprint == nil {
		return domain.EmptyChartResponse(domain.ChartBurndown, "Burndown", "no sprint data"), nil
	}

	totalScope := sumMetric(sprint.WorkItems, metric)
	addedScope := sumMetric(sprint.AddedItems, metric)
	removedScope := sumMetric(sprint.RemovedItems, metric)
	netScope := totalScope + addedScope - removedScope

	start := normalize.Day(sprint.StartDate)
	end := normalize.Day(sprint.EndDate)
	totalDays := sprint.Days()

	// Ideal line: linear descent from net scope to zero across the sprint.
	ideal := domain.ChartSeries{
		Name:  "Ideal",
		Type:  "line",
		Color: "#94a3b8",
		Data:  make([]domain.ChartDataPoint, 0, totalDays+1),
	}
	perDay := netScope / float64(totalDays)
	for i := 0; i <= totalDays; i++ {
		remaining := netScope - perDay*float64(i)
		if remaining < 0 {
			remaining = 0
		}
		ideal.Data = append(ideal.Data, domain.ChartDataPoint{
			Date:  datePtr(start.AddDate(0, 0, i)),
			Value: round2(remaining),
		})
	}

	// Actual line: initial scope plus scope changes minus completions,
	// each summed up to the current day.
	actualEnd := normalize.Day(today)
	if actualEnd.After(end) {
		actualEnd = end
	}
	actual := domain.ChartSeries{
		Name:  "Actual",
		Type:  "line",
		Color: "#3b82f6",
	}

	// Until the sprint starts the full net scope is outstanding.
	lastRemaining := netScope
	var lastCompleted float64
	if !actualEnd.Before(start) {
		eachDay(start, actualEnd, func(day time.Time) {
			dayEnd := day.AddDate(0, 0, 1)
			added := metricBefore(sprint.AddedItems, metric, dayEnd, scopeChangeDate)
			removed := metricBefore(sprint.RemovedItems, metric, dayEnd, scopeChangeDate)
			completed := completedBefore(sprint, metric, dayEnd)

			remaining := totalScope + added - removed - completed
			if remaining < 0 {
				remaining = 0
			}
			lastRemaining = remaining
			lastCompleted = completed
			actual.Data = append(actual.Data, domain.ChartDataPoint{
				Date:  datePtr(day),
				Value: round2(remaining),
			})
		})
	}

	onTrack := isOnTrack(ideal, actual)

	completionPct := 0.0
	if netScope > 0 {
		completionPct = lastCompleted / netScope * 100
	}

	metadata := map[string]any{
		"total_scope":              round2(totalScope),
		"remaining":                round2(lastRemaining),
		"completed":                round2(lastCompleted),
		"completion_percentage":    round2(completionPct),
		"on_track":                 onTrack,
		"scope_changes":            scopeChangeSummary(addedScope, removedScope),
		"sprint_days":              totalDays,
		"status":                   string(sprint.Status),
		"scope_type":               string(scope),
		"completion_date_fallback": "sprint end date",
	}

	title := fmt.Sprintf("Burndown: %s", sprint.Name)
	return domain.NewChartResponse(domain.ChartBurndown, title, []domain.ChartSeries{ideal, actual}, metadata), nil
}

// scopeChangeDate is the relevant date for scope-change accounting: when
// the item entered or left the sprint.
func scopeChangeDate(item domain.WorkItem) (time.Time, bool) {
	return item.CreatedAt, true
}

// metricBefore sums the metric over items whose relevant date falls
// strictly before cutoff.
func metricBefore(items []domain.WorkItem, metric func(domain.WorkItem) float64, cutoff time.Time, dateOf func(domain.WorkItem) (time.Time, bool)) float64 {
	var total float64
	for _, item := range items {
		date, ok := dateOf(item)
		if !ok {
			continue
		}
		if date.Before(cutoff) {
			total += metric(item)
		}
	}
	return total
}

// completedBefore sums the metric of items completed strictly before
// cutoff, across the committed scope and mid-sprint additions.
func completedBefore(sprint *domain.SprintData, metric func(domain.WorkItem) float64, cutoff time.Time) float64 {
	completionOf := func(item domain.WorkItem) (time.Time, bool) {
		return item.CompletionDate(sprint.EndDate)
	}
	return metricBefore(sprint.WorkItems, metric, cutoff, completionOf) +
		metricBefore(sprint.AddedItems, metric, cutoff, completionOf)
}

// isOnTrack compares the latest actual value against the ideal value at
// the matching date, falling back to the ideal line's last point when no
// exact date matches.
func isOnTrack(ideal, actual domain.ChartSeries) bool {
	if len(actual.Data) == 0 || len(ideal.Data) == 0 {
		return true
	}
	latest := actual.Data[len(actual.Data)-1]

	target := ideal.Data[len(ideal.Data)-1].Value
	for _, p := range ideal.Data {
		if p.Date != nil && latest.Date != nil && p.Date.Equal(*latest.Date) {
			target = p.Value
			break
		}
	}
	return latest.Value <= target
}

func scopeChangeSummary(added, removed float64) map[string]any {
	return map[string]any{
		"added":   round2(added),
		"removed": round2(removed),
		"net":     round2(added - removed),
	}
}
