package charts

import (
	"sort"
	"time"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
)

// cycleMeasure is one completed item's elapsed whole days from work start
// to completion.
type cycleMeasure struct {
	item      domain.WorkItem
	completed time.Time
	days      float64
}

// CycleTime computes cycle-time statistics over completed items: a scatter
// series of raw measurements plus flat reference lines at the 50th, 85th
// and 95th percentiles. Items missing a start or completion date, or
// completed at or before their start, are dropped.
func CycleTime(items []domain.WorkItem) (*domain.ChartResponse, error) {
	measures := make([]cycleMeasure, 0, len(items))
	for _, item := range items {
		start := workStart(item)
		if item.CompletedAt == nil || start.IsZero() {
			continue
		}
		completed := *item.CompletedAt
		if !completed.After(start) {
			continue
		}
		days := float64(int(completed.Sub(start).Hours() / 24))
		measures = append(measures, cycleMeasure{item: item, completed: completed, days: days})
	}

	if len(measures) == 0 {
		return domain.EmptyChartResponse(domain.ChartCycleTime, "Cycle Time", "no completed items"), nil
	}

	sort.Slice(measures, func(i, j int) bool {
		return measures[i].completed.Before(measures[j].completed)
	})

	values := make([]float64, len(measures))
	scatter := domain.ChartSeries{Name: "Cycle Time", Type: "scatter", Color: "#3b82f6"}
	for i, m := range measures {
		values[i] = m.days
		scatter.Data = append(scatter.Data, domain.ChartDataPoint{
			Date:  datePtr(m.completed),
			Value: m.days,
			Label: m.item.ID,
		})
	}

	p50 := percentile(values, 0.50)
	p85 := percentile(values, 0.85)
	p95 := percentile(values, 0.95)

	outliers := []string{}
	for _, m := range measures {
		if m.days > p95 {
			outliers = append(outliers, m.item.ID)
		}
	}

	first := measures[0].completed
	last := measures[len(measures)-1].completed
	series := []domain.ChartSeries{
		scatter,
		referenceLine("P50", p50, first, last, "#22c55e"),
		referenceLine("P85", p85, first, last, "#eab308"),
		referenceLine("P95", p95, first, last, "#ef4444"),
	}

	metadata := map[string]any{
		"count":        len(measures),
		"average_days": round2(mean(values)),
		"median_days":  round2(median(values)),
		"p50":          round2(p50),
		"p85":          round2(p85),
		"p95":          round2(p95),
		"outliers":     outliers,
	}

	return domain.NewChartResponse(domain.ChartCycleTime, "Cycle Time", series, metadata), nil
}

// workStart is when an item's clock starts: the first in-progress entry in
// its status history when one exists, else its creation date.
func workStart(item domain.WorkItem) time.Time {
	for _, change := range item.StatusHistory {
		if change.Status == domain.StatusInProgress {
			return change.Date
		}
	}
	return item.CreatedAt
}

// referenceLine builds a flat two-point series spanning the scatter range.
func referenceLine(name string, value float64, from, to time.Time, color string) domain.ChartSeries {
	return domain.ChartSeries{
		Name:  name,
		Type:  "line",
		Color: color,
		Data: []domain.ChartDataPoint{
			{Date: datePtr(from), Value: round2(value)},
			{Date: datePtr(to), Value: round2(value)},
		},
	}
}
