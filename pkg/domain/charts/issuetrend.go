package charts

import (
	"time"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

// IssueTrend counts items created and resolved per day across a date
// range, with the daily net change and a running cumulative net.
func IssueTrend(items []domain.WorkItem, from, to time.Time) (*domain.ChartResponse, error) {
	if len(items) == 0 || to.Before(from) {
		return domain.EmptyChartResponse(domain.ChartIssueTrend, "Issue Trend", "no work items in range"), nil
	}

	createdByDay := make(map[time.Time]int)
	resolvedByDay := make(map[time.Time]int)
	for _, item := range items {
		createdByDay[normalize.Day(item.CreatedAt)]++
		if item.CompletedAt != nil {
			resolvedByDay[normalize.Day(*item.CompletedAt)]++
		}
	}

	created := domain.ChartSeries{Name: "Created", Type: "line", Color: "#ef4444"}
	resolved := domain.ChartSeries{Name: "Resolved", Type: "line", Color: "#22c55e"}
	net := domain.ChartSeries{Name: "Net Change", Type: "line", Color: "#eab308"}
	cumulative := domain.ChartSeries{Name: "Cumulative Net", Type: "line", Color: "#3b82f6"}

	var totalCreated, totalResolved, runningNet, days int
	eachDay(from, to, func(day time.Time) {
		c := createdByDay[day]
		r := resolvedByDay[day]
		dayNet := c - r
		runningNet += dayNet
		totalCreated += c
		totalResolved += r
		days++

		date := datePtr(day)
		created.Data = append(created.Data, domain.ChartDataPoint{Date: date, Value: float64(c)})
		resolved.Data = append(resolved.Data, domain.ChartDataPoint{Date: date, Value: float64(r)})
		net.Data = append(net.Data, domain.ChartDataPoint{Date: date, Value: float64(dayNet)})
		cumulative.Data = append(cumulative.Data, domain.ChartDataPoint{Date: date, Value: float64(runningNet)})
	})

	metadata := map[string]any{
		"total_created":        totalCreated,
		"total_resolved":       totalResolved,
		"created_per_day":      round2(float64(totalCreated) / float64(days)),
		"resolved_per_day":     round2(float64(totalResolved) / float64(days)),
		"final_cumulative_net": runningNet,
		"days":                 days,
	}

	series := []domain.ChartSeries{created, resolved, net, cumulative}
	return domain.NewChartResponse(domain.ChartIssueTrend, "Issue Trend", series, metadata), nil
}
