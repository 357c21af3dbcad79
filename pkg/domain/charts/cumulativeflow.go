package charts

import (
	"time"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

// DefaultStatusOrder is the workflow vocabulary a cumulative flow diagram
// uses when the caller does not supply one, ordered from least to most
// progressed.
var DefaultStatusOrder = []domain.WorkItemStatus{
	domain.StatusTodo,
	domain.StatusInProgress,
	domain.StatusInReview,
	domain.StatusDone,
}

// statusLabels maps canonical statuses onto display names for series.
var statusLabels = map[domain.WorkItemStatus]string{
	domain.StatusTodo:       "To Do",
	domain.StatusInProgress: "In Progress",
	domain.StatusInReview:   "In Review",
	domain.StatusDone:       "Done",
	domain.StatusBlocked:    "Blocked",
}

var cfdColors = []string{"#22c55e", "#eab308", "#3b82f6", "#94a3b8", "#ef4444"}

// CumulativeFlow aggregates item counts per workflow status over a date
// range. Counting is cumulative across earlier statuses: a day's count for
// status S is the number of items whose status that day is at or past S in
// the vocabulary, so items that have progressed past a status still count
// toward it and the bands never cross. The Done series comes first so it
// renders at the bottom of the stack.
func CumulativeFlow(items []domain.WorkItem, from, to time.Time, statuses []domain.WorkItemStatus) (*domain.ChartResponse, error) {
	if len(statuses) == 0 {
		statuses = DefaultStatusOrder
	}
	if len(items) == 0 || to.Before(from) {
		return domain.EmptyChartResponse(domain.ChartCumulativeFlow, "Cumulative Flow", "no work items in range"), nil
	}

	index := make(map[domain.WorkItemStatus]int, len(statuses))
	for i, s := range statuses {
		index[s] = i
	}

	var snapshots []daySnapshot
	eachDay(from, to, func(day time.Time) {
		snap := daySnapshot{
			day:        day,
			raw:        make([]int, len(statuses)),
			cumulative: make([]int, len(statuses)),
		}
		endOfDay := day.AddDate(0, 0, 1)

		for _, item := range items {
			status, known := statusAsOf(item, endOfDay, statuses)
			if !known {
				continue
			}
			idx, ok := index[status]
			if !ok {
				idx = 0
			}
			snap.raw[idx]++
			for i := 0; i <= idx; i++ {
				snap.cumulative[i]++
			}
		}
		snapshots = append(snapshots, snap)
	})

	// One area series per status, Done (last vocabulary entry) first.
	series := make([]domain.ChartSeries, 0, len(statuses))
	for i := len(statuses) - 1; i >= 0; i-- {
		s := domain.ChartSeries{
			Name:  labelFor(statuses[i]),
			Type:  "area",
			Color: cfdColors[i%len(cfdColors)],
			Data:  make([]domain.ChartDataPoint, 0, len(snapshots)),
		}
		for _, snap := range snapshots {
			s.Data = append(s.Data, domain.ChartDataPoint{
				Date:  datePtr(snap.day),
				Value: float64(snap.cumulative[i]),
			})
		}
		series = append(series, s)
	}

	metadata := cfdMetadata(items, statuses, snapshots, to)
	return domain.NewChartResponse(domain.ChartCumulativeFlow, "Cumulative Flow", series, metadata), nil
}

// statusAsOf determines an item's status as of a point in time: the most
// recent history entry at or before it, else derived from the created and
// completed dates. Items not yet created are unknown. Declared statuses
// outside the vocabulary default to the first entry.
func statusAsOf(item domain.WorkItem, endOfDay time.Time, statuses []domain.WorkItemStatus) (domain.WorkItemStatus, bool) {
	var latest *domain.StatusChange
	for i := range item.StatusHistory {
		change := &item.StatusHistory[i]
		if change.Date.Before(endOfDay) && (latest == nil || change.Date.After(latest.Date)) {
			latest = change
		}
	}
	if latest != nil {
		return latest.Status, true
	}

	if !item.CreatedAt.Before(endOfDay) {
		return "", false
	}
	if item.CompletedAt != nil && item.CompletedAt.Before(endOfDay) {
		return domain.StatusDone, true
	}
	if item.Status == "" {
		return statuses[0], true
	}
	return item.Status, true
}

// daySnapshot holds one day's per-status counts: raw is items exactly in
// each status, cumulative is items at or past each status.
type daySnapshot struct {
	day        time.Time
	raw        []int
	cumulative []int
}

func cfdMetadata(items []domain.WorkItem, statuses []domain.WorkItemStatus, snapshots []daySnapshot, rangeEnd time.Time) map[string]any {
	metadata := map[string]any{}
	if len(snapshots) == 0 {
		return metadata
	}

	latest := snapshots[len(snapshots)-1]
	latestCounts := make(map[string]int, len(statuses))
	for i, s := range statuses {
		latestCounts[labelFor(s)] = latest.raw[i]
	}
	metadata["latest_counts"] = latestCounts

	// Average WIP: in-flight statuses only, i.e. everything between the
	// first and last vocabulary entries.
	var wipSum int
	for _, snap := range snapshots {
		for i := 1; i < len(statuses)-1; i++ {
			wipSum += snap.raw[i]
		}
	}
	avgWIP := float64(wipSum) / float64(len(snapshots))
	metadata["average_wip"] = round2(avgWIP)

	// Average cycle time of items completed by range end.
	var cycleDays []float64
	rangeEndOfDay := normalize.Day(rangeEnd).AddDate(0, 0, 1)
	for _, item := range items {
		if item.CompletedAt == nil || !item.CompletedAt.Before(rangeEndOfDay) {
			continue
		}
		days := item.CompletedAt.Sub(item.CreatedAt).Hours() / 24
		if days >= 0 {
			cycleDays = append(cycleDays, days)
		}
	}
	metadata["average_cycle_time_days"] = round2(mean(cycleDays))

	var bottlenecks []string
	for i := 1; i < len(statuses)-1; i++ {
		if avgWIP > 0 && float64(latest.raw[i]) > 0.5*avgWIP {
			bottlenecks = append(bottlenecks, labelFor(statuses[i]))
		}
	}
	if bottlenecks == nil {
		bottlenecks = []string{}
	}
	metadata["bottlenecks"] = bottlenecks

	return metadata
}

func labelFor(s domain.WorkItemStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}
