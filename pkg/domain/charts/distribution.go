package charts

import (
	"sort"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
)

// distributionGroup accumulates per-group totals for one dimension value.
type distributionGroup struct {
	name       string
	count      int
	points     float64
	hours      float64
	completed  int
	inProgress int
	todo       int
}

var pieColors = []string{"#3b82f6", "#22c55e", "#eab308", "#ef4444", "#8b5cf6", "#14b8a6", "#f97316", "#94a3b8"}

// WorkDistribution groups items along one dimension (assignee, priority,
// type, or status) into a pie-style series, one data point per group,
// sorted by item count descending. An unknown dimension is the caller's
// mistake and fails with an InvalidArgument error rather than defaulting.
func WorkDistribution(items []domain.WorkItem, dimension domain.Dimension) (*domain.ChartResponse, error) {
	keyOf, err := dimensionKey(dimension)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return domain.EmptyChartResponse(domain.ChartWorkDistribution, "Work Distribution", "no work items"), nil
	}

	groups := make(map[string]*distributionGroup)
	var totalPoints, totalHours float64
	for _, item := range items {
		key := keyOf(item)
		group, ok := groups[key]
		if !ok {
			group = &distributionGroup{name: key}
			groups[key] = group
		}

		group.count++
		group.points += item.Points()
		group.hours += item.Hours()
		totalPoints += item.Points()
		totalHours += item.Hours()

		switch item.Status {
		case domain.StatusDone:
			group.completed++
		case domain.StatusInProgress, domain.StatusInReview:
			group.inProgress++
		default:
			group.todo++
		}
	}

	ordered := make([]*distributionGroup, 0, len(groups))
	for _, group := range groups {
		ordered = append(ordered, group)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].name < ordered[j].name
	})

	series := domain.ChartSeries{
		Name: "Distribution by " + string(dimension),
		Type: "pie",
	}
	for i, group := range ordered {
		series.Data = append(series.Data, domain.ChartDataPoint{
			Label: group.name,
			Value: float64(group.count),
			Metadata: map[string]any{
				"color":          pieColors[i%len(pieColors)],
				"story_points":   round2(group.points),
				"hours":          round2(group.hours),
				"completed":      group.completed,
				"in_progress":    group.inProgress,
				"todo":           group.todo,
				"percent_count":  round2(float64(group.count) / float64(len(items)) * 100),
				"percent_points": percentOf(group.points, totalPoints),
				"percent_hours":  percentOf(group.hours, totalHours),
			},
		})
	}

	metadata := map[string]any{
		"dimension":    string(dimension),
		"total_items":  len(items),
		"total_points": round2(totalPoints),
		"total_hours":  round2(totalHours),
		"groups":       len(ordered),
	}

	return domain.NewChartResponse(domain.ChartWorkDistribution, "Work Distribution", []domain.ChartSeries{series}, metadata), nil
}

// dimensionKey returns the grouping key extractor for a dimension. Missing
// values bucket under "Unassigned" for assignees and "Unknown" elsewhere.
func dimensionKey(dimension domain.Dimension) (func(domain.WorkItem) string, error) {
	switch dimension {
	case domain.DimensionAssignee:
		return func(item domain.WorkItem) string {
			if item.AssignedTo == "" {
				return "Unassigned"
			}
			return item.AssignedTo
		}, nil
	case domain.DimensionPriority:
		return func(item domain.WorkItem) string {
			return orUnknown(string(item.Priority))
		}, nil
	case domain.DimensionType:
		return func(item domain.WorkItem) string {
			return orUnknown(string(item.Type))
		}, nil
	case domain.DimensionStatus:
		return func(item domain.WorkItem) string {
			return orUnknown(string(item.Status))
		}, nil
	default:
		return nil, domain.NewInvalidArgument("dimension", string(dimension))
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func percentOf(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return round2(part / total * 100)
}
