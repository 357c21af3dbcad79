package charts

import (
	"math"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
)

// Trend classification values for velocity metadata.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// trendThresholdRatio classifies the least-squares slope against a band of
// +/- 5% of the mean completed value.
const trendThresholdRatio = 0.05

// Velocity produces committed and completed bar series across a sprint
// history, with trend detection and a predictability score.
func Velocity(history []domain.SprintSummary) (*domain.ChartResponse, error) {
	if len(history) == 0 {
		return domain.EmptyChartResponse(domain.ChartVelocity, "Velocity", "no sprint history"), nil
	}

	committed := domain.ChartSeries{Name: "Committed", Type: "bar", Color: "#94a3b8"}
	completed := domain.ChartSeries{Name: "Completed", Type: "bar", Color: "#22c55e"}

	completedValues := make([]float64, 0, len(history))
	rates := make([]float64, 0, len(history))
	var predictabilitySum float64

	for _, sprint := range history {
		completedValues = append(completedValues, sprint.Completed)

		// Per-sprint completion rate; committed of zero contributes zero
		// to predictability to avoid division errors.
		rate := 0.0
		if sprint.Committed > 0 {
			rate = sprint.Completed / sprint.Committed
			predictabilitySum += math.Min(rate, 1.0)
		}
		rates = append(rates, round2(rate*100))

		committed.Data = append(committed.Data, domain.ChartDataPoint{
			Label: sprint.Name,
			Value: sprint.Committed,
		})
		completed.Data = append(completed.Data, domain.ChartDataPoint{
			Label: sprint.Name,
			Value: sprint.Completed,
			Metadata: map[string]any{
				"completion_rate": round2(rate * 100),
			},
		})
	}

	avg := mean(completedValues)
	med := median(completedValues)
	predictability := predictabilitySum / float64(len(history))

	minCompleted, maxCompleted := completedValues[0], completedValues[0]
	for _, v := range completedValues {
		minCompleted = math.Min(minCompleted, v)
		maxCompleted = math.Max(maxCompleted, v)
	}

	metadata := map[string]any{
		"average_velocity":     round2(avg),
		"median_velocity":      round2(med),
		"trend":                classifyTrend(completedValues),
		"predictability_score": round2(predictability),
		"completion_rates":     rates,
		"min_velocity":         round2(minCompleted),
		"max_velocity":         round2(maxCompleted),
		"sprints":              len(history),
	}

	series := []domain.ChartSeries{committed, completed}
	return domain.NewChartResponse(domain.ChartVelocity, "Velocity", series, metadata), nil
}

// classifyTrend runs a least-squares fit of completed points over sprint
// index and buckets the slope into increasing/decreasing/stable against a
// threshold of 5% of the mean.
func classifyTrend(completed []float64) string {
	if len(completed) < 2 {
		return TrendStable
	}
	s := slope(completed)
	threshold := trendThresholdRatio * mean(completed)
	switch {
	case s > threshold:
		return TrendIncreasing
	case s < -threshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}
