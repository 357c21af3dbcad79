package charts

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
)

// Threshold rules for sprint report highlights and concerns.
const (
	highCompletionRate = 0.90
	lowCompletionRate  = 0.70
	lowCapacityUsage   = 0.60
	highCapacityUsage  = 1.10
	lowScopeStability  = 0.80
)

// SprintReport aggregates one sprint into a narrative-ready summary:
// duration, commitment, scope-change stability, work breakdown, team
// performance, and rule-based highlights and concerns.
func SprintReport(sprint *domain.SprintData) *domain.SprintReport {
	if sprint == nil {
		return &domain.SprintReport{
			WorkBreakdown: map[string]int{},
			Highlights:    []string{},
			Concerns:      []string{},
			GeneratedAt:   time.Now().UTC(),
		}
	}

	report := &domain.SprintReport{
		SprintID:   sprint.ID,
		SprintName: sprint.Name,
		Duration: domain.SprintDuration{
			Start: sprint.StartDate,
			End:   sprint.EndDate,
			Days:  sprint.Days(),
		},
		WorkBreakdown: map[string]int{},
		Highlights:    []string{},
		Concerns:      []string{},
		GeneratedAt:   time.Now().UTC(),
	}

	var completedItems, blockedItems, inProgressItems int
	var completedHours float64
	for _, item := range sprint.WorkItems {
		report.WorkBreakdown[string(item.Type)]++
		switch item.Status {
		case domain.StatusDone:
			completedItems++
			completedHours += item.SpentHours()
		case domain.StatusBlocked:
			blockedItems++
		case domain.StatusInProgress, domain.StatusInReview:
			inProgressItems++
		}
	}

	completionRate := 0.0
	if sprint.PlannedPoints > 0 {
		completionRate = sprint.CompletedPoints / sprint.PlannedPoints
	}
	report.Commitment = domain.SprintCommitment{
		PlannedPoints:   sprint.PlannedPoints,
		CompletedPoints: sprint.CompletedPoints,
		CompletionRate:  round2(completionRate),
		TotalItems:      len(sprint.WorkItems),
		CompletedItems:  completedItems,
	}

	report.ScopeChanges = domain.ScopeChanges{
		Added:     len(sprint.AddedItems),
		Removed:   len(sprint.RemovedItems),
		Net:       len(sprint.AddedItems) - len(sprint.RemovedItems),
		Stability: scopeStability(sprint),
	}

	capacityUsed := 0.0
	capacityHours := 0.0
	if sprint.CapacityHours != nil && *sprint.CapacityHours > 0 {
		capacityHours = *sprint.CapacityHours
		capacityUsed = completedHours / capacityHours
	}
	report.TeamPerformance = domain.TeamPerformance{
		Velocity:        sprint.CompletedPoints,
		CapacityHours:   capacityHours,
		CapacityUsed:    round2(capacityUsed),
		TeamSize:        len(sprint.TeamMembers),
		BlockedItems:    blockedItems,
		InProgressItems: inProgressItems,
	}

	// Rule-based highlights and concerns.
	if sprint.PlannedPoints > 0 {
		switch {
		case completionRate >= highCompletionRate:
			report.Highlights = append(report.Highlights,
				fmt.Sprintf("Completed %.0f%% of planned points", completionRate*100))
		case completionRate < lowCompletionRate:
			report.Concerns = append(report.Concerns,
				fmt.Sprintf("Only %.0f%% of planned points completed", completionRate*100))
		}
	}
	if capacityHours > 0 && (capacityUsed < lowCapacityUsage || capacityUsed > highCapacityUsage) {
		report.Concerns = append(report.Concerns,
			fmt.Sprintf("Capacity utilization at %.0f%% is outside the healthy range", capacityUsed*100))
	}
	if blockedItems > 0 {
		report.Concerns = append(report.Concerns,
			fmt.Sprintf("%d item(s) blocked at sprint end", blockedItems))
	}
	if report.ScopeChanges.Stability < lowScopeStability {
		report.Concerns = append(report.Concerns,
			fmt.Sprintf("Scope stability at %.0f%% indicates heavy mid-sprint churn", report.ScopeChanges.Stability*100))
	}
	if len(sprint.AddedItems) == 0 && len(sprint.RemovedItems) == 0 && len(sprint.WorkItems) > 0 {
		report.Highlights = append(report.Highlights, "No mid-sprint scope changes")
	}

	return report
}

// scopeStability is 1 - |added-removed|/planned clamped to [0,1], and 1.0
// when nothing was planned.
func scopeStability(sprint *domain.SprintData) float64 {
	if sprint.PlannedPoints <= 0 {
		return 1.0
	}
	churn := math.Abs(float64(len(sprint.AddedItems) - len(sprint.RemovedItems)))
	stability := 1 - churn/sprint.PlannedPoints
	if stability < 0 {
		return 0
	}
	if stability > 1 {
		return 1
	}
	return round2(stability)
}

// SprintReportChart wraps a report into the ChartResponse contract so the
// report travels the same pipe as every other chart. The work breakdown
// becomes the single series; the rest of the report rides in metadata.
func SprintReportChart(report *domain.SprintReport) *domain.ChartResponse {
	series := domain.ChartSeries{Name: "Work Breakdown", Type: "pie"}
	for itemType, count := range report.WorkBreakdown {
		series.Data = append(series.Data, domain.ChartDataPoint{
			Label: itemType,
			Value: float64(count),
		})
	}
	// Map iteration order is random; sort for idempotent output.
	sort.Slice(series.Data, func(i, j int) bool {
		return series.Data[i].Label < series.Data[j].Label
	})

	metadata := map[string]any{
		"sprint_id":        report.SprintID,
		"sprint_name":      report.SprintName,
		"duration":         report.Duration,
		"commitment":       report.Commitment,
		"scope_changes":    report.ScopeChanges,
		"team_performance": report.TeamPerformance,
		"highlights":       report.Highlights,
		"concerns":         report.Concerns,
	}

	title := "Sprint Report"
	if report.SprintName != "" {
		title = fmt.Sprintf("Sprint Report: %s", report.SprintName)
	}
	return domain.NewChartResponse(domain.ChartSprintReport, title, []domain.ChartSeries{series}, metadata)
}
