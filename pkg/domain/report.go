package domain

import "time"

// SprintDuration describes the calendar span of a sprint.
type SprintDuration struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// SprintCommitment compares planned against completed scope.
type SprintCommitment struct {
	PlannedPoints   float64 `json:"planned_points"`
	CompletedPoints float64 `json:"completed_points"`
	CompletionRate  float64 `json:"completion_rate"`
	TotalItems      int     `json:"total_items"`
	CompletedItems  int     `json:"completed_items"`
}

// ScopeChanges summarizes mid-sprint scope movement. Stability is
// 1 - |added-removed|/planned, clamped to [0,1]; 1.0 when nothing was
// planned.
type ScopeChanges struct {
	Added     int     `json:"added"`
	Removed   int     `json:"removed"`
	Net       int     `json:"net"`
	Stability float64 `json:"stability"`
}

// TeamPerformance captures throughput and capacity usage for one sprint.
type TeamPerformance struct {
	Velocity        float64 `json:"velocity"`
	CapacityHours   float64 `json:"capacity_hours,omitempty"`
	CapacityUsed    float64 `json:"capacity_utilized"`
	TeamSize        int     `json:"team_size"`
	BlockedItems    int     `json:"blocked_items"`
	InProgressItems int     `json:"in_progress_items"`
}

// SprintReport aggregates one sprint into a narrative-ready summary with
// rule-based highlights and concerns.
type SprintReport struct {
	SprintID        string           `json:"sprint_id"`
	SprintName      string           `json:"sprint_name"`
	Duration        SprintDuration   `json:"duration"`
	Commitment      SprintCommitment `json:"commitment"`
	ScopeChanges    ScopeChanges     `json:"scope_changes"`
	WorkBreakdown   map[string]int   `json:"work_breakdown"`
	TeamPerformance TeamPerformance  `json:"team_performance"`
	Highlights      []string         `json:"highlights"`
	Concerns        []string         `json:"concerns"`
	Metadata        map[string]any   `json:"metadata,omitempty"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
