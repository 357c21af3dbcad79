package domain

import "time"

// SprintStatus tracks the lifecycle of a sprint.
type SprintStatus string

const (
	SprintPlanning  SprintStatus = "planning"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
	SprintCancelled SprintStatus = "cancelled"
)

// SprintData is one sprint's committed scope plus mid-sprint scope changes.
// AddedItems and RemovedItems carry their own CreatedAt marking when the
// scope change occurred.
type SprintData struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	ProjectID       string       `json:"project_id"`
	StartDate       time.Time    `json:"start_date"`
	EndDate         time.Time    `json:"end_date"`
	Status          SprintStatus `json:"status"`
	PlannedPoints   float64      `json:"planned_points"`
	CompletedPoints float64      `json:"completed_points"`
	CapacityHours   *float64     `json:"capacity_hours,omitempty"`
	WorkItems       []WorkItem   `json:"work_items"`
	AddedItems      []WorkItem   `json:"added_items,omitempty"`
	RemovedItems    []WorkItem   `json:"removed_items,omitempty"`
	TeamMembers     []string     `json:"team_members,omitempty"`
}

// Days returns the number of calendar days the sprint spans, inclusive of
// both endpoints. Zero-length sprints count as one day.
func (s SprintData) Days() int {
	days := int(s.EndDate.Sub(s.StartDate).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// SprintSummary is one sprint's committed/completed pair as reported by a
// provider, ordered oldest first when returned in a history.
type SprintSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	EndDate   time.Time `json:"end_date"`
	Committed float64   `json:"committed"`
	Completed float64   `json:"completed"`
}
