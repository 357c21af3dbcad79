// Package domain defines the canonical analytics entities shared by every
// calculator: work items, sprints, chart responses, and sprint reports.
package domain

import "time"

// WorkItemType classifies a work item.
type WorkItemType string

const (
	TypeStory   WorkItemType = "story"
	TypeBug     WorkItemType = "bug"
	TypeTask    WorkItemType = "task"
	TypeEpic    WorkItemType = "epic"
	TypeSubtask WorkItemType = "subtask"
)

// WorkItemStatus is the canonical workflow status vocabulary.
type WorkItemStatus string

const (
	StatusTodo       WorkItemStatus = "todo"
	StatusInProgress WorkItemStatus = "in_progress"
	StatusInReview   WorkItemStatus = "in_review"
	StatusDone       WorkItemStatus = "done"
	StatusBlocked    WorkItemStatus = "blocked"
)

// WorkItemPriority ranks a work item's urgency.
type WorkItemPriority string

const (
	PriorityCritical WorkItemPriority = "critical"
	PriorityHigh     WorkItemPriority = "high"
	PriorityMedium   WorkItemPriority = "medium"
	PriorityLow      WorkItemPriority = "low"
)

// StatusChange records one entry of a work item's status history.
type StatusChange struct {
	Date   time.Time      `json:"date"`
	Status WorkItemStatus `json:"status"`
}

// WorkItem is the canonical work item consumed by all calculators.
// Optional numeric fields are pointers so that "absent" is distinguishable
// from zero; every calculator defines its own behavior for absent values.
type WorkItem struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Type           WorkItemType     `json:"type"`
	Status         WorkItemStatus   `json:"status"`
	Priority       WorkItemPriority `json:"priority"`
	StoryPoints    *float64         `json:"story_points,omitempty"`
	EstimatedHours *float64         `json:"estimated_hours,omitempty"`
	ActualHours    *float64         `json:"actual_hours,omitempty"`
	AssignedTo     string           `json:"assigned_to,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
	StatusHistory  []StatusChange   `json:"status_history,omitempty"`
}

// Points returns the item's story points, or 0 when absent.
func (w WorkItem) Points() float64 {
	if w.StoryPoints == nil {
		return 0
	}
	return *w.StoryPoints
}

// Hours returns the item's estimated hours, or 0 when absent.
func (w WorkItem) Hours() float64 {
	if w.EstimatedHours == nil {
		return 0
	}
	return *w.EstimatedHours
}

// SpentHours returns the item's actual hours, falling back to the estimate
// when no actuals were recorded.
func (w WorkItem) SpentHours() float64 {
	if w.ActualHours != nil {
		return *w.ActualHours
	}
	return w.Hours()
}

// IsDone reports whether the item reached the done status.
func (w WorkItem) IsDone() bool {
	return w.Status == StatusDone
}

// CompletionDate returns the item's completion date. Items marked done
// without a completed_at timestamp fall back to the given date, so callers
// supply a policy default (burndown uses the sprint end date).
func (w WorkItem) CompletionDate(fallback time.Time) (time.Time, bool) {
	if w.CompletedAt != nil {
		return *w.CompletedAt, true
	}
	if w.Status == StatusDone {
		return fallback, true
	}
	return time.Time{}, false
}
