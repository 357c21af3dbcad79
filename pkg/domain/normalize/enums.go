// Package normalize maps heterogeneous upstream field values into the
// canonical domain model. It is the only place external vocabulary is
// translated: every status/type/priority string and every date format an
// upstream system emits passes through here exactly once.
package normalize

import (
	"strings"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
)

// Status maps a free-text status string onto the canonical vocabulary.
// Matching is substring-based and case-insensitive; unknown values
// degrade to todo.
func Status(raw string) domain.WorkItemStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return domain.StatusTodo
	case strings.Contains(s, "block"):
		return domain.StatusBlocked
	case strings.Contains(s, "review"), strings.Contains(s, "qa"):
		return domain.StatusInReview
	case strings.Contains(s, "done"), strings.Contains(s, "closed"),
		strings.Contains(s, "complete"), strings.Contains(s, "resolved"):
		return domain.StatusDone
	case strings.Contains(s, "progress"), strings.Contains(s, "doing"),
		strings.Contains(s, "develop"):
		return domain.StatusInProgress
	default:
		return domain.StatusTodo
	}
}

// Type maps a free-text item type onto the canonical vocabulary. Unknown
// values degrade to task.
func Type(raw string) domain.WorkItemType {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	// "sub" before "task": "subtask" and "sub-task" both contain "task".
	case strings.Contains(s, "sub"):
		return domain.TypeSubtask
	case strings.Contains(s, "story"):
		return domain.TypeStory
	case strings.Contains(s, "bug"), strings.Contains(s, "defect"):
		return domain.TypeBug
	case strings.Contains(s, "epic"):
		return domain.TypeEpic
	default:
		return domain.TypeTask
	}
}

// Priority maps a free-text priority onto the canonical vocabulary.
// Unknown values degrade to medium.
func Priority(raw string) domain.WorkItemPriority {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	// "highest" before "high": the former contains the latter.
	case strings.Contains(s, "critical"), strings.Contains(s, "urgent"),
		strings.Contains(s, "highest"), strings.Contains(s, "blocker"):
		return domain.PriorityCritical
	case strings.Contains(s, "high"), strings.Contains(s, "major"):
		return domain.PriorityHigh
	case strings.Contains(s, "low"), strings.Contains(s, "minor"),
		strings.Contains(s, "trivial"):
		return domain.PriorityLow
	default:
		return domain.PriorityMedium
	}
}

// SprintStatus maps a free-text sprint status onto the canonical
// vocabulary. Unknown values degrade to planning.
func SprintStatus(raw string) domain.SprintStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "cancel"):
		return domain.SprintCancelled
	case strings.Contains(s, "active"), strings.Contains(s, "open"),
		strings.Contains(s, "started"), strings.Contains(s, "current"):
		return domain.SprintActive
	case strings.Contains(s, "complete"), strings.Contains(s, "closed"),
		strings.Contains(s, "done"):
		return domain.SprintCompleted
	default:
		return domain.SprintPlanning
	}
}
