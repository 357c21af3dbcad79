package normalize

import (
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/workflow"
)

// SprintPayload is the collaborator input contract for a sprint-scoped
// request. Any field may be absent; absence never raises.
type SprintPayload struct {
	Sprint          map[string]any   `json:"sprint"`
	Tasks           []map[string]any `json:"tasks"`
	AddedItems      []map[string]any `json:"added_items,omitempty"`
	RemovedItems    []map[string]any `json:"removed_items,omitempty"`
	TeamMembers     []string         `json:"team_members,omitempty"`
	PlannedPoints   *float64         `json:"planned_points,omitempty"`
	CompletedPoints *float64         `json:"completed_points,omitempty"`
}

// Stats records what happened during a batch normalization. Dropped items
// are counted and logged, never raised.
type Stats struct {
	Normalized      int
	Dropped         int
	SuspectHistory  int
	DroppedReasons  []string
}

// Normalizer translates raw provider payloads into canonical entities.
type Normalizer struct {
	logger *slog.Logger
}

// New creates a Normalizer. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// WorkItem normalizes one raw item. Items missing an id or a parsable
// created_at are rejected with a MalformedItemError; everything else
// degrades to safe defaults.
func (n *Normalizer) WorkItem(raw map[string]any) (domain.WorkItem, error) {
	id := stringField(raw, "id", "key")
	if id == "" {
		return domain.WorkItem{}, &domain.MalformedItemError{Reason: "missing id"}
	}

	createdRaw, ok := firstField(raw, "created_at", "created")
	if !ok {
		return domain.WorkItem{}, &domain.MalformedItemError{ItemID: id, Reason: "missing created_at"}
	}
	createdAt, err := ParseTime(createdRaw)
	if err != nil {
		return domain.WorkItem{}, &domain.MalformedItemError{ItemID: id, Reason: fmt.Sprintf("bad created_at: %v", err)}
	}

	item := domain.WorkItem{
		ID:             id,
		Title:          stringField(raw, "title", "summary", "name"),
		Type:           Type(stringField(raw, "type", "issue_type")),
		Status:         Status(stringField(raw, "status", "state")),
		Priority:       Priority(stringField(raw, "priority")),
		StoryPoints:    floatField(raw, "story_points", "points", "estimate"),
		EstimatedHours: floatField(raw, "estimated_hours"),
		ActualHours:    floatField(raw, "actual_hours"),
		AssignedTo:     stringField(raw, "assigned_to", "assignee"),
		CreatedAt:      createdAt,
	}

	if completedRaw, ok := firstField(raw, "completed_at", "resolved_at", "done_at"); ok {
		if completedAt, err := ParseTime(completedRaw); err == nil {
			item.CompletedAt = &completedAt
		} else {
			n.logger.Warn("dropping unparsable completed_at",
				"item_id", id,
				"error", err)
		}
	}

	item.StatusHistory = n.statusHistory(id, raw)

	return item, nil
}

// Items normalizes a batch. A parse failure for a single item never aborts
// the batch: the offending item is dropped and the event recorded.
func (n *Normalizer) Items(raw []map[string]any) ([]domain.WorkItem, *Stats) {
	stats := &Stats{}
	items := make([]domain.WorkItem, 0, len(raw))

	for _, r := range raw {
		item, err := n.WorkItem(r)
		if err != nil {
			stats.Dropped++
			stats.DroppedReasons = append(stats.DroppedReasons, err.Error())
			n.logger.Warn("dropping malformed work item", "error", err)
			continue
		}

		if len(item.StatusHistory) > 0 {
			initial := domain.StatusTodo
			suspect, err := workflow.ValidateHistory(item.ID, initial, item.StatusHistory)
			if err == nil && len(suspect) > 0 {
				stats.SuspectHistory += len(suspect)
				n.logger.Debug("status history contains lifecycle-skipping entries",
					"item_id", item.ID,
					"entries", len(suspect))
			}
		}

		items = append(items, item)
		stats.Normalized++
	}

	return items, stats
}

// Sprint normalizes a sprint payload into SprintData. Missing sprint
// fields degrade to zero values; planned/completed points fall back to
// sums over the committed scope when the provider did not precompute them.
func (n *Normalizer) Sprint(payload *SprintPayload) (*domain.SprintData, *Stats) {
	if payload == nil {
		return &domain.SprintData{Status: domain.SprintPlanning}, &Stats{}
	}

	items, stats := n.Items(payload.Tasks)
	added, addedStats := n.Items(payload.AddedItems)
	removed, removedStats := n.Items(payload.RemovedItems)
	stats.merge(addedStats)
	stats.merge(removedStats)

	sprint := &domain.SprintData{
		ID:           stringField(payload.Sprint, "id"),
		Name:         stringField(payload.Sprint, "name"),
		ProjectID:    stringField(payload.Sprint, "project_id", "project"),
		Status:       SprintStatus(stringField(payload.Sprint, "status", "state")),
		WorkItems:    items,
		AddedItems:   added,
		RemovedItems: removed,
		TeamMembers:  payload.TeamMembers,
	}

	if raw, ok := firstField(payload.Sprint, "start_date", "start"); ok {
		if t, err := ParseTime(raw); err == nil {
			sprint.StartDate = t
		}
	}
	if raw, ok := firstField(payload.Sprint, "end_date", "end"); ok {
		if t, err := ParseTime(raw); err == nil {
			sprint.EndDate = t
		}
	}
	if sprint.EndDate.Before(sprint.StartDate) {
		sprint.EndDate = sprint.StartDate
	}

	if payload.PlannedPoints != nil {
		sprint.PlannedPoints = *payload.PlannedPoints
	} else {
		for _, item := range items {
			sprint.PlannedPoints += item.Points()
		}
	}
	if payload.CompletedPoints != nil {
		sprint.CompletedPoints = *payload.CompletedPoints
	} else {
		for _, item := range items {
			if item.IsDone() {
				sprint.CompletedPoints += item.Points()
			}
		}
	}

	if f := floatField(payload.Sprint, "capacity_hours", "capacity"); f != nil {
		sprint.CapacityHours = f
	}

	return sprint, stats
}

// statusHistory extracts explicit status-change entries when present.
// Malformed entries are skipped individually.
func (n *Normalizer) statusHistory(itemID string, raw map[string]any) []domain.StatusChange {
	rawHistory, ok := raw["status_history"].([]any)
	if !ok {
		return nil
	}

	history := make([]domain.StatusChange, 0, len(rawHistory))
	for _, entry := range rawHistory {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		dateRaw, ok := firstField(m, "date", "at", "timestamp")
		if !ok {
			continue
		}
		date, err := ParseTime(dateRaw)
		if err != nil {
			n.logger.Debug("skipping history entry with bad date",
				"item_id", itemID,
				"error", err)
			continue
		}
		history = append(history, domain.StatusChange{
			Date:   date,
			Status: Status(stringField(m, "status", "to")),
		})
	}
	if len(history) == 0 {
		return nil
	}
	return history
}

func (s *Stats) merge(other *Stats) {
	s.Normalized += other.Normalized
	s.Dropped += other.Dropped
	s.SuspectHistory += other.SuspectHistory
	s.DroppedReasons = append(s.DroppedReasons, other.DroppedReasons...)
}

// stringField returns the first non-empty string among the given keys.
func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// firstField returns the first present, non-nil value among the given keys.
func firstField(m map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// floatField returns the first numeric value among the given keys, nil
// when none is present.
func floatField(m map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case int64:
			f := float64(v)
			return &f
		}
	}
	return nil
}
