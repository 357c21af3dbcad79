package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
)

func rawItem(id string) map[string]any {
	return map[string]any{
		"id":         id,
		"title":      "Fix the flux capacitor",
		"type":       "Story",
		"status":     "In Progress",
		"priority":   "High",
		"created_at": "2026-03-01T09:00:00Z",
	}
}

func TestNormalizer_WorkItem(t *testing.T) {
	n := New(nil)

	raw := rawItem("PRJ-1")
	raw["story_points"] = float64(5)
	raw["assignee"] = "ada"
	raw["resolved_at"] = "2026-03-10T17:00:00Z"

	item, err := n.WorkItem(raw)
	if err != nil {
		t.Fatalf("WorkItem failed: %v", err)
	}

	if item.ID != "PRJ-1" {
		t.Errorf("Expected id PRJ-1, got %q", item.ID)
	}
	if item.Type != domain.TypeStory || item.Status != domain.StatusInProgress || item.Priority != domain.PriorityHigh {
		t.Errorf("unexpected enums: %q %q %q", item.Type, item.Status, item.Priority)
	}
	if item.Points() != 5 {
		t.Errorf("Expected 5 points, got %f", item.Points())
	}
	if item.AssignedTo != "ada" {
		t.Errorf("Expected assignee ada, got %q", item.AssignedTo)
	}
	if item.CompletedAt == nil || !item.CompletedAt.Equal(time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected resolved_at to populate CompletedAt, got %v", item.CompletedAt)
	}
}

func TestNormalizer_WorkItem_FieldAliases(t *testing.T) {
	n := New(nil)

	item, err := n.WorkItem(map[string]any{
		"key":        "PRJ-2",
		"summary":    "Aliased fields",
		"issue_type": "Bug",
		"state":      "Closed",
		"estimate":   float64(3),
		"created":    "2026-03-01",
	})
	if err != nil {
		t.Fatalf("WorkItem failed: %v", err)
	}

	if item.ID != "PRJ-2" || item.Title != "Aliased fields" {
		t.Errorf("aliases not honored: %q / %q", item.ID, item.Title)
	}
	if item.Type != domain.TypeBug || item.Status != domain.StatusDone {
		t.Errorf("unexpected enums: %q / %q", item.Type, item.Status)
	}
	if item.Points() != 3 {
		t.Errorf("Expected estimate alias to map to points, got %f", item.Points())
	}
}

func TestNormalizer_WorkItem_MissingID(t *testing.T) {
	n := New(nil)
	_, err := n.WorkItem(map[string]any{"created_at": "2026-03-01"})
	if err == nil {
		t.Fatal("expected an error for a missing id")
	}
	var malformed *domain.MalformedItemError
	if !errors.As(err, &malformed) {
		t.Errorf("expected a MalformedItemError, got %v", err)
	}
}

func TestNormalizer_WorkItem_BadCreatedAt(t *testing.T) {
	n := New(nil)

	if _, err := n.WorkItem(map[string]any{"id": "X-1"}); err == nil {
		t.Error("expected an error for a missing created_at")
	}
	if _, err := n.WorkItem(map[string]any{"id": "X-1", "created_at": "soon"}); err == nil {
		t.Error("expected an error for an unparsable created_at")
	}
}

func TestNormalizer_WorkItem_UnparsableCompletedAtIsDropped(t *testing.T) {
	n := New(nil)

	raw := rawItem("PRJ-3")
	raw["completed_at"] = "someday"
	item, err := n.WorkItem(raw)
	if err != nil {
		t.Fatalf("WorkItem failed: %v", err)
	}
	if item.CompletedAt != nil {
		t.Errorf("Expected nil CompletedAt, got %v", item.CompletedAt)
	}
}

func TestNormalizer_WorkItem_StatusHistory(t *testing.T) {
	n := New(nil)

	raw := rawItem("PRJ-4")
	raw["status_history"] = []any{
		map[string]any{"date": "2026-03-02", "status": "In Progress"},
		map[string]any{"at": "2026-03-05", "to": "Done"},
		map[string]any{"status": "dropped, no date"},
		"not even a map",
	}

	item, err := n.WorkItem(raw)
	if err != nil {
		t.Fatalf("WorkItem failed: %v", err)
	}
	if len(item.StatusHistory) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(item.StatusHistory))
	}
	if item.StatusHistory[0].Status != domain.StatusInProgress {
		t.Errorf("Expected in_progress, got %q", item.StatusHistory[0].Status)
	}
	if item.StatusHistory[1].Status != domain.StatusDone {
		t.Errorf("Expected done, got %q", item.StatusHistory[1].Status)
	}
}

func TestNormalizer_Items_DropsBadEntries(t *testing.T) {
	n := New(nil)

	items, stats := n.Items([]map[string]any{
		rawItem("PRJ-1"),
		{"title": "no id"},
		rawItem("PRJ-2"),
		{"id": "PRJ-3", "created_at": "not a date"},
	})

	if len(items) != 2 {
		t.Errorf("Expected 2 surviving items, got %d", len(items))
	}
	if stats.Normalized != 2 || stats.Dropped != 2 {
		t.Errorf("Expected 2 normalized / 2 dropped, got %d / %d", stats.Normalized, stats.Dropped)
	}
	if len(stats.DroppedReasons) != 2 {
		t.Errorf("Expected 2 drop reasons, got %v", stats.DroppedReasons)
	}
}

func TestNormalizer_Sprint(t *testing.T) {
	n := New(nil)

	done := rawItem("PRJ-1")
	done["status"] = "Done"
	done["story_points"] = float64(5)
	open := rawItem("PRJ-2")
	open["story_points"] = float64(3)

	sprint, stats := n.Sprint(&SprintPayload{
		Sprint: map[string]any{
			"id":             "s-1",
			"name":           "Sprint 1",
			"project":        "web",
			"state":          "active",
			"start":          "2026-03-01",
			"end":            "2026-03-14",
			"capacity_hours": float64(120),
		},
		Tasks:       []map[string]any{done, open},
		TeamMembers: []string{"ada", "grace"},
	})

	if stats.Dropped != 0 {
		t.Fatalf("unexpected drops: %v", stats.DroppedReasons)
	}
	if sprint.ID != "s-1" || sprint.ProjectID != "web" {
		t.Errorf("unexpected identity: %q / %q", sprint.ID, sprint.ProjectID)
	}
	if sprint.Status != domain.SprintActive {
		t.Errorf("Expected active, got %q", sprint.Status)
	}
	if sprint.Days() != 13 {
		t.Errorf("Expected 13 days, got %d", sprint.Days())
	}
	// Points fall back to sums over the committed scope.
	if sprint.PlannedPoints != 8 {
		t.Errorf("Expected 8 planned points, got %f", sprint.PlannedPoints)
	}
	if sprint.CompletedPoints != 5 {
		t.Errorf("Expected 5 completed points, got %f", sprint.CompletedPoints)
	}
	if sprint.CapacityHours == nil || *sprint.CapacityHours != 120 {
		t.Errorf("Expected capacity 120, got %v", sprint.CapacityHours)
	}
}

func TestNormalizer_Sprint_ExplicitPointsWin(t *testing.T) {
	n := New(nil)
	planned := 40.0
	completed := 25.0

	sprint, _ := n.Sprint(&SprintPayload{
		Sprint:          map[string]any{"id": "s-2"},
		Tasks:           []map[string]any{rawItem("PRJ-1")},
		PlannedPoints:   &planned,
		CompletedPoints: &completed,
	})

	if sprint.PlannedPoints != 40 || sprint.CompletedPoints != 25 {
		t.Errorf("Expected explicit 40/25, got %f/%f", sprint.PlannedPoints, sprint.CompletedPoints)
	}
}

func TestNormalizer_Sprint_EndBeforeStartClamps(t *testing.T) {
	n := New(nil)

	sprint, _ := n.Sprint(&SprintPayload{
		Sprint: map[string]any{
			"id":         "s-3",
			"start_date": "2026-03-14",
			"end_date":   "2026-03-01",
		},
	})
	if sprint.EndDate.Before(sprint.StartDate) {
		t.Errorf("Expected end clamped to start, got %v < %v", sprint.EndDate, sprint.StartDate)
	}
}

func TestNormalizer_Sprint_NilPayload(t *testing.T) {
	n := New(nil)
	sprint, stats := n.Sprint(nil)
	if sprint == nil {
		t.Fatal("expected a sprint for nil payload")
	}
	if sprint.Status != domain.SprintPlanning {
		t.Errorf("Expected planning status, got %q", sprint.Status)
	}
	if stats.Normalized != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
}
