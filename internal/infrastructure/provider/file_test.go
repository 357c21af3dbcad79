package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writePayload(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestFileProvider_FetchSprint(t *testing.T) {
	dir := t.TempDir()
	writePayload(t, dir, "sprint-s1.json", `{
		"sprint": {"id": "s1", "name": "Sprint 1", "start_date": "2026-03-01", "end_date": "2026-03-14"},
		"tasks": [{"id": "PRJ-1", "status": "Done", "created_at": "2026-03-01"}],
		"team_members": ["ada"]
	}`)

	p := NewFileProvider(dir, nil)
	payload, err := p.FetchSprint(context.Background(), "s1")
	if err != nil {
		t.Fatalf("FetchSprint failed: %v", err)
	}
	if payload.Sprint["id"] != "s1" {
		t.Errorf("Expected sprint s1, got %v", payload.Sprint["id"])
	}
	if len(payload.Tasks) != 1 {
		t.Errorf("Expected 1 task, got %d", len(payload.Tasks))
	}
}

func TestFileProvider_FetchSprint_Missing(t *testing.T) {
	p := NewFileProvider(t.TempDir(), nil)
	if _, err := p.FetchSprint(context.Background(), "ghost"); err == nil {
		t.Fatal("expected an error for a missing payload file")
	}
}

func TestFileProvider_FetchSprint_ContractViolation(t *testing.T) {
	dir := t.TempDir()
	writePayload(t, dir, "sprint-bad.json", `{"tasks": "not an array"}`)

	p := NewFileProvider(dir, nil)
	if _, err := p.FetchSprint(context.Background(), "bad"); err == nil {
		t.Fatal("expected a contract violation to fail the fetch")
	}
}

func TestFileProvider_FetchSprintHistory_Limit(t *testing.T) {
	dir := t.TempDir()
	writePayload(t, dir, "history-web.json", `[
		{"id": "s1", "name": "Sprint 1", "committed": 20, "completed": 18},
		{"id": "s2", "name": "Sprint 2", "committed": 22, "completed": 20},
		{"id": "s3", "name": "Sprint 3", "committed": 25, "completed": 24}
	]`)

	p := NewFileProvider(dir, nil)
	history, err := p.FetchSprintHistory(context.Background(), "web", 2)
	if err != nil {
		t.Fatalf("FetchSprintHistory failed: %v", err)
	}
	// The newest entries survive truncation.
	if len(history) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(history))
	}
	if history[0].ID != "s2" || history[1].ID != "s3" {
		t.Errorf("Expected the newest entries, got %s / %s", history[0].ID, history[1].ID)
	}
}

func TestFileProvider_FetchWorkItems(t *testing.T) {
	dir := t.TempDir()
	writePayload(t, dir, "items-web.json", `[
		{"id": "W-1", "status": "Done", "created_at": "2026-03-01"},
		{"id": "W-2", "status": "To Do", "created_at": "2026-03-02"}
	]`)

	p := NewFileProvider(dir, nil)
	items, err := p.FetchWorkItems(context.Background(), "web")
	if err != nil {
		t.Fatalf("FetchWorkItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("Expected 2 items, got %d", len(items))
	}
}

func TestFileProvider_RejectsPathTraversal(t *testing.T) {
	p := NewFileProvider(t.TempDir(), nil)
	if _, err := p.FetchSprint(context.Background(), "../../../etc/passwd"); err == nil {
		t.Fatal("expected a traversal attempt to be rejected")
	}
}

func TestFileProvider_HonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewFileProvider(t.TempDir(), nil)
	if _, err := p.FetchWorkItems(ctx, "web"); err == nil {
		t.Fatal("expected a cancelled context to fail the fetch")
	}
}
