package workflow

import (
	"testing"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
)

func TestNewMachine_RejectsUnknownInitialState(t *testing.T) {
	if _, err := NewMachine("shipped", "X-1"); err == nil {
		t.Fatal("expected an error for an unknown initial state")
	}
}

func TestMachine_HappyPath(t *testing.T) {
	m, err := NewMachine(StateTodo, "X-1")
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}

	steps := []struct {
		event string
		want  string
	}{
		{"start", StateInProgress},
		{"review", StateInReview},
		{"complete", StateDone},
	}
	for _, step := range steps {
		if err := m.Transition(step.event); err != nil {
			t.Fatalf("Transition(%q) failed: %v", step.event, err)
		}
		if m.Current() != step.want {
			t.Errorf("Expected state %q after %q, got %q", step.want, step.event, m.Current())
		}
	}
}

func TestMachine_RejectsInvalidEvent(t *testing.T) {
	m, err := NewMachine(StateTodo, "X-1")
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}

	if err := m.Transition("complete"); err == nil {
		t.Error("expected todo -> done via complete to be rejected")
	}
	if m.Current() != StateTodo {
		t.Errorf("Expected state to remain todo, got %q", m.Current())
	}
}

func TestMachine_BlockAndUnblock(t *testing.T) {
	m, err := NewMachine(StateInProgress, "X-1")
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}

	if err := m.Transition("block"); err != nil {
		t.Fatalf("block failed: %v", err)
	}
	if m.CurrentStatus() != domain.StatusBlocked {
		t.Errorf("Expected blocked, got %q", m.CurrentStatus())
	}
	if err := m.Transition("unblock"); err != nil {
		t.Fatalf("unblock failed: %v", err)
	}
	if m.Current() != StateTodo {
		t.Errorf("Expected todo after unblock, got %q", m.Current())
	}
}

func TestMachine_Advance(t *testing.T) {
	m, err := NewMachine(StateTodo, "X-1")
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}

	if !m.Advance(domain.StatusInProgress) {
		t.Error("expected todo -> in_progress to advance")
	}
	if !m.Advance(domain.StatusInProgress) {
		t.Error("expected a no-op advance to the current status to succeed")
	}
	// todo -> done has no single event; in_progress -> todo does ("stop").
	if m.Advance(domain.WorkItemStatus("archived")) {
		t.Error("expected an unknown status to be rejected")
	}
}

func TestValidateHistory_CleanHistory(t *testing.T) {
	history := []domain.StatusChange{
		{Status: domain.StatusInProgress},
		{Status: domain.StatusInReview},
		{Status: domain.StatusDone},
	}
	suspect, err := ValidateHistory("X-1", domain.StatusTodo, history)
	if err != nil {
		t.Fatalf("ValidateHistory failed: %v", err)
	}
	if len(suspect) != 0 {
		t.Errorf("Expected no suspect entries, got %v", suspect)
	}
}

func TestValidateHistory_FlagsLifecycleSkips(t *testing.T) {
	history := []domain.StatusChange{
		{Status: domain.StatusDone}, // todo -> done skips the lifecycle
		{Status: domain.StatusInProgress},
	}
	suspect, err := ValidateHistory("X-1", domain.StatusTodo, history)
	if err != nil {
		t.Fatalf("ValidateHistory failed: %v", err)
	}
	if len(suspect) != 1 || suspect[0] != 0 {
		t.Errorf("Expected entry 0 flagged, got %v", suspect)
	}
}

func TestValidateHistory_UnknownInitial(t *testing.T) {
	if _, err := ValidateHistory("X-1", domain.WorkItemStatus("archived"), nil); err == nil {
		t.Fatal("expected an error for an unknown initial status")
	}
}
