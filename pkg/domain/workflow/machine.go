// Package workflow models the canonical work-item status lifecycle as a
// state machine. The normalizer uses it to sanity-check reconstructed
// status histories coming from upstream systems.
package workflow

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
	"github.com/felixgeelhaar/sprintlens/pkg/domain"
)

// State constants for statekit integration. Values are kept in sync with
// the WorkItemStatus constants in the domain package.
const (
	StateTodo       = "todo"
	StateInProgress = "in_progress"
	StateInReview   = "in_review"
	StateDone       = "done"
	StateBlocked    = "blocked"
)

// init validates at startup that FSM state constants match WorkItemStatus values.
func init() {
	stateMap := map[string]domain.WorkItemStatus{
		StateTodo:       domain.StatusTodo,
		StateInProgress: domain.StatusInProgress,
		StateInReview:   domain.StatusInReview,
		StateDone:       domain.StatusDone,
		StateBlocked:    domain.StatusBlocked,
	}

	for fsmState, status := range stateMap {
		if fsmState != string(status) {
			panic(fmt.Sprintf("FSM state %q does not match WorkItemStatus %q - constants are out of sync", fsmState, status))
		}
	}
}

// ItemContext carries state data.
type ItemContext struct {
	ItemID string
}

// Machine wraps a statekit interpreter over the status vocabulary.
type Machine struct {
	interpreter *statekit.Interpreter[ItemContext]
}

// NewMachine builds a status machine starting at initialState. Unknown
// initial states are rejected so callers normalize first.
func NewMachine(initialState string, itemID string) (*Machine, error) {
	switch initialState {
	case StateTodo, StateInProgress, StateInReview, StateDone, StateBlocked:
	default:
		return nil, fmt.Errorf("unknown initial state: %s", initialState)
	}

	builder := statekit.NewMachine[ItemContext]("workitem-status").
		WithInitial(statekit.StateID(initialState)).
		WithContext(ItemContext{ItemID: itemID})

	builder.State(StateTodo).
		On("start").Target(StateInProgress).
		On("block").Target(StateBlocked).
		Done()

	builder.State(StateInProgress).
		On("review").Target(StateInReview).
		On("complete").Target(StateDone).
		On("block").Target(StateBlocked).
		On("stop").Target(StateTodo).
		Done()

	builder.State(StateInReview).
		On("complete").Target(StateDone).
		On("reject").Target(StateInProgress).
		On("block").Target(StateBlocked).
		Done()

	builder.State(StateBlocked).
		On("unblock").Target(StateTodo).
		Done()

	builder.State(StateDone).
		On("reopen").Target(StateTodo).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &Machine{interpreter: interpreter}, nil
}

// Transition attempts to move the item to a new state via the given event.
func (m *Machine) Transition(event string) error {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := m.Current()

	if before != after {
		return nil
	}
	return fmt.Errorf("the event '%s' is not allowed while the item is in the '%s' state", event, before)
}

// Current returns the machine's current state value.
func (m *Machine) Current() string {
	return string(m.interpreter.State().Value)
}

// CurrentStatus returns the current state as a WorkItemStatus.
func (m *Machine) CurrentStatus() domain.WorkItemStatus {
	return domain.WorkItemStatus(m.Current())
}

// eventFor maps a direct status jump onto the event that performs it from
// the current state, or "" when no single event covers the jump.
func (m *Machine) eventFor(target domain.WorkItemStatus) string {
	transitions := map[string]map[domain.WorkItemStatus]string{
		StateTodo:       {domain.StatusInProgress: "start", domain.StatusBlocked: "block"},
		StateInProgress: {domain.StatusInReview: "review", domain.StatusDone: "complete", domain.StatusBlocked: "block", domain.StatusTodo: "stop"},
		StateInReview:   {domain.StatusDone: "complete", domain.StatusInProgress: "reject", domain.StatusBlocked: "block"},
		StateBlocked:    {domain.StatusTodo: "unblock"},
		StateDone:       {domain.StatusTodo: "reopen"},
	}
	return transitions[m.Current()][target]
}

// Advance moves the machine directly to the target status when a single
// valid event covers the jump. It reports false for jumps the lifecycle
// does not allow, which callers treat as a suspicious history entry.
func (m *Machine) Advance(target domain.WorkItemStatus) bool {
	if m.CurrentStatus() == target {
		return true
	}
	event := m.eventFor(target)
	if event == "" {
		return false
	}
	return m.Transition(event) == nil
}

// ValidateHistory replays a status history through the lifecycle machine
// and returns the indexes of entries implying impossible transitions. The
// history itself is never modified; flagged entries are reported in
// normalization stats.
func ValidateHistory(itemID string, initial domain.WorkItemStatus, history []domain.StatusChange) ([]int, error) {
	machine, err := NewMachine(string(initial), itemID)
	if err != nil {
		return nil, err
	}

	var suspect []int
	for i, change := range history {
		if !machine.Advance(change.Status) {
			suspect = append(suspect, i)
		}
	}
	return suspect, nil
}
