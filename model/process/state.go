package process

import "errors"

// State represents the lifecycle state of a process.
type State string

// Process state constants
const (
	StateReady      State = "ready"
	StateRunning    State = "running"
	StateTerminated State = "terminated"
)

// ErrInvalidTransition is returned when a state change is not allowed.
var ErrInvalidTransition = errors.New("invalid state transition")

type transition struct {
	from State
	to   State
}

var validTransitions = map[transition]bool{
	{StateReady, StateRunning}:      true,
	{StateRunning, StateReady}:      true,
	{StateReady, StateTerminated}:   true,
	{StateRunning, StateTerminated}: true,
}

// IsValidTransition checks if a state transition is valid.
func IsValidTransition(from, to State) bool {
	return validTransitions[transition{from, to}]
}

// TransitionTo moves the process to the supplied state. Transitioning to the
// current state is a no-op.
func (p *Process) TransitionTo(to State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == to {
		return nil
	}
	if !IsValidTransition(p.state, to) {
		return ErrInvalidTransition
	}
	p.state = to
	return nil
}
