package process

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ID identifies a process; unique among all registered processes.
type ID uint32

// Address is an entry point in the process image.
type Address uint64

// String renders the address as hex, e.g. 0x1000.
func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

// ParseAddress parses decimal, hex (0x) or octal (0) address literals.
func ParseAddress(literal string) (Address, error) {
	literal = strings.TrimSpace(literal)
	if literal == "" {
		return 0, fmt.Errorf("empty address")
	}
	v, err := strconv.ParseUint(literal, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", literal, err)
	}
	return Address(v), nil
}

// Priority is a scheduling hint consumed by priority based selectors.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// Process represents a schedulable unit of execution
type Process struct {
	ID         ID        `json:"id"`
	Entry      Address   `json:"entry"`
	Priority   Priority  `json:"priority"`
	InstanceID string    `json:"instanceId"`
	CreatedAt  time.Time `json:"createdAt"`
	state      State
	mu         sync.RWMutex
}

// New creates a ready process bound to entry.
func New(id ID, entry Address) *Process {
	return &Process{
		ID:       id,
		Entry:    entry,
		Priority: PriorityNormal,
		state:    StateReady,
	}
}

// State returns the current process state.
func (p *Process) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// SetState sets the state without transition validation.
func (p *Process) SetState(state State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
}

// Runnable returns true if the process can be selected for dispatch.
func (p *Process) Runnable() bool {
	state := p.State()
	return state == StateReady || state == StateRunning
}

func (p *Process) String() string {
	return fmt.Sprintf("pid %d@%v", p.ID, p.Entry)
}

// Record is a serialisable copy of the process.
type Record struct {
	ID         ID        `json:"id" yaml:"id"`
	Entry      Address   `json:"entry" yaml:"entry"`
	Priority   Priority  `json:"priority" yaml:"priority"`
	State      State     `json:"state" yaml:"state"`
	InstanceID string    `json:"instanceId,omitempty" yaml:"instanceId,omitempty"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
}

// Record returns a point-in-time copy of the process.
func (p *Process) Record() Record {
	return Record{
		ID:         p.ID,
		Entry:      p.Entry,
		Priority:   p.Priority,
		State:      p.State(),
		InstanceID: p.InstanceID,
		CreatedAt:  p.CreatedAt,
	}
}
