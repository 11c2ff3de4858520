// Package table implements the process table and the dispatch controller of a
// single scheduling domain.
//
// The table is the sole authority for process registration: it enforces the
// configured process limit and identifier uniqueness, and preserves creation
// order, which selectors use as iteration order. Dispatch state (current,
// previous and idle process) lives alongside the entries so that removal can
// invalidate every reference to a removed process in one place.
//
// A Table performs no locking. Create, Remove and Schedule must not be
// interleaved: callers provide mutual exclusion spanning each call, or confine
// a Table to a single goroutine.
package table

import (
	"fmt"
	"log/slog"

	"github.com/viant/procman/model/process"
	"github.com/viant/procman/service/factory"
	"github.com/viant/procman/service/scheduler"
)

// DefaultCapacity is the system-wide process limit used when none is configured.
const DefaultCapacity = 1024

// Table is a bounded, ordered registry of live processes plus dispatch state.
type Table struct {
	name     string
	capacity int
	entries  []*process.Process
	byID     map[process.ID]*process.Process

	factory  factory.Factory
	selector scheduler.Selector

	current  *process.Process
	previous *process.Process
	idle     *process.Process

	halt   HaltFunc
	logger *slog.Logger
}

// New creates a table holding at most capacity processes.
func New(capacity int, f factory.Factory, selector scheduler.Selector, options ...Option) (*Table, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	if f == nil {
		return nil, fmt.Errorf("factory is required")
	}
	if selector == nil {
		return nil, fmt.Errorf("selector is required")
	}
	ret := &Table{
		capacity: capacity,
		entries:  make([]*process.Process, 0, capacity),
		byID:     make(map[process.ID]*process.Process, capacity),
		factory:  f,
		selector: selector,
		halt:     Panic,
		logger:   slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret, nil
}

// Create builds a process bound to entry and registers it. When the table is
// full the factory is not consulted and ErrTableFull is returned. Each prepare
// function sees the built process before it is registered.
func (t *Table) Create(entry process.Address, prepare ...func(proc *process.Process)) (*process.Process, error) {
	if len(t.entries) >= t.capacity {
		return nil, fmt.Errorf("%w: limit %d", ErrTableFull, t.capacity)
	}
	proc, err := t.factory.Build(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to build process at %v: %w", entry, err)
	}
	if proc == nil {
		t.fatal(&Fault{Kind: FaultContract, Message: fmt.Sprintf("factory built nil process at %v", entry)})
		return nil, nil
	}
	if _, exists := t.byID[proc.ID]; exists {
		t.fatal(&Fault{Kind: FaultDuplicateID, ProcessID: proc.ID, Message: "factory reissued a live identifier"})
		return nil, nil
	}
	for _, fn := range prepare {
		fn(proc)
	}
	t.entries = append(t.entries, proc)
	t.byID[proc.ID] = proc
	t.logger.Debug("process created", "domain", t.name, "pid", proc.ID, "entry", proc.Entry.String(), "size", len(t.entries))
	return proc, nil
}

// Get returns the process registered under id.
func (t *Table) Get(id process.ID) (*process.Process, bool) {
	proc, ok := t.byID[id]
	return proc, ok
}

// Remove unregisters proc, keeping the relative order of remaining entries.
// Dispatch state referencing proc is cleared. Removing an unknown process is a
// no-op.
func (t *Table) Remove(proc *process.Process) {
	if proc == nil || t.byID[proc.ID] != proc {
		return
	}
	for i, candidate := range t.entries {
		if candidate != proc {
			continue
		}
		copy(t.entries[i:], t.entries[i+1:])
		t.entries[len(t.entries)-1] = nil
		t.entries = t.entries[:len(t.entries)-1]
		break
	}
	delete(t.byID, proc.ID)

	if t.current == proc {
		t.current = nil
	}
	if t.previous == proc {
		t.previous = nil
	}
	if t.idle == proc {
		t.idle = nil
		t.logger.Warn("idle process removed", "domain", t.name, "pid", proc.ID)
	}
	t.logger.Debug("process removed", "domain", t.name, "pid", proc.ID, "size", len(t.entries))
}

// Processes returns the registered processes in creation order. The returned
// slice is a copy; the processes are shared.
func (t *Table) Processes() []*process.Process {
	ret := make([]*process.Process, len(t.entries))
	copy(ret, t.entries)
	return ret
}

// Len returns the number of registered processes.
func (t *Table) Len() int {
	return len(t.entries)
}

// Cap returns the process limit.
func (t *Table) Cap() int {
	return t.capacity
}

// Name returns the scheduling domain name.
func (t *Table) Name() string {
	return t.name
}

func (t *Table) contains(proc *process.Process) bool {
	return proc != nil && t.byID[proc.ID] == proc
}

func (t *Table) fatal(fault *Fault) {
	t.logger.Error("process table fault", "domain", t.name, "kind", string(fault.Kind), "pid", fault.ProcessID, "error", fault.Message)
	t.halt(fault)
}
