// Package factory provides the process construction capability consumed by
// the process table. A factory builds a process bound to an entry address and
// assigns it a fresh identifier; it never registers the process anywhere.
package factory

import (
	"errors"
	"math"
	"sync"

	"github.com/viant/procman/internal/clock"
	"github.com/viant/procman/internal/idgen"
	"github.com/viant/procman/model/process"
)

// ErrIDSpaceExhausted is returned when no further identifiers can be issued.
var ErrIDSpaceExhausted = errors.New("factory: process id space exhausted")

// Factory builds processes.
type Factory interface {
	Build(entry process.Address) (*process.Process, error)
}

// Func adapts a function to the Factory interface.
type Func func(entry process.Address) (*process.Process, error)

// Build calls f(entry).
func (f Func) Build(entry process.Address) (*process.Process, error) {
	return f(entry)
}

// Sequential issues monotonically increasing identifiers. A single instance
// can be shared by several tables to keep identifiers globally unique.
type Sequential struct {
	mu       sync.Mutex
	next     uint64
	priority process.Priority
}

// Option configures Sequential
type Option func(s *Sequential)

// WithFirstID sets the first identifier issued.
func WithFirstID(id process.ID) Option {
	return func(s *Sequential) {
		s.next = uint64(id)
	}
}

// WithPriority sets the priority assigned to built processes.
func WithPriority(priority process.Priority) Option {
	return func(s *Sequential) {
		s.priority = priority
	}
}

// Build creates a ready process with the next identifier.
func (s *Sequential) Build(entry process.Address) (*process.Process, error) {
	s.mu.Lock()
	if s.next > math.MaxUint32 {
		s.mu.Unlock()
		return nil, ErrIDSpaceExhausted
	}
	id := process.ID(s.next)
	s.next++
	s.mu.Unlock()

	ret := process.New(id, entry)
	ret.Priority = s.priority
	ret.InstanceID = idgen.New()
	ret.CreatedAt = clock.Now()
	return ret, nil
}

// NewSequential creates a sequential factory; identifiers start at 1.
func NewSequential(options ...Option) *Sequential {
	ret := &Sequential{next: 1, priority: process.PriorityNormal}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
