// Package scheduler provides the scheduling capability consumed by the
// dispatch controller. A Selector inspects the ordered process table and
// names the process that should run next, or nil when nothing is ready.
// Selectors never mutate the table; readiness and fairness are their concern.
package scheduler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/viant/procman/model/process"
)

// Policy names accepted by New.
const (
	PolicyRoundRobin = "round-robin"
	PolicyPriority   = "priority"
)

// ErrUnknownPolicy is returned by New for unsupported policy names.
var ErrUnknownPolicy = errors.New("scheduler: unknown policy")

// Selector picks the next process to run from the ordered table snapshot.
type Selector interface {
	Select(table []*process.Process) *process.Process
}

// Func adapts a function to the Selector interface.
type Func func(table []*process.Process) *process.Process

// Select calls f(table).
func (f Func) Select(table []*process.Process) *process.Process {
	return f(table)
}

// None never selects a process; dispatch falls back to the idle process.
var None = Func(func([]*process.Process) *process.Process { return nil })

// New returns a selector for the supplied policy name. An empty name selects
// round-robin.
func New(policy string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", PolicyRoundRobin, "rr":
		return NewRoundRobin(), nil
	case PolicyPriority:
		return NewPriority(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
}

// Valid reports whether New accepts the policy name.
func Valid(policy string) bool {
	_, err := New(policy)
	return err == nil
}
