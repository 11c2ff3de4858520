package table

import (
	"fmt"

	"github.com/viant/procman/model/process"
)

// SetIdle registers the fallback process dispatched when the selector finds
// nothing runnable. The idle process is never swapped in otherwise.
func (t *Table) SetIdle(proc *process.Process) {
	t.idle = proc
	if proc != nil {
		t.logger.Debug("idle process set", "domain", t.name, "pid", proc.ID)
	}
}

// Schedule records the next process to run and returns it.
//
// A non-nil target is dispatched directly; otherwise the selector picks from
// the table without the idle process, falling back to the idle process. A selection that is not a
// registered process, or no selection without an idle process, is fatal. On
// success previous takes the old current value. The caller performs the
// actual context switch.
func (t *Table) Schedule(target *process.Process) *process.Process {
	next := target
	source := "explicit"
	if next == nil {
		source = "selector"
		next = t.selector.Select(t.candidates())
	}
	if next == nil {
		if t.idle == nil {
			t.fatal(&Fault{Kind: FaultNoRunnable, Message: "no ready process and no idle process"})
			return nil
		}
		source = "idle"
		next = t.idle
	}
	if !t.contains(next) {
		t.fatal(&Fault{Kind: FaultStaleReference, ProcessID: next.ID,
			Message: fmt.Sprintf("%s selection is not in the table", source)})
		return nil
	}
	t.previous = t.current
	t.current = next
	t.logger.Debug("process dispatched", "domain", t.name, "pid", next.ID, "source", source)
	return next
}

// candidates returns the registered processes except the idle one, which is
// reachable only as the fallback.
func (t *Table) candidates() []*process.Process {
	ret := make([]*process.Process, 0, len(t.entries))
	for _, proc := range t.entries {
		if proc != t.idle {
			ret = append(ret, proc)
		}
	}
	return ret
}

// Current returns the process granted execution, or nil.
func (t *Table) Current() *process.Process {
	return t.current
}

// Previous returns the process that was current before the last dispatch, or nil.
func (t *Table) Previous() *process.Process {
	return t.previous
}

// Idle returns the fallback process, or nil.
func (t *Table) Idle() *process.Process {
	return t.idle
}
