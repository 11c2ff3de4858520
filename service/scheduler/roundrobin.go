package scheduler

import "github.com/viant/procman/model/process"

// RoundRobin walks the table positionally, resuming after the process it
// picked last time.
type RoundRobin struct {
	last      process.ID
	lastIndex int
	picked    bool
}

// Select returns the first runnable process after the previous pick.
func (r *RoundRobin) Select(table []*process.Process) *process.Process {
	n := len(table)
	if n == 0 {
		return nil
	}
	start := r.start(table)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		candidate := table[idx]
		if candidate == nil || !candidate.Runnable() {
			continue
		}
		r.last, r.lastIndex, r.picked = candidate.ID, idx, true
		return candidate
	}
	return nil
}

// start returns the position following the last pick. When the last pick was
// removed its successor shifted into lastIndex, so the walk resumes there.
func (r *RoundRobin) start(table []*process.Process) int {
	if !r.picked {
		return 0
	}
	for i, candidate := range table {
		if candidate != nil && candidate.ID == r.last {
			return i + 1
		}
	}
	if r.lastIndex < len(table) {
		return r.lastIndex
	}
	return 0
}

// NewRoundRobin creates a round-robin selector.
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}
