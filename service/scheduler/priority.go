package scheduler

import "github.com/viant/procman/model/process"

// Priority selects among runnable processes of the highest priority present,
// rotating round-robin between processes of equal priority.
type Priority struct {
	rr *RoundRobin
}

// Select returns the next runnable process of the highest priority.
func (p *Priority) Select(table []*process.Process) *process.Process {
	top := process.Priority(-1)
	for _, candidate := range table {
		if candidate != nil && candidate.Runnable() && candidate.Priority > top {
			top = candidate.Priority
		}
	}
	if top < 0 {
		return nil
	}
	candidates := make([]*process.Process, 0, len(table))
	for _, candidate := range table {
		if candidate != nil && candidate.Runnable() && candidate.Priority == top {
			candidates = append(candidates, candidate)
		}
	}
	return p.rr.Select(candidates)
}

// NewPriority creates a priority selector.
func NewPriority() *Priority {
	return &Priority{rr: NewRoundRobin()}
}
