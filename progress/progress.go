package progress

import (
	"sync"
	"time"

	"github.com/viant/procman/internal/clock"
)

// Delta represents an incremental counter change. Fields are signed so a
// delta can move Live in either direction.
type Delta struct {
	Created    int
	Removed    int
	Dispatched int
	Idle       int
	Rejected   int
	Faults     int
	Live       int
}

// Progress keeps counters for one domain. It is safe for concurrent use.
type Progress struct {
	Domain    string
	StartedAt time.Time

	Created    int
	Removed    int
	Dispatched int
	Idle       int
	Rejected   int
	Faults     int
	Live       int

	sync.Mutex
	onChange func(Progress)
}

// Update applies d. The onChange callback, if any, receives a copy of the
// counters outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.Lock()
	p.Created += d.Created
	p.Removed += d.Removed
	p.Dispatched += d.Dispatched
	p.Idle += d.Idle
	p.Rejected += d.Rejected
	p.Faults += d.Faults
	p.Live += d.Live
	snapshot := p.copy()
	cb := p.onChange
	p.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copy()
}

// OnChange registers a callback invoked after every Update; nil disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

func (p *Progress) copy() Progress {
	return Progress{
		Domain:     p.Domain,
		StartedAt:  p.StartedAt,
		Created:    p.Created,
		Removed:    p.Removed,
		Dispatched: p.Dispatched,
		Idle:       p.Idle,
		Rejected:   p.Rejected,
		Faults:     p.Faults,
		Live:       p.Live,
	}
}

// New creates a tracker for domain.
func New(domain string) *Progress {
	return &Progress{Domain: domain, StartedAt: clock.Now()}
}
