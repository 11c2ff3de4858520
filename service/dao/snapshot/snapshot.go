// Package snapshot describes a point-in-time copy of a scheduling domain:
// its registered processes in table order and its dispatch state.
package snapshot

import (
	"time"

	"github.com/viant/procman/model/process"
	"github.com/viant/procman/service/dao"
	"github.com/viant/procman/service/dao/criteria"
)

// Snapshot is a serialisable copy of a process table.
type Snapshot struct {
	ID       string           `json:"id" yaml:"id"`
	Domain   string           `json:"domain" yaml:"domain"`
	Capacity int              `json:"capacity" yaml:"capacity"`
	Entries  []process.Record `json:"entries" yaml:"entries"`
	Current  *process.ID      `json:"current,omitempty" yaml:"current,omitempty"`
	Previous *process.ID      `json:"previous,omitempty" yaml:"previous,omitempty"`
	Idle     *process.ID      `json:"idle,omitempty" yaml:"idle,omitempty"`
	TakenAt  time.Time        `json:"takenAt" yaml:"takenAt"`
}

// Key returns the snapshot identifier.
func Key(s *Snapshot) string {
	return s.ID
}

// Match filters snapshots by the "Domain" parameter.
func Match(s *Snapshot, parameters []*dao.Parameter) bool {
	return criteria.Matches("Domain", s.Domain, parameters)
}

// Older orders snapshots by time taken, then id.
func Older(a, b *Snapshot) bool {
	if a.TakenAt.Equal(b.TakenAt) {
		return a.ID < b.ID
	}
	return a.TakenAt.Before(b.TakenAt)
}

// IDOf returns a pointer to the process id, or nil for a nil process.
func IDOf(p *process.Process) *process.ID {
	if p == nil {
		return nil
	}
	id := p.ID
	return &id
}
