package memory

import (
	"github.com/viant/procman/service/dao"
	"github.com/viant/procman/service/dao/snapshot"
	"github.com/viant/procman/service/dao/store"
)

// Service keeps snapshots in memory; useful for tests and embedded use.
type Service struct {
	*store.MemoryStore[string, snapshot.Snapshot]
}

var _ dao.Service[string, snapshot.Snapshot] = (*Service)(nil)

// New creates an in-memory snapshot store.
func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[string, snapshot.Snapshot](snapshot.Key).
			WithMatch(snapshot.Match).
			WithOrder(snapshot.Older),
	}
}
