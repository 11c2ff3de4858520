package procman

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/procman/model/process"
	"github.com/viant/procman/progress"
	"github.com/viant/procman/runtime/table"
	"github.com/viant/procman/service/dao"
	"github.com/viant/procman/service/dao/snapshot"
	sfs "github.com/viant/procman/service/dao/snapshot/fs"
	"github.com/viant/procman/service/event"
	"github.com/viant/procman/service/factory"
	"github.com/viant/procman/service/messaging/memory"
	"github.com/viant/procman/service/scheduler"
	"github.com/viant/procman/tracing"
)

// Version is reported to the tracing provider.
const Version = "0.3.0"

// ErrUnknownDomain is returned when a domain name is not configured.
var ErrUnknownDomain = errors.New("unknown domain")

// Service owns the scheduling domains of one system. Domains share the
// process factory, so identifiers are unique across all of them.
type Service struct {
	config    *Config
	factory   factory.Factory
	selectors map[string]scheduler.Selector
	logger    *slog.Logger
	halt      table.HaltFunc
	fs        afs.Service
	snapshots dao.Service[string, snapshot.Snapshot]

	queue     *memory.Queue[event.Event[process.Record]]
	publisher *event.Publisher[process.Record]
	handler   func(*event.Event[process.Record])
	listener  *event.Listener[process.Record]

	progressListener func(progress.Progress)

	domains []*Domain
	byName  map[string]*Domain
	mux     sync.Mutex
	closed  bool
}

// Config returns the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Domain returns the named scheduling domain.
func (s *Service) Domain(name string) (*Domain, error) {
	ret, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDomain, name)
	}
	return ret, nil
}

// Domains returns all domains in configuration order.
func (s *Service) Domains() []*Domain {
	ret := make([]*Domain, len(s.domains))
	copy(ret, s.domains)
	return ret
}

// Events returns the lifecycle event publisher, or nil when events are disabled.
// Consume on it only when no listener is registered.
func (s *Service) Events() *event.Publisher[process.Record] {
	return s.publisher
}

// DroppedEvents returns the number of events discarded because the queue was full.
func (s *Service) DroppedEvents() int64 {
	if s.queue == nil {
		return 0
	}
	return s.queue.Dropped()
}

// Snapshots returns the snapshot store, or nil when persistence is disabled.
func (s *Service) Snapshots() dao.Service[string, snapshot.Snapshot] {
	return s.snapshots
}

// Boot boots every domain, see Domain.Boot.
func (s *Service) Boot(ctx context.Context) error {
	for _, domain := range s.domains {
		if _, err := domain.Boot(ctx); err != nil {
			return fmt.Errorf("failed to boot domain %s: %w", domain.Name(), err)
		}
	}
	return nil
}

// Shutdown stops the event listener. Domains stay readable.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.listener != nil {
		s.listener.Stop()
	}
	s.logger.Debug("service stopped", "domains", len(s.domains))
	return ctx.Err()
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	s.config.Init()
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if s.config.Tracing.Enabled {
		if err := tracing.Init(s.config.Tracing.ServiceName, Version, s.config.Tracing.OutputFile); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	if s.factory == nil {
		s.factory = factory.NewSequential(factory.WithFirstID(process.ID(s.config.Factory.FirstID)))
	}
	if s.halt == nil {
		s.halt = table.Panic
	}
	if err := s.ensureSnapshots(); err != nil {
		return err
	}
	if s.config.Events.Enabled || s.handler != nil {
		s.queue = memory.NewQueue[event.Event[process.Record]](memory.Config{QueueBuffer: s.config.Events.QueueBuffer})
		s.publisher = event.NewPublisher[process.Record](s.queue)
	}
	for _, cfg := range s.config.Domains {
		domain, err := s.newDomain(cfg)
		if err != nil {
			return err
		}
		s.domains = append(s.domains, domain)
		s.byName[cfg.Name] = domain
	}
	if s.handler != nil {
		s.listener = event.NewListener[process.Record](s.publisher, s.handler, s.logger)
		s.listener.Start(context.Background())
	}
	return nil
}

func (s *Service) ensureSnapshots() error {
	if s.snapshots != nil || s.config.Snapshot.URL == "" {
		return nil
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	store, err := sfs.New(context.Background(), s.fs, s.config.Snapshot.URL, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}
	s.snapshots = store
	return nil
}

func (s *Service) newDomain(cfg *DomainConfig) (*Domain, error) {
	selector, ok := s.selectors[cfg.Name]
	if !ok {
		var err error
		if selector, err = scheduler.New(cfg.Scheduler); err != nil {
			return nil, fmt.Errorf("domain %s: %w", cfg.Name, err)
		}
	}
	logger := s.logger.With("domain", cfg.Name)
	aTable, err := table.New(cfg.MaxProcs, s.factory, selector,
		table.WithName(cfg.Name),
		table.WithHalt(s.halt),
		table.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("domain %s: %w", cfg.Name, err)
	}
	tracker := progress.New(cfg.Name)
	tracker.OnChange(s.progressListener)
	return &Domain{
		config:    cfg,
		table:     aTable,
		publisher: s.publisher,
		snapshots: s.snapshots,
		progress:  tracker,
		logger:    logger,
	}, nil
}

// New creates a service with one domain per configured entry.
func New(options ...Option) (*Service, error) {
	ret := &Service{
		config:    DefaultConfig(),
		selectors: map[string]scheduler.Selector{},
		logger:    slog.Default(),
		byName:    map[string]*Domain{},
	}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
