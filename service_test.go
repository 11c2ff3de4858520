package procman

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/procman/model/process"
	"github.com/viant/procman/runtime/table"
	"github.com/viant/procman/service/dao"
	smemory "github.com/viant/procman/service/dao/snapshot/memory"
	"github.com/viant/procman/service/event"
	"github.com/viant/procman/service/scheduler"
)

type haltRecorder struct {
	mu     sync.Mutex
	faults []*table.Fault
}

func (h *haltRecorder) halt(fault *table.Fault) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.faults = append(h.faults, fault)
}

func (h *haltRecorder) kinds() []table.FaultKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	var ret []table.FaultKind
	for _, fault := range h.faults {
		ret = append(ret, fault.Kind)
	}
	return ret
}

func newDomain(t *testing.T, options ...Option) (*Service, *Domain) {
	t.Helper()
	srv, err := New(options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	domain, err := srv.Domain(DefaultDomain)
	require.NoError(t, err)
	return srv, domain
}

func TestService_Scenario(t *testing.T) {
	ctx := context.Background()
	_, cpu := newDomain(t)

	a, err := cpu.Create(ctx, 0x1000)
	require.NoError(t, err)
	b, err := cpu.Create(ctx, 0x2000)
	require.NoError(t, err)
	assert.Equal(t, 2, cpu.Len())
	assert.NotEqual(t, a.ID, b.ID)

	cpu.Schedule(ctx, a)
	assert.Same(t, a, cpu.Current())
	assert.Nil(t, cpu.Previous())
	assert.Equal(t, process.StateRunning, a.State())

	cpu.Schedule(ctx, b)
	assert.Same(t, b, cpu.Current())
	assert.Same(t, a, cpu.Previous())
	assert.Equal(t, process.StateReady, a.State())
	assert.Equal(t, process.StateRunning, b.State())

	cpu.Remove(ctx, a)
	_, ok := cpu.Get(a.ID)
	assert.False(t, ok)
	assert.Equal(t, process.StateTerminated, a.State())
	assert.Same(t, b, cpu.Current())
	assert.Nil(t, cpu.Previous())

	cpu.Remove(ctx, b)
	assert.Nil(t, cpu.Current())
	assert.Equal(t, 0, cpu.Len())
}

func TestService_Domains(t *testing.T) {
	config := &Config{Domains: []*DomainConfig{{Name: "cpu0"}, {Name: "cpu1", MaxProcs: 2}}}
	srv, err := New(WithConfig(config))
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	require.Len(t, srv.Domains(), 2)
	_, err = srv.Domain("cpu9")
	assert.ErrorIs(t, err, ErrUnknownDomain)

	ctx := context.Background()
	cpu0, _ := srv.Domain("cpu0")
	cpu1, _ := srv.Domain("cpu1")
	seen := map[process.ID]bool{}
	for i := 0; i < 2; i++ {
		for _, domain := range []*Domain{cpu0, cpu1} {
			proc, err := domain.Create(ctx, 0x1000)
			require.NoError(t, err)
			assert.False(t, seen[proc.ID], "ids are unique across domains")
			seen[proc.ID] = true
		}
	}
	_, err = cpu1.Create(ctx, 0x1000)
	assert.ErrorIs(t, err, table.ErrTableFull)
	assert.Equal(t, 2, cpu1.Cap())
	assert.Equal(t, 1, cpu1.Progress().Rejected)
	assert.Equal(t, 2, cpu1.Progress().Live)

	_, err = New(WithConfig(&Config{Domains: []*DomainConfig{{Name: "x", Scheduler: "lottery"}}}))
	assert.Error(t, err)
}

func TestDomain_BootIdle(t *testing.T) {
	ctx := context.Background()
	config := &Config{Domains: []*DomainConfig{{Name: DefaultDomain, Scheduler: scheduler.PolicyPriority, IdleEntry: "0x0"}}}
	_, cpu := newDomain(t, WithConfig(config))

	idle, err := cpu.Boot(ctx)
	require.NoError(t, err)
	require.NotNil(t, idle)
	assert.Same(t, idle, cpu.Idle())
	assert.Equal(t, process.PriorityLow, idle.Priority)
	again, err := cpu.Boot(ctx)
	require.NoError(t, err)
	assert.Same(t, idle, again)
	assert.Equal(t, 1, cpu.Len())

	worker, err := cpu.Create(ctx, 0x1000)
	require.NoError(t, err)
	assert.Same(t, worker, cpu.Schedule(ctx, nil))

	cpu.Remove(ctx, worker)
	assert.Same(t, idle, cpu.Schedule(ctx, nil))
	assert.Equal(t, process.StateRunning, idle.State())
	assert.Equal(t, 1, cpu.Progress().Idle)
	assert.Equal(t, 2, cpu.Progress().Dispatched)
}

func TestDomain_Faults(t *testing.T) {
	ctx := context.Background()
	recorder := &haltRecorder{}
	config := &Config{Domains: []*DomainConfig{{Name: DefaultDomain}}}
	_, cpu := newDomain(t, WithConfig(config), WithHalt(recorder.halt),
		WithSelector(DefaultDomain, scheduler.None))

	assert.Nil(t, cpu.Schedule(ctx, nil))
	a, err := cpu.Create(ctx, 0x1000)
	require.NoError(t, err)
	cpu.Schedule(ctx, a)
	cpu.Remove(ctx, a)
	assert.Nil(t, cpu.Schedule(ctx, a))
	assert.Nil(t, cpu.Current())
	assert.Equal(t, []table.FaultKind{table.FaultNoRunnable, table.FaultStaleReference}, recorder.kinds())
	counters := cpu.Progress()
	assert.Equal(t, 2, counters.Faults)
	assert.Equal(t, 1, counters.Dispatched)
	assert.Equal(t, 0, counters.Live)
}

func TestDomain_DefaultHaltPanics(t *testing.T) {
	_, cpu := newDomain(t, WithSelector(DefaultDomain, scheduler.None))
	assert.Panics(t, func() {
		cpu.Schedule(context.Background(), nil)
	})
	// the domain lock must be released by the panicking call
	_, err := cpu.Create(context.Background(), 0x1000)
	assert.NoError(t, err)
}

func TestDomain_Concurrent(t *testing.T) {
	ctx := context.Background()
	config := &Config{Domains: []*DomainConfig{{Name: DefaultDomain, MaxProcs: 64, IdleEntry: "0x0"}}}
	_, cpu := newDomain(t, WithConfig(config))
	_, err := cpu.Boot(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var full int
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				proc, err := cpu.Create(ctx, process.Address(0x1000*(worker+1)))
				if errors.Is(err, table.ErrTableFull) {
					mu.Lock()
					full++
					mu.Unlock()
					continue
				}
				if !assert.NoError(t, err) {
					return
				}
				cpu.Schedule(ctx, nil)
				if j%2 == 0 {
					cpu.Remove(ctx, proc)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, cpu.Len(), 64)
	ids := map[process.ID]bool{}
	for _, proc := range cpu.Processes() {
		assert.False(t, ids[proc.ID])
		ids[proc.ID] = true
	}
	if current := cpu.Current(); current != nil {
		_, ok := cpu.Get(current.ID)
		assert.True(t, ok)
	}
}

func TestDomain_Events(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	var received []event.Type
	handler := func(e *event.Event[process.Record]) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, e.Context.Type)
	}
	config := &Config{Domains: []*DomainConfig{{Name: DefaultDomain, IdleEntry: "0x0"}}}
	srv, cpu := newDomain(t, WithConfig(config), WithEventListener(handler))
	require.NotNil(t, srv.Events())

	idle, err := cpu.Boot(ctx)
	require.NoError(t, err)
	a, err := cpu.Create(ctx, 0x1000)
	require.NoError(t, err)
	cpu.Schedule(ctx, a)
	cpu.Remove(ctx, a)
	assert.Same(t, idle, cpu.Schedule(ctx, nil))

	expect := []event.Type{event.TypeCreated, event.TypeCreated, event.TypeDispatched, event.TypeRemoved, event.TypeIdle}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == len(expect)
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Equal(t, expect, received)
	mu.Unlock()
	assert.EqualValues(t, 0, srv.DroppedEvents())
}

func TestDomain_EventsDropWhenFull(t *testing.T) {
	ctx := context.Background()
	config := DefaultConfig()
	config.Events = EventsConfig{Enabled: true, QueueBuffer: 1}
	srv, cpu := newDomain(t, WithConfig(config))

	for i := 0; i < 3; i++ {
		_, err := cpu.Create(ctx, 0x1000)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, srv.DroppedEvents())
	created, err := srv.Events().Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, event.TypeCreated, created.Context.Type)
}

func TestDomain_Snapshot(t *testing.T) {
	ctx := context.Background()
	store := smemory.New()
	_, cpu := newDomain(t, WithSnapshotDAO(store))

	a, _ := cpu.Create(ctx, 0x1000)
	b, _ := cpu.Create(ctx, 0x2000)
	cpu.Schedule(ctx, a)
	cpu.Schedule(ctx, b)

	taken, err := cpu.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultDomain, taken.Domain)
	assert.Equal(t, 1024, taken.Capacity)
	require.Len(t, taken.Entries, 2)
	assert.Equal(t, process.Address(0x1000), taken.Entries[0].Entry)
	assert.Equal(t, process.StateReady, taken.Entries[0].State)
	assert.Equal(t, process.StateRunning, taken.Entries[1].State)
	require.NotNil(t, taken.Current)
	assert.Equal(t, b.ID, *taken.Current)
	require.NotNil(t, taken.Previous)
	assert.Equal(t, a.ID, *taken.Previous)
	assert.Nil(t, taken.Idle)

	loaded, err := store.Load(ctx, taken.ID)
	require.NoError(t, err)
	assert.Equal(t, taken, loaded)

	listed, err := store.List(ctx, dao.NewParameter("Domain", DefaultDomain))
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestService_SnapshotURL(t *testing.T) {
	ctx := context.Background()
	config := DefaultConfig()
	config.Snapshot.URL = t.TempDir()
	srv, cpu := newDomain(t, WithConfig(config))
	require.NotNil(t, srv.Snapshots())

	_, _ = cpu.Create(ctx, 0x1000)
	taken, err := cpu.Snapshot(ctx)
	require.NoError(t, err)
	loaded, err := srv.Snapshots().Load(ctx, taken.ID)
	require.NoError(t, err)
	assert.Equal(t, taken.ID, loaded.ID)
	assert.Len(t, loaded.Entries, 1)
}
