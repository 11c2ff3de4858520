package procman

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/viant/procman/internal/clock"
	"github.com/viant/procman/internal/idgen"
	"github.com/viant/procman/model/process"
	"github.com/viant/procman/progress"
	"github.com/viant/procman/runtime/table"
	"github.com/viant/procman/service/dao"
	"github.com/viant/procman/service/dao/snapshot"
	"github.com/viant/procman/service/event"
	"github.com/viant/procman/service/messaging"
	"github.com/viant/procman/tracing"
)

// Domain is one scheduling domain: a process table with its dispatch state.
// Every operation holds the domain lock for its full duration, so a Domain
// is safe for concurrent use.
type Domain struct {
	config    *DomainConfig
	table     *table.Table
	publisher *event.Publisher[process.Record]
	snapshots dao.Service[string, snapshot.Snapshot]
	progress  *progress.Progress
	logger    *slog.Logger
	mux       sync.Mutex
}

// Name returns the domain name.
func (d *Domain) Name() string {
	return d.config.Name
}

// Config returns the domain configuration.
func (d *Domain) Config() *DomainConfig {
	return d.config
}

// Create builds and registers a process starting at entry.
// table.ErrTableFull is returned when the process limit is reached.
func (d *Domain) Create(ctx context.Context, entry process.Address) (proc *process.Process, err error) {
	ctx, span := d.startSpan(ctx, "procman.create", tracing.KindInternal, map[string]string{"entry": entry.String()})
	defer d.endSpan(span, &err)

	d.mux.Lock()
	defer d.mux.Unlock()
	return d.createLocked(ctx, span, entry)
}

func (d *Domain) createLocked(ctx context.Context, span *tracing.Span, entry process.Address, prepare ...func(*process.Process)) (*process.Process, error) {
	proc, err := d.table.Create(entry, prepare...)
	if err != nil || proc == nil {
		switch {
		case errors.Is(err, table.ErrTableFull):
			d.progress.Update(progress.Delta{Rejected: 1})
		case err == nil:
			d.progress.Update(progress.Delta{Faults: 1})
		}
		return nil, err
	}
	d.progress.Update(progress.Delta{Created: 1, Live: 1})
	span.WithAttributes(map[string]string{"pid": pidString(proc)})
	d.publish(ctx, event.TypeCreated, proc, nil)
	return proc, nil
}

// Get returns the process registered under id.
func (d *Domain) Get(id process.ID) (*process.Process, bool) {
	d.mux.Lock()
	defer d.mux.Unlock()
	return d.table.Get(id)
}

// Remove marks proc terminated and unregisters it. Dispatch state that
// referenced proc is cleared. Removing an unregistered process does nothing.
func (d *Domain) Remove(ctx context.Context, proc *process.Process) {
	if proc == nil {
		return
	}
	ctx, span := d.startSpan(ctx, "procman.remove", tracing.KindInternal, map[string]string{"pid": pidString(proc)})
	defer tracing.EndSpan(span, nil)

	d.mux.Lock()
	defer d.mux.Unlock()
	if registered, ok := d.table.Get(proc.ID); !ok || registered != proc {
		return
	}
	if err := proc.TransitionTo(process.StateTerminated); err != nil {
		d.logger.Warn("failed to terminate process", "pid", proc.ID, "state", string(proc.State()), "error", err)
	}
	d.table.Remove(proc)
	d.progress.Update(progress.Delta{Removed: 1, Live: -1})
	d.publish(ctx, event.TypeRemoved, proc, nil)
}

// Schedule dispatches target, or the process chosen by the scheduling policy
// when target is nil, and returns it. The process leaving the CPU goes back
// to ready and the dispatched one becomes running. A stale target or nothing
// to run without an idle process is fatal and nil is returned if the halt
// handler returns.
func (d *Domain) Schedule(ctx context.Context, target *process.Process) *process.Process {
	attrs := map[string]string{}
	if target != nil {
		attrs["target"] = pidString(target)
	}
	ctx, span := d.startSpan(ctx, "procman.schedule", tracing.KindInternal, attrs)
	var err error
	defer d.endSpan(span, &err)

	d.mux.Lock()
	defer d.mux.Unlock()
	outgoing := d.table.Current()
	next := d.table.Schedule(target)
	if next == nil {
		err = errors.New("dispatch halted")
		d.progress.Update(progress.Delta{Faults: 1})
		return nil
	}
	if outgoing != nil && outgoing != next && outgoing.State() == process.StateRunning {
		_ = outgoing.TransitionTo(process.StateReady)
	}
	if err := next.TransitionTo(process.StateRunning); err != nil {
		d.logger.Warn("dispatched process is not runnable", "pid", next.ID, "state", string(next.State()), "error", err)
	}
	span.WithAttributes(map[string]string{"pid": pidString(next)})
	eventType, delta := event.TypeDispatched, progress.Delta{Dispatched: 1}
	if next == d.table.Idle() {
		eventType, delta.Idle = event.TypeIdle, 1
	}
	d.progress.Update(delta)
	d.publish(ctx, eventType, next, d.table.Previous())
	return next
}

// SetIdle registers the process dispatched when nothing else is runnable.
func (d *Domain) SetIdle(ctx context.Context, proc *process.Process) {
	_, span := d.startSpan(ctx, "procman.set_idle", tracing.KindInternal, map[string]string{"pid": pidString(proc)})
	defer tracing.EndSpan(span, nil)

	d.mux.Lock()
	defer d.mux.Unlock()
	d.table.SetIdle(proc)
}

// Boot creates, registers and installs the idle process when the domain
// configuration names an idle entry. It returns the idle process, if any.
// Calling Boot again once an idle process is installed is a no-op.
func (d *Domain) Boot(ctx context.Context) (idle *process.Process, err error) {
	if d.config.IdleEntry == "" {
		return nil, nil
	}
	entry, err := process.ParseAddress(d.config.IdleEntry)
	if err != nil {
		return nil, err
	}
	ctx, span := d.startSpan(ctx, "procman.boot", tracing.KindInternal, map[string]string{"entry": entry.String()})
	defer d.endSpan(span, &err)

	d.mux.Lock()
	defer d.mux.Unlock()
	if idle = d.table.Idle(); idle != nil {
		return idle, nil
	}
	idle, err = d.createLocked(ctx, span, entry, func(proc *process.Process) {
		proc.Priority = process.PriorityLow
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create idle process: %w", err)
	}
	if idle == nil {
		return nil, nil
	}
	d.table.SetIdle(idle)
	d.logger.Info("domain booted", "idle", idle.ID, "entry", idle.Entry.String())
	return idle, nil
}

// Current returns the process granted execution, or nil.
func (d *Domain) Current() *process.Process {
	d.mux.Lock()
	defer d.mux.Unlock()
	return d.table.Current()
}

// Previous returns the process that ran before the current one, or nil.
func (d *Domain) Previous() *process.Process {
	d.mux.Lock()
	defer d.mux.Unlock()
	return d.table.Previous()
}

// Idle returns the idle process, or nil.
func (d *Domain) Idle() *process.Process {
	d.mux.Lock()
	defer d.mux.Unlock()
	return d.table.Idle()
}

// Processes returns the registered processes in creation order.
func (d *Domain) Processes() []*process.Process {
	d.mux.Lock()
	defer d.mux.Unlock()
	return d.table.Processes()
}

// Len returns the number of registered processes.
func (d *Domain) Len() int {
	d.mux.Lock()
	defer d.mux.Unlock()
	return d.table.Len()
}

// Progress returns the lifecycle counters of the domain.
func (d *Domain) Progress() progress.Progress {
	return d.progress.Snapshot()
}

// Cap returns the process limit.
func (d *Domain) Cap() int {
	return d.table.Cap()
}

// Snapshot captures the table and dispatch state. When a snapshot store is
// configured the snapshot is saved as well.
func (d *Domain) Snapshot(ctx context.Context) (ret *snapshot.Snapshot, err error) {
	ctx, span := d.startSpan(ctx, "procman.snapshot", tracing.KindProducer, nil)
	defer func() { tracing.EndSpan(span, err) }()

	d.mux.Lock()
	takenAt := clock.Now()
	ret = &snapshot.Snapshot{
		ID:       fmt.Sprintf("%s-%d-%s", d.config.Name, takenAt.UnixNano(), idgen.Short()),
		Domain:   d.config.Name,
		Capacity: d.table.Cap(),
		Current:  snapshot.IDOf(d.table.Current()),
		Previous: snapshot.IDOf(d.table.Previous()),
		Idle:     snapshot.IDOf(d.table.Idle()),
		TakenAt:  takenAt,
	}
	for _, proc := range d.table.Processes() {
		ret.Entries = append(ret.Entries, proc.Record())
	}
	d.mux.Unlock()

	if d.snapshots == nil {
		return ret, nil
	}
	if err = d.snapshots.Save(ctx, ret); err != nil {
		return nil, fmt.Errorf("failed to save snapshot %s: %w", ret.ID, err)
	}
	return ret, nil
}

func (d *Domain) publish(ctx context.Context, eventType event.Type, proc, previous *process.Process) {
	if d.publisher == nil {
		return
	}
	eventContext := &event.Context{Domain: d.config.Name, Type: eventType, ProcessID: proc.ID}
	if previous != nil {
		eventContext.PreviousID = previous.ID
	}
	err := d.publisher.Publish(ctx, event.NewEvent(eventContext, proc.Record()))
	switch {
	case err == nil:
	case errors.Is(err, messaging.ErrQueueFull):
		d.logger.Warn("event dropped", "type", string(eventType), "pid", proc.ID)
	default:
		d.logger.Error("failed to publish event", "type", string(eventType), "pid", proc.ID, "error", err)
	}
}

// endSpan finishes span. A fault raised by the default halt handler is
// counted and recorded on the span before the panic continues.
func (d *Domain) endSpan(span *tracing.Span, err *error) {
	if recovered := recover(); recovered != nil {
		spanErr := fmt.Errorf("panic: %v", recovered)
		if fault, ok := table.AsFault(recovered); ok {
			d.progress.Update(progress.Delta{Faults: 1})
			spanErr = fault
		}
		tracing.EndSpan(span, spanErr)
		panic(recovered)
	}
	tracing.EndSpan(span, *err)
}

func (d *Domain) startSpan(ctx context.Context, name, kind string, attrs map[string]string) (context.Context, *tracing.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(ctx, name, kind)
	if len(attrs) == 0 {
		attrs = map[string]string{}
	}
	attrs["domain"] = d.config.Name
	return ctx, span.WithAttributes(attrs)
}

func pidString(proc *process.Process) string {
	if proc == nil {
		return ""
	}
	return strconv.FormatUint(uint64(proc.ID), 10)
}
