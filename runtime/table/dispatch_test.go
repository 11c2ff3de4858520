package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/procman/model/process"
	"github.com/viant/procman/service/factory"
	"github.com/viant/procman/service/scheduler"
)

func TestTable_Scenario(t *testing.T) {
	aTable, rec := newTestTable(t, 8, nil)
	a, err := aTable.Create(0x1000)
	require.NoError(t, err)
	b, err := aTable.Create(0x2000)
	require.NoError(t, err)
	assert.Equal(t, 2, aTable.Len())

	aTable.Schedule(a)
	assert.Same(t, a, aTable.Current())
	assert.Nil(t, aTable.Previous())

	aTable.Schedule(b)
	assert.Same(t, b, aTable.Current())
	assert.Same(t, a, aTable.Previous())

	aTable.Remove(a)
	_, ok := aTable.Get(a.ID)
	assert.False(t, ok)
	assert.Same(t, b, aTable.Current())
	assert.Nil(t, aTable.Previous())

	aTable.Remove(b)
	assert.Nil(t, aTable.Current())
	assert.Empty(t, rec.faults)
}

func TestTable_ScheduleInvariant(t *testing.T) {
	aTable, rec := newTestTable(t, 8, nil)
	for i := 0; i < 3; i++ {
		_, err := aTable.Create(process.Address(0x1000 * (i + 1)))
		require.NoError(t, err)
	}
	var before *process.Process
	for i := 0; i < 7; i++ {
		before = aTable.Current()
		next := aTable.Schedule(nil)
		require.NotNil(t, next)
		assert.Same(t, next, aTable.Current())
		assert.Same(t, before, aTable.Previous())
		_, ok := aTable.Get(next.ID)
		assert.True(t, ok)
	}
	assert.Empty(t, rec.faults)
}

func TestTable_ScheduleSelectorChoice(t *testing.T) {
	var chosen *process.Process
	selector := scheduler.Func(func(entries []*process.Process) *process.Process {
		chosen = entries[len(entries)-1]
		return chosen
	})
	aTable, _ := newTestTable(t, 4, selector)
	_, _ = aTable.Create(0x1000)
	_, _ = aTable.Create(0x2000)
	next := aTable.Schedule(nil)
	assert.Same(t, chosen, next)
	assert.Equal(t, process.Address(0x2000), next.Entry)
}

func TestTable_IdleFallback(t *testing.T) {
	aTable, rec := newTestTable(t, 4, scheduler.None)
	idle, err := aTable.Create(0x0)
	require.NoError(t, err)
	worker, err := aTable.Create(0x1000)
	require.NoError(t, err)
	aTable.SetIdle(idle)
	assert.Same(t, idle, aTable.Idle())

	aTable.Schedule(worker)
	next := aTable.Schedule(nil)
	assert.Same(t, idle, next)
	assert.Same(t, idle, aTable.Current())
	assert.Same(t, worker, aTable.Previous())
	assert.Empty(t, rec.faults)
}

func TestTable_IdleOnlyAsFallback(t *testing.T) {
	var testCases = []struct {
		description string
		selector    scheduler.Selector
	}{
		{description: "round-robin", selector: scheduler.NewRoundRobin()},
		{description: "priority", selector: scheduler.NewPriority()},
	}
	for _, testCase := range testCases {
		aTable, rec := newTestTable(t, 4, testCase.selector)
		idle, err := aTable.Create(0x0)
		require.NoError(t, err, testCase.description)
		aTable.SetIdle(idle)
		a, _ := aTable.Create(0x1000)
		b, _ := aTable.Create(0x2000)

		for i := 0; i < 6; i++ {
			next := aTable.Schedule(nil)
			assert.NotSame(t, idle, next, testCase.description)
		}
		aTable.Remove(a)
		aTable.Remove(b)
		assert.Same(t, idle, aTable.Schedule(nil), testCase.description)
		assert.Empty(t, rec.faults, testCase.description)
	}
}

func TestTable_ScheduleFaults(t *testing.T) {
	var testCases = []struct {
		description string
		selector    scheduler.Selector
		setup       func(aTable *Table) *process.Process
		expectKind  FaultKind
	}{
		{
			description: "no runnable and no idle",
			selector:    scheduler.None,
			setup:       func(aTable *Table) *process.Process { return nil },
			expectKind:  FaultNoRunnable,
		},
		{
			description: "explicit target never registered",
			selector:    scheduler.NewRoundRobin(),
			setup: func(aTable *Table) *process.Process {
				return process.New(99, 0x9000)
			},
			expectKind: FaultStaleReference,
		},
		{
			description: "explicit target already removed",
			selector:    scheduler.NewRoundRobin(),
			setup: func(aTable *Table) *process.Process {
				proc, _ := aTable.Create(0x1000)
				aTable.Remove(proc)
				return proc
			},
			expectKind: FaultStaleReference,
		},
		{
			description: "selector returns foreign process",
			selector: scheduler.Func(func([]*process.Process) *process.Process {
				return process.New(42, 0x4200)
			}),
			setup:      func(aTable *Table) *process.Process { return nil },
			expectKind: FaultStaleReference,
		},
		{
			description: "idle process removed",
			selector:    scheduler.None,
			setup: func(aTable *Table) *process.Process {
				idle, _ := aTable.Create(0x0)
				aTable.SetIdle(idle)
				aTable.Remove(idle)
				return nil
			},
			expectKind: FaultNoRunnable,
		},
		{
			description: "idle process never registered",
			selector:    scheduler.None,
			setup: func(aTable *Table) *process.Process {
				aTable.SetIdle(process.New(500, 0x0))
				return nil
			},
			expectKind: FaultStaleReference,
		},
	}
	for _, testCase := range testCases {
		aTable, rec := newTestTable(t, 4, testCase.selector)
		current, err := aTable.Create(0x8000)
		require.NoError(t, err, testCase.description)
		aTable.Schedule(current)
		target := testCase.setup(aTable)

		next := aTable.Schedule(target)
		assert.Nil(t, next, testCase.description)
		require.Len(t, rec.faults, 1, testCase.description)
		assert.Equal(t, testCase.expectKind, rec.last().Kind, testCase.description)
		assert.Same(t, current, aTable.Current(), "dispatch state must be untouched: "+testCase.description)
		assert.Nil(t, aTable.Previous(), testCase.description)
	}
}

func TestTable_ScheduleDefaultHaltPanics(t *testing.T) {
	aTable, err := New(2, factory.NewSequential(), scheduler.None)
	require.NoError(t, err)
	defer func() {
		recovered := recover()
		require.NotNil(t, recovered)
		fault, ok := AsFault(recovered)
		require.True(t, ok)
		assert.Equal(t, FaultNoRunnable, fault.Kind)
		assert.True(t, IsFault(fault))
		assert.Nil(t, aTable.Current())
	}()
	aTable.Schedule(nil)
	t.Fatal("expected halt")
}
