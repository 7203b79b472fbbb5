package bookkeeping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kornnellio/schedsim/internal/bookkeeping"
	"github.com/kornnellio/schedsim/pcb"
)

func TestTickAdvancesCurrentAndOthers(t *testing.T) {
	cur := pcb.New(1, 0)
	other := pcb.New(2, 0)

	bookkeeping.Tick(cur, []*pcb.PCB{other}, 3)

	assert.Equal(t, 3, cur.Timings.Execution)
	assert.Equal(t, 3, cur.Timings.Total)
	assert.Equal(t, 3, other.Timings.Total)
	assert.Zero(t, other.Timings.Execution)
}

func TestTickDecrementsSleepersOnly(t *testing.T) {
	cur := pcb.New(1, 0)
	sleeper := pcb.New(2, 0)
	sleeper.State = pcb.Waiting
	sleeper.SleepRemaining = 2

	bookkeeping.Tick(cur, []*pcb.PCB{sleeper}, 5)

	assert.Equal(t, 0, sleeper.SleepRemaining, "sleep remaining clamps at zero, never negative")
}

func TestApplySyscallCostChargesOneUnit(t *testing.T) {
	cur := pcb.New(1, 0)
	other := pcb.New(2, 0)

	bookkeeping.ApplySyscallCost(cur, []*pcb.PCB{other})

	assert.Equal(t, 1, cur.Timings.Total)
	assert.Equal(t, 1, cur.Timings.SyscallCount)
	assert.Equal(t, 1, cur.Timings.Execution)
	assert.Equal(t, 1, other.Timings.Total)
}

func TestCollectWakeableOnlyFullyElapsedSleepers(t *testing.T) {
	woken := pcb.New(1, 0)
	woken.State = pcb.Waiting
	woken.SleepRemaining = 0

	stillSleeping := pcb.New(2, 0)
	stillSleeping.State = pcb.Waiting
	stillSleeping.SleepRemaining = 1

	ev := pcb.EventID("e")
	eventWaiter := pcb.New(3, 0)
	eventWaiter.State = pcb.Waiting
	eventWaiter.WaitingFor = &ev

	got := bookkeeping.CollectWakeable([]*pcb.PCB{woken, stillSleeping, eventWaiter})
	assert.Equal(t, []*pcb.PCB{woken}, got)
}

func TestMinSleepRemaining(t *testing.T) {
	a := pcb.New(1, 0)
	a.State = pcb.Waiting
	a.SleepRemaining = 5
	b := pcb.New(2, 0)
	b.State = pcb.Waiting
	b.SleepRemaining = 2

	min, ok := bookkeeping.MinSleepRemaining([]*pcb.PCB{a, b})
	assert.True(t, ok)
	assert.Equal(t, 2, min)

	_, ok = bookkeeping.MinSleepRemaining(nil)
	assert.False(t, ok)
}
