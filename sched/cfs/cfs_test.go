package cfs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kornnellio/schedsim/pcb"
	"github.com/kornnellio/schedsim/sched/cfs"
	"github.com/kornnellio/schedsim/vm"
)

func TestSingleProcessExitsImmediatelyIsDone(t *testing.T) {
	s := cfs.New(12, 1)
	d := s.Next()
	require.Equal(t, 1, d.Pid)
	require.Equal(t, 12, d.Timeslice, "one runnable process takes the whole budget")
	require.Equal(t, vm.StopOK, s.Stop(vm.SyscallReason(vm.Syscall{Kind: vm.Exit}, 0)).Kind)
	assert.Equal(t, vm.Done, s.Next().Kind)
}

// TestDynamicTimesliceShrinksAsMoreProcessesBecomeRunnable exercises
// spec.md §8 scenario 5: a fixed CPU budget divided across however many
// processes are ready plus the one about to be dispatched.
func TestDynamicTimesliceShrinksAsMoreProcessesBecomeRunnable(t *testing.T) {
	s := cfs.New(12, 1)

	d := s.Next()
	require.Equal(t, 1, d.Pid)
	require.Equal(t, 12, d.Timeslice)
	res := s.Stop(vm.SyscallReason(vm.Syscall{Kind: vm.Fork, Priority: 0}, 8))
	require.Equal(t, 2, res.NewPid)

	// pid2 starts at vruntime 0 while pid1 has already accrued some; the
	// scheduler must switch to the least-run process rather than let pid1
	// continue on its leftover timeslice.
	d = s.Next()
	require.Equal(t, 2, d.Pid, "pid2's vruntime 0 is lower than pid1's accrued vruntime")
	require.Equal(t, 6, d.Timeslice, "budget 12 split across 2 runnable processes")

	require.Equal(t, vm.StopOK, s.Stop(vm.SyscallReason(vm.Syscall{Kind: vm.Empty}, 0)).Kind)

	d = s.Next()
	require.Equal(t, 1, d.Pid, "pid1's vruntime is now lower than pid2's after pid2 ran")
	require.Equal(t, 6, d.Timeslice)
}

// TestSleepWakeVRuntimeCorrection exercises the §4.4 invariant that a
// process waking from a long sleep never keeps the stale low vruntime it
// had when it went to sleep: insertReady clamps it up to the current
// minimum so it can't monopolize the CPU on wake.
func TestSleepWakeVRuntimeCorrection(t *testing.T) {
	s := cfs.New(12, 1)

	d := s.Next()
	require.Equal(t, 1, d.Pid)
	res := s.Stop(vm.SyscallReason(vm.Syscall{Kind: vm.Fork, Priority: 0}, 2))
	require.Equal(t, 2, res.NewPid)

	d = s.Next()
	require.Equal(t, 2, d.Pid)
	require.Equal(t, vm.StopOK, s.Stop(vm.SyscallReason(vm.Syscall{Kind: vm.Sleep, Units: 20}, 0)).Kind)

	// pid1 now runs alone, repeatedly, accruing far more vruntime than the
	// sleeping pid2 had when it went under.
	d = s.Next()
	require.Equal(t, 1, d.Pid)
	require.Equal(t, vm.StopOK, s.Stop(vm.SyscallReason(vm.Syscall{Kind: vm.Empty}, 0)).Kind)

	d = s.Next()
	require.Equal(t, 1, d.Pid, "pid2 is still asleep")
	require.Equal(t, vm.StopOK, s.Stop(vm.SyscallReason(vm.Syscall{Kind: vm.Empty}, 0)).Kind)

	views := s.List()
	var found bool
	var vruntime int
	for _, v := range views {
		if v.Pid == 2 {
			found = true
			vruntime = v.VRuntime
		}
	}
	require.True(t, found)
	assert.GreaterOrEqual(t, vruntime, 20, "a woken sleeper is corrected up to the current minimum vruntime, not left stale")
}

func TestWaitWithoutSignalIsDeadlock(t *testing.T) {
	s := cfs.New(12, 1)
	d := s.Next()
	require.Equal(t, 1, d.Pid)
	require.Equal(t, vm.StopOK, s.Stop(vm.SyscallReason(vm.Syscall{Kind: vm.Wait, Event: pcb.EventID("x")}, 0)).Kind)
	assert.Equal(t, vm.Deadlock, s.Next().Kind)
}

func TestPid1ExitWithSurvivorsPanics(t *testing.T) {
	s := cfs.New(12, 1)
	d := s.Next()
	require.Equal(t, 1, d.Pid)
	res := s.Stop(vm.SyscallReason(vm.Syscall{Kind: vm.Fork, Priority: 0}, 0))
	require.Equal(t, 2, res.NewPid)

	// The fresh pid2 starts at vruntime 0, so it outranks pid1 immediately.
	d = s.Next()
	require.Equal(t, 2, d.Pid)
	require.Equal(t, vm.StopOK, s.Stop(vm.SyscallReason(vm.Syscall{Kind: vm.Wait, Event: pcb.EventID("e")}, 0)).Kind)

	// pid2 is now parked waiting on an event no one signals; pid1 is the
	// only runnable process and exits while pid2 is still alive.
	d = s.Next()
	require.Equal(t, 1, d.Pid)
	require.Equal(t, vm.StopOK, s.Stop(vm.SyscallReason(vm.Syscall{Kind: vm.Exit}, 0)).Kind)

	assert.Equal(t, vm.Panic, s.Next().Kind)
}

func TestListShowsDispatchedProcessAsRunning(t *testing.T) {
	s := cfs.New(12, 1)
	d := s.Next()
	require.Equal(t, 1, d.Pid)
	views := s.List()
	require.Len(t, views, 1)
	assert.Equal(t, 1, views[0].Pid)
	assert.Equal(t, pcb.Running, views[0].State)
}
