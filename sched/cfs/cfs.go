// Package cfs implements the Completely Fair Scheduler of spec.md §4.4:
// min-vruntime selection over the ready set with a dynamic timeslice
// recomputed from a fixed CPU budget, adapted from the teacher's
// cgroup.go quota/period bookkeeping (now pure arithmetic, see
// cpubudget.Timeslice) divided by however many processes are runnable.
package cfs

import (
	"sort"

	"github.com/kornnellio/schedsim/cpubudget"
	"github.com/kornnellio/schedsim/internal/bookkeeping"
	"github.com/kornnellio/schedsim/listing"
	"github.com/kornnellio/schedsim/pcb"
	"github.com/kornnellio/schedsim/vm"
)

type Scheduler struct {
	cpuTime      int
	minRemaining int

	clock   int
	nextPid int

	current             *pcb.PCB
	remainingAfterStop  int
	dispatchedTimeslice int

	pendingRun *vm.Decision

	ready        []*pcb.PCB // insertion order; selection scans for min vruntime
	waiting      []*pcb.PCB
	minVRuntime  int
	panicked     bool
}

// New constructs a CFS scheduler with pid 1 seeded into Ready and a total
// CPU budget of cpuTime units to divide among runnable processes.
func New(cpuTime, minRemaining int) *Scheduler {
	s := &Scheduler{cpuTime: cpuTime, minRemaining: minRemaining, nextPid: 2}
	s.ready = []*pcb.PCB{pcb.New(1, 0)}
	return s
}

func (s *Scheduler) others(excluding *pcb.PCB) []*pcb.PCB {
	out := make([]*pcb.PCB, 0, len(s.ready)+len(s.waiting))
	for _, p := range s.ready {
		if p != excluding {
			out = append(out, p)
		}
	}
	for _, p := range s.waiting {
		if p != excluding {
			out = append(out, p)
		}
	}
	return out
}

func (s *Scheduler) sleepers() []*pcb.PCB {
	var out []*pcb.PCB
	for _, p := range s.waiting {
		if p.IsSleeping() {
			out = append(out, p)
		}
	}
	return out
}

// insertReady applies the sleep/wake correction of spec.md §4.4 before
// appending p to the ready set: vruntime can never fall below the current
// minimum, which is what stops a long sleeper from starving everyone else.
func (s *Scheduler) insertReady(p *pcb.PCB) {
	if p.VRuntime < s.minVRuntime {
		p.VRuntime = s.minVRuntime
	}
	p.State = pcb.Ready
	s.ready = append(s.ready, p)
	s.recomputeMinVRuntime()
}

func (s *Scheduler) recomputeMinVRuntime() {
	found := false
	min := 0
	if s.current != nil {
		min = s.current.VRuntime
		found = true
	}
	for _, p := range s.ready {
		if !found || p.VRuntime < min {
			min = p.VRuntime
			found = true
		}
	}
	if found {
		s.minVRuntime = min
	}
}

// popMinVRuntime removes and returns the earliest-inserted process among
// those with the smallest vruntime in ready.
func (s *Scheduler) popMinVRuntime() *pcb.PCB {
	best := 0
	for i := 1; i < len(s.ready); i++ {
		if s.ready[i].VRuntime < s.ready[best].VRuntime {
			best = i
		}
	}
	p := s.ready[best]
	s.ready = append(s.ready[:best], s.ready[best+1:]...)
	return p
}

// minReadyVRuntime reports the lowest vruntime among ready processes, and
// whether ready is non-empty.
func (s *Scheduler) minReadyVRuntime() (int, bool) {
	if len(s.ready) == 0 {
		return 0, false
	}
	min := s.ready[0].VRuntime
	for _, p := range s.ready[1:] {
		if p.VRuntime < min {
			min = p.VRuntime
		}
	}
	return min, true
}

func (s *Scheduler) wakeFrom(others []*pcb.PCB) {
	woken := bookkeeping.CollectWakeable(others)
	if len(woken) == 0 {
		return
	}
	set := make(map[*pcb.PCB]bool, len(woken))
	for _, p := range woken {
		set[p] = true
	}
	remaining := s.waiting[:0:0]
	for _, p := range s.waiting {
		if set[p] {
			s.insertReady(p)
		} else {
			remaining = append(remaining, p)
		}
	}
	s.waiting = remaining
}

func (s *Scheduler) signal(event pcb.EventID) {
	var remaining []*pcb.PCB
	for _, p := range s.waiting {
		if p.WaitingFor != nil && *p.WaitingFor == event {
			p.WaitingFor = nil
			s.insertReady(p)
		} else {
			remaining = append(remaining, p)
		}
	}
	s.waiting = remaining
}

func (s *Scheduler) Next() vm.Decision {
	if s.panicked {
		return vm.PanicDecision()
	}
	if s.pendingRun != nil {
		return *s.pendingRun
	}

	if s.current != nil {
		lowest, ok := s.minReadyVRuntime()
		canContinue := s.remainingAfterStop >= s.minRemaining && (!ok || lowest >= s.current.VRuntime)
		if canContinue {
			d := vm.RunDecision(s.current.Pid, s.remainingAfterStop)
			s.dispatchedTimeslice = s.remainingAfterStop
			s.current.State = pcb.Running
			s.pendingRun = &d
			return d
		}
		cur := s.current
		s.current = nil
		s.insertReady(cur)
	}

	if len(s.ready) == 0 {
		if units, ok := bookkeeping.MinSleepRemaining(s.sleepers()); ok {
			return vm.SleepFor(units)
		}
		if len(s.waiting) > 0 {
			return vm.DeadlockDecision()
		}
		return vm.DoneDecision()
	}

	next := s.popMinVRuntime()
	next.State = pcb.Running
	s.current = next
	s.dispatchedTimeslice = cpubudget.Timeslice(s.cpuTime, len(s.ready)+1, s.minRemaining)
	s.recomputeMinVRuntime()
	d := vm.RunDecision(next.Pid, s.dispatchedTimeslice)
	s.pendingRun = &d
	return d
}

func (s *Scheduler) Stop(reason vm.StopReason) vm.StopResult {
	if s.panicked || s.current == nil {
		return vm.Rejected()
	}
	s.pendingRun = nil
	cur := s.current
	s.current = nil

	var elapsed int
	if reason.Expired() {
		elapsed = s.dispatchedTimeslice
	} else {
		elapsed = s.dispatchedTimeslice - reason.Remaining
	}
	others := s.others(cur)
	bookkeeping.Tick(cur, others, elapsed)
	s.clock += elapsed
	cur.VRuntime += elapsed

	if reason.Expired() {
		s.insertReady(cur)
		s.wakeFrom(others)
		return vm.OK()
	}

	bookkeeping.ApplySyscallCost(cur, others)
	s.clock++
	cur.VRuntime++

	result := vm.OK()
	keepAsCandidate := true

	switch reason.Syscall.Kind {
	case vm.Fork:
		child := pcb.New(s.nextPid, reason.Syscall.Priority)
		s.nextPid++
		s.insertReady(child)
		result = vm.Forked(child.Pid)

	case vm.Sleep:
		cur.State = pcb.Waiting
		cur.WaitingFor = nil
		units := reason.Syscall.Units
		if units < 0 {
			units = 0
		}
		cur.SleepRemaining = units
		s.waiting = append(s.waiting, cur)
		keepAsCandidate = false

	case vm.Wait:
		cur.State = pcb.Waiting
		ev := reason.Syscall.Event
		cur.WaitingFor = &ev
		s.waiting = append(s.waiting, cur)
		keepAsCandidate = false

	case vm.Signal:
		s.signal(reason.Syscall.Event)

	case vm.Exit:
		keepAsCandidate = false
		if cur.Pid == 1 && (len(s.ready) > 0 || len(s.waiting) > 0) {
			s.panicked = true
		}
		cur.State = pcb.Terminated

	case vm.Empty:
		// no-op beyond the accounting already applied above
	}

	if keepAsCandidate {
		s.current = cur
		s.remainingAfterStop = reason.Remaining
	}

	// cur is included so a Sleep(0) caller is woken by this same stop.
	s.wakeFrom(append(others, cur))
	s.recomputeMinVRuntime()
	return result
}

// List implements vm.Scheduler. The ready set is listed in vruntime order,
// stable on insertion order for ties, as spec.md §4.6 requires — the live
// s.ready slice itself stays in insertion order so popMinVRuntime's
// tie-break keeps working.
func (s *Scheduler) List() []listing.PCBView {
	sorted := make([]*pcb.PCB, len(s.ready))
	copy(sorted, s.ready)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].VRuntime < sorted[j].VRuntime
	})
	return listing.Of(s.current, sorted, s.waiting)
}
