// Package priority implements the aging Priority Queue scheduler of
// spec.md §4.3: the same FIFO skeleton as Round Robin, but the ready set
// is partitioned by effective priority and every Ready/Waiting transition
// nudges that priority up or down by one level.
//
// Per spec.md §9's design note, the ready set is kept as a single slice
// scanned for the highest priority on each dispatch rather than a vector
// of per-level queues — simpler, and still FIFO-within-level because
// elements are never reordered, only appended and removed.
package priority

import (
	"github.com/kornnellio/schedsim/internal/bookkeeping"
	"github.com/kornnellio/schedsim/listing"
	"github.com/kornnellio/schedsim/pcb"
	"github.com/kornnellio/schedsim/vm"
)

type Scheduler struct {
	timeslice    int
	minRemaining int

	clock   int
	nextPid int

	current             *pcb.PCB
	dispatchedTimeslice int
	pendingRun          *vm.Decision

	ready   []*pcb.PCB
	waiting []*pcb.PCB

	// carry mirrors roundrobin's: leftover timeslice a process had when a
	// syscall returned it to Ready, spent down on its next dispatch if it
	// still clears minRemaining. Priority selection always runs first —
	// carry only affects how long the dispatch lasts, never who gets it.
	carry map[int]int

	panicked bool
}

func New(timeslice, minRemaining int) *Scheduler {
	s := &Scheduler{timeslice: timeslice, minRemaining: minRemaining, nextPid: 2, carry: map[int]int{}}
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

// popHighest removes and returns the earliest-inserted process among those
// at the highest priority level present in ready.
func (s *Scheduler) popHighest() *pcb.PCB {
	best := 0
	for i := 1; i < len(s.ready); i++ {
		if s.ready[i].Priority > s.ready[best].Priority {
			best = i
		}
	}
	p := s.ready[best]
	s.ready = append(s.ready[:best], s.ready[best+1:]...)
	return p
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
			p.BumpPriority()
			p.State = pcb.Ready
			s.ready = append(s.ready, p)
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
			p.BumpPriority()
			p.State = pcb.Ready
			p.WaitingFor = nil
			s.ready = append(s.ready, p)
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

	if len(s.ready) == 0 {
		if units, ok := bookkeeping.MinSleepRemaining(s.sleepers()); ok {
			return vm.SleepFor(units)
		}
		if len(s.waiting) > 0 {
			return vm.DeadlockDecision()
		}
		return vm.DoneDecision()
	}

	next := s.popHighest()

	ts := s.timeslice
	if c, ok := s.carry[next.Pid]; ok {
		delete(s.carry, next.Pid)
		if c >= s.minRemaining {
			ts = c
		}
	}

	next.State = pcb.Running
	s.current = next
	s.dispatchedTimeslice = ts
	d := vm.RunDecision(next.Pid, ts)
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

	if reason.Expired() {
		cur.DecayPriority()
		cur.State = pcb.Ready
		delete(s.carry, cur.Pid)
		s.ready = append(s.ready, cur)
		s.wakeFrom(others)
		return vm.OK()
	}

	bookkeeping.ApplySyscallCost(cur, others)
	s.clock++

	result := vm.OK()
	requeueCurrent := true

	switch reason.Syscall.Kind {
	case vm.Fork:
		child := pcb.New(s.nextPid, reason.Syscall.Priority)
		s.nextPid++
		s.ready = append(s.ready, child)
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
		requeueCurrent = false

	case vm.Wait:
		cur.State = pcb.Waiting
		ev := reason.Syscall.Event
		cur.WaitingFor = &ev
		s.waiting = append(s.waiting, cur)
		requeueCurrent = false

	case vm.Signal:
		s.signal(reason.Syscall.Event)

	case vm.Exit:
		requeueCurrent = false
		if cur.Pid == 1 && (len(s.ready) > 0 || len(s.waiting) > 0) {
			s.panicked = true
		}
		cur.State = pcb.Terminated

	case vm.Empty:
		// no-op beyond the accounting already applied above
	}

	if requeueCurrent {
		cur.BumpPriority()
		cur.State = pcb.Ready
		s.carry[cur.Pid] = reason.Remaining
		s.ready = append(s.ready, cur)
	}

	// cur is included so a Sleep(0) caller is woken by this same stop.
	s.wakeFrom(append(others, cur))
	return result
}

func (s *Scheduler) List() []listing.PCBView {
	return listing.Of(s.current, s.ready, s.waiting)
}
