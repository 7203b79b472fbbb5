// Package roundrobin implements the plain FIFO scheduler of spec.md §4.2:
// a single ready queue, a configured timeslice, and a minimum-remaining
// threshold below which a partially-used timeslice isn't worth continuing.
package roundrobin

import (
	"github.com/kornnellio/schedsim/internal/bookkeeping"
	"github.com/kornnellio/schedsim/listing"
	"github.com/kornnellio/schedsim/pcb"
	"github.com/kornnellio/schedsim/vm"
)

// Scheduler is the Round Robin policy. It satisfies vm.Scheduler.
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

	// carry records, by pid, the leftover timeslice a process had when a
	// syscall (other than Sleep/Wait/Exit) returned it to Ready. next()
	// spends it down to a dispatch if it still clears minRemaining;
	// otherwise the process gets the full configured timeslice like
	// anyone else. An Expired stop never populates this entry.
	carry map[int]int

	panicked bool
}

// New constructs a Round Robin scheduler with pid 1 seeded into Ready, as
// spec.md §6.1 requires of every factory.
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
			p.State = pcb.Ready
			s.ready = append(s.ready, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	s.waiting = remaining
}

// Next implements vm.Scheduler.
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

	next := s.ready[0]
	s.ready = s.ready[1:]

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

// Stop implements vm.Scheduler.
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
		cur.State = pcb.Ready
		s.carry[cur.Pid] = reason.Remaining
		s.ready = append(s.ready, cur)
	}

	// cur is included so a Sleep(0) caller is woken by this same stop.
	s.wakeFrom(append(others, cur))
	return result
}

func (s *Scheduler) signal(event pcb.EventID) {
	var remaining []*pcb.PCB
	for _, p := range s.waiting {
		if p.WaitingFor != nil && *p.WaitingFor == event {
			p.State = pcb.Ready
			p.WaitingFor = nil
			s.ready = append(s.ready, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	s.waiting = remaining
}

// List implements vm.Scheduler.
func (s *Scheduler) List() []listing.PCBView {
	return listing.Of(s.current, s.ready, s.waiting)
}
