// Package bookkeeping implements the stop() arithmetic shared by every
// scheduling policy (spec section 4.1): elapsed-time accounting, the
// syscall unit surcharge, and sleep-timer decrement. Each policy package
// still owns moving processes between its own ready/waiting
// representations — this package only mutates PCB fields.
package bookkeeping

import "github.com/kornnellio/schedsim/pcb"

// Tick applies elapsed dispatch time to current and every other live
// process. current.Execution and current.Total both advance by elapsed;
// every other live process's Total advances by elapsed, and any sleeper's
// SleepRemaining counts down by the same amount, clamped at zero.
func Tick(current *pcb.PCB, others []*pcb.PCB, elapsed int) {
	current.Timings.Execution += elapsed
	current.Timings.Total += elapsed
	decaySleepers(others, elapsed)
}

// ApplySyscallCost charges the fixed 1-unit cost every syscall incurs
// (spec.md §4.1 step 4): it counts toward the current process's Total,
// SyscallCount and Execution, toward every other live process's Total, and
// it decrements sleeper timers by one more unit.
func ApplySyscallCost(current *pcb.PCB, others []*pcb.PCB) {
	current.Timings.Total++
	current.Timings.SyscallCount++
	current.Timings.Execution++
	decaySleepers(others, 1)
}

func decaySleepers(others []*pcb.PCB, units int) {
	for _, p := range others {
		p.Timings.Total += units
		if p.IsSleeping() {
			p.SleepRemaining -= units
			if p.SleepRemaining < 0 {
				p.SleepRemaining = 0
			}
		}
	}
}

// CollectWakeable returns, in the order given, every process among others
// whose sleep timer has just reached zero. Callers move these from their
// waiting set into their ready representation, in their own policy order.
func CollectWakeable(others []*pcb.PCB) []*pcb.PCB {
	var woken []*pcb.PCB
	for _, p := range others {
		if p.Wakeable() {
			woken = append(woken, p)
		}
	}
	return woken
}

// MinSleepRemaining returns the smallest SleepRemaining among sleepers, and
// whether any sleeper exists at all. The schedulers' Next reports this
// value as the units of a Sleep decision; returning that decision does not
// itself advance the clock or any sleeper's timer, only Stop does.
func MinSleepRemaining(sleepers []*pcb.PCB) (int, bool) {
	min := 0
	found := false
	for _, p := range sleepers {
		if !p.IsSleeping() {
			continue
		}
		if !found || p.SleepRemaining < min {
			min = p.SleepRemaining
			found = true
		}
	}
	return min, found
}
