// Package vm defines the virtual-machine protocol every scheduling policy
// implements: the syscall enum, the stop/syscall results, the scheduling
// decision sum type, and the Scheduler contract itself (spec.md §4.1).
package vm

import (
	"errors"

	"github.com/kornnellio/schedsim/listing"
	"github.com/kornnellio/schedsim/pcb"
)

// SyscallKind enumerates the syscalls stop() recognizes (spec.md §4.1).
type SyscallKind int

const (
	Fork SyscallKind = iota
	Sleep
	Wait
	Signal
	Exit
	Empty
)

func (k SyscallKind) String() string {
	switch k {
	case Fork:
		return "fork"
	case Sleep:
		return "sleep"
	case Wait:
		return "wait"
	case Signal:
		return "signal"
	case Exit:
		return "exit"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

// Syscall carries the payload for whichever SyscallKind was issued. Only
// the field relevant to Kind is meaningful.
type Syscall struct {
	Kind     SyscallKind
	Priority int          // Fork: priority of the new child
	Units    int          // Sleep: units to sleep
	Event    pcb.EventID  // Wait/Signal: event name
}

// StopReason is why the currently running process stopped: either it
// issued a Syscall with some timeslice Remaining, or its dispatch Expired.
type StopReason struct {
	Syscall   *Syscall // nil means Expired
	Remaining int      // timeslice left at the moment of the syscall
}

// ExpiredReason reports that the current dispatch ran out its full
// timeslice.
func ExpiredReason() StopReason { return StopReason{} }

// SyscallReason reports a voluntary stop via syscall, with remaining
// timeslice at the moment it was issued.
func SyscallReason(sc Syscall, remaining int) StopReason {
	return StopReason{Syscall: &sc, Remaining: remaining}
}

// Expired reports whether this reason was a timeslice expiry rather than a
// syscall.
func (r StopReason) Expired() bool { return r.Syscall == nil }

// StopResultKind enumerates the shapes stop() can report back to the VM.
type StopResultKind int

const (
	StopOK StopResultKind = iota
	StopForked
	StopRejected
)

// StopResult is what stop() returns: a plain acknowledgement, a new pid on
// fork, or a rejection when the scheduler is no longer accepting input
// (panicked, or called with no running process — spec.md §7).
type StopResult struct {
	Kind   StopResultKind
	NewPid int
}

// OK builds a plain success result.
func OK() StopResult { return StopResult{Kind: StopOK} }

// Forked builds a result reporting the new child's pid.
func Forked(pid int) StopResult { return StopResult{Kind: StopForked, NewPid: pid} }

// Rejected builds a no-op rejection result (protocol misuse or a
// stop() call after the scheduler entered Panic/Done).
func Rejected() StopResult { return StopResult{Kind: StopRejected} }

// DecisionKind enumerates the SchedulingDecision sum type of spec.md §3.
type DecisionKind int

const (
	Run DecisionKind = iota
	SleepDecision
	Deadlock
	Done
	Panic
)

// Decision is what next() returns.
type Decision struct {
	Kind      DecisionKind
	Pid       int // Run
	Timeslice int // Run
	Units     int // SleepDecision
}

func RunDecision(pid, timeslice int) Decision {
	return Decision{Kind: Run, Pid: pid, Timeslice: timeslice}
}

func SleepFor(units int) Decision {
	return Decision{Kind: SleepDecision, Units: units}
}

func DeadlockDecision() Decision { return Decision{Kind: Deadlock} }
func DoneDecision() Decision     { return Decision{Kind: Done} }
func PanicDecision() Decision    { return Decision{Kind: Panic} }

// ErrNoCurrentProcess names the protocol-misuse case of stop() being called
// while nothing is running. The schedulers report that case as a Rejected
// StopResult; none of them returns this error.
var ErrNoCurrentProcess = errors.New("vm: stop called with no running process")

// Scheduler is the capability set every policy (round robin, priority
// queue, CFS) implements (spec.md §4.1).
type Scheduler interface {
	// Next chooses what to run next. Idempotent without an intervening
	// Stop: calling it twice in a row returns the same decision and does
	// not mutate scheduler state.
	Next() Decision

	// Stop informs the scheduler that the current dispatch ended.
	Stop(reason StopReason) StopResult

	// List enumerates PCB-views: current first (if any), then ready in
	// policy order, then waiting in insertion order.
	List() []listing.PCBView
}
