// Package tape parses the line-oriented event script cmd/schedsim feeds to
// a scheduler in lockstep: one line per dispatch, applied to whichever pid
// next() hands back, standing in for the external test harness spec.md
// keeps out of the core packages.
package tape

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/kornnellio/schedsim/pcb"
	"github.com/kornnellio/schedsim/vm"
)

// Kind is the action a Step tells the driver to take on behalf of
// whichever process is currently dispatched.
type Kind int

const (
	StepFork Kind = iota
	StepSleep
	StepWait
	StepSignal
	StepExit
	StepTimer
)

// Step is one line of a parsed tape.
type Step struct {
	Kind     Kind
	Priority int
	Units    int
	Event    pcb.EventID
}

// Reason converts a Step into the vm.StopReason the driver passes to
// Stop, given how many units were left in the dispatch when it fired.
func (s Step) Reason(remaining int) vm.StopReason {
	if s.Kind == StepTimer {
		return vm.ExpiredReason()
	}
	var sc vm.Syscall
	switch s.Kind {
	case StepFork:
		sc = vm.Syscall{Kind: vm.Fork, Priority: s.Priority}
	case StepSleep:
		sc = vm.Syscall{Kind: vm.Sleep, Units: s.Units}
	case StepWait:
		sc = vm.Syscall{Kind: vm.Wait, Event: s.Event}
	case StepSignal:
		sc = vm.Syscall{Kind: vm.Signal, Event: s.Event}
	case StepExit:
		sc = vm.Syscall{Kind: vm.Exit}
	}
	return vm.SyscallReason(sc, remaining)
}

// Parse reads a full tape, one Step per non-blank, non-comment line.
// Comment lines begin with '#'.
func Parse(r io.Reader) ([]Step, error) {
	var steps []Step
	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		step, err := parseLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "tape line %d %q", lineNo, line)
		}
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading tape")
	}
	return steps, nil
}

func parseLine(line string) (Step, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "fork":
		prio, err := requireInt(fields, 1, "fork")
		if err != nil {
			return Step{}, err
		}
		return Step{Kind: StepFork, Priority: prio}, nil

	case "sleep":
		units, err := requireInt(fields, 1, "sleep")
		if err != nil {
			return Step{}, err
		}
		return Step{Kind: StepSleep, Units: units}, nil

	case "wait":
		ev, err := requireEvent(fields, "wait")
		if err != nil {
			return Step{}, err
		}
		return Step{Kind: StepWait, Event: ev}, nil

	case "signal":
		ev, err := requireEvent(fields, "signal")
		if err != nil {
			return Step{}, err
		}
		return Step{Kind: StepSignal, Event: ev}, nil

	case "exit":
		return Step{Kind: StepExit}, nil

	case "timer":
		return Step{Kind: StepTimer}, nil

	default:
		return Step{}, errors.Errorf("unrecognized tape verb %q", fields[0])
	}
}

func requireInt(fields []string, idx int, verb string) (int, error) {
	if idx >= len(fields) {
		return 0, errors.Errorf("%s requires an integer argument", verb)
	}
	n, err := strconv.Atoi(fields[idx])
	if err != nil {
		return 0, errors.Wrapf(err, "%s argument %q", verb, fields[idx])
	}
	return n, nil
}

func requireEvent(fields []string, verb string) (pcb.EventID, error) {
	if len(fields) < 2 {
		return "", errors.Errorf("%s requires an event name", verb)
	}
	return pcb.EventID(fields[1]), nil
}

// String renders a Step back into tape notation, for logging.
func (s Step) String() string {
	switch s.Kind {
	case StepFork:
		return fmt.Sprintf("fork %d", s.Priority)
	case StepSleep:
		return fmt.Sprintf("sleep %d", s.Units)
	case StepWait:
		return fmt.Sprintf("wait %s", s.Event)
	case StepSignal:
		return fmt.Sprintf("signal %s", s.Event)
	case StepExit:
		return "exit"
	case StepTimer:
		return "timer"
	default:
		return "unknown"
	}
}
