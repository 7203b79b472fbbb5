// Package listing formats deterministic PCB snapshots for introspection.
// Its table-building style is adapted from the teacher's ProcInfo.String(),
// which walked /proc/[pid]/* fields into a human-readable report; here it
// walks in-memory PCB fields instead.
package listing

import (
	"fmt"
	"strings"

	"github.com/kornnellio/schedsim/pcb"
)

// PCBView is a stable snapshot of a PCB at the moment list() was called.
// Every field spec.md §3-§4.6 names is present regardless of policy, so
// every view has the same shape: VRuntime is zero outside CFS, and
// MaxPriority carries whatever pcb.New set (the fork priority) even under
// policies that never read it.
type PCBView struct {
	Pid            int
	State          pcb.State
	Priority       int
	MaxPriority    int
	Total          int
	SyscallCount   int
	Execution      int
	SleepRemaining int
	WaitingFor     *pcb.EventID
	VRuntime       int
}

// FromPCB copies a PCB into a view. The copy is what makes the view a
// stable snapshot: later mutation of the source PCB never retroactively
// changes a view already handed to a caller.
func FromPCB(p *pcb.PCB) PCBView {
	return PCBView{
		Pid:            p.Pid,
		State:          p.State,
		Priority:       p.Priority,
		MaxPriority:    p.MaxPriority,
		Total:          p.Timings.Total,
		SyscallCount:   p.Timings.SyscallCount,
		Execution:      p.Timings.Execution,
		SleepRemaining: p.SleepRemaining,
		WaitingFor:     p.WaitingFor,
		VRuntime:       p.VRuntime,
	}
}

// Of builds a deterministic listing from the three PCB groups in the
// order spec.md §4.1 and §4.6 mandate: current first (if any), then ready
// in policy order, then waiting in insertion order.
func Of(current *pcb.PCB, ready []*pcb.PCB, waiting []*pcb.PCB) []PCBView {
	views := make([]PCBView, 0, len(ready)+len(waiting)+1)
	if current != nil {
		views = append(views, FromPCB(current))
	}
	for _, p := range ready {
		views = append(views, FromPCB(p))
	}
	for _, p := range waiting {
		views = append(views, FromPCB(p))
	}
	return views
}

// String renders a single view as a one-line row.
func (v PCBView) String() string {
	waitingFor := "-"
	if v.WaitingFor != nil {
		waitingFor = string(*v.WaitingFor)
	}
	return fmt.Sprintf(
		"pid=%-4d state=%-10s prio=%d/%d total=%d exec=%d syscalls=%d sleep=%d wait=%s vruntime=%d",
		v.Pid, v.State, v.Priority, v.MaxPriority, v.Total, v.Execution, v.SyscallCount,
		v.SleepRemaining, waitingFor, v.VRuntime,
	)
}

// Table renders a full snapshot as a multi-line report, one row per
// process, in the order the views were produced.
func Table(views []PCBView) string {
	var sb strings.Builder
	for _, v := range views {
		sb.WriteString(v.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
