// Package cpubudget divides a fixed CPU time budget across a runnable set,
// the pure-arithmetic core of what the teacher's cgroup.go did by writing
// "quota period" pairs to a cpu.max file. CFS uses it to recompute its
// dynamic timeslice every time the runnable set's size changes
// (spec.md §4.4); no real cgroup exists, there's only the division.
package cpubudget

// Timeslice returns the per-process share of cpuTime when n processes are
// runnable, floored at minRemaining. n <= 0 is undefined by spec.md §4.4
// ("if n = 0, timeslice is undefined") and returns minRemaining.
func Timeslice(cpuTime, n, minRemaining int) int {
	if n <= 0 {
		return minRemaining
	}
	share := cpuTime / n
	if share < minRemaining {
		return minRemaining
	}
	return share
}
