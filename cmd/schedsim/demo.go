package main

import "github.com/kornnellio/schedsim/internal/tape"

// demoTape mirrors the teacher's setupDemo: in the absence of a config or
// command, gosv spun up a heartbeat process and a crasher process to show
// the supervisor restarting things. Here, absent a --tape file, pid 1
// forks a worker, the worker runs until its timeslice expires, and pid 1
// then exits while the worker is still alive, so the run ends in Panic.
func demoTape() []tape.Step {
	return []tape.Step{
		{Kind: tape.StepFork, Priority: 1},
		{Kind: tape.StepTimer},
		{Kind: tape.StepExit},
	}
}
