package cpubudget_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kornnellio/schedsim/cpubudget"
)

func TestTimesliceDividesBudget(t *testing.T) {
	// spec.md §8 scenario 5: cpu_time=12, 3 ready => timeslice 4.
	assert.Equal(t, 4, cpubudget.Timeslice(12, 3, 1))
	// After one exits, 2 remain => timeslice 6.
	assert.Equal(t, 6, cpubudget.Timeslice(12, 2, 1))
}

func TestTimesliceFloorsAtMinimum(t *testing.T) {
	assert.Equal(t, 5, cpubudget.Timeslice(10, 10, 5))
}

func TestTimesliceUndefinedForZeroRunnable(t *testing.T) {
	assert.Equal(t, 7, cpubudget.Timeslice(100, 0, 7))
}
