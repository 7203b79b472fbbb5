package tape_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kornnellio/schedsim/internal/tape"
	"github.com/kornnellio/schedsim/vm"
)

func TestParseRecognizesEveryVerb(t *testing.T) {
	input := "# a comment\nfork 2\n\nsleep 5\nwait disk\nsignal disk\nexit\ntimer\n"
	steps, err := tape.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, steps, 6)

	assert.Equal(t, tape.StepFork, steps[0].Kind)
	assert.Equal(t, 2, steps[0].Priority)
	assert.Equal(t, tape.StepSleep, steps[1].Kind)
	assert.Equal(t, 5, steps[1].Units)
	assert.Equal(t, tape.StepWait, steps[2].Kind)
	assert.Equal(t, "disk", string(steps[2].Event))
	assert.Equal(t, tape.StepSignal, steps[3].Kind)
	assert.Equal(t, tape.StepExit, steps[4].Kind)
	assert.Equal(t, tape.StepTimer, steps[5].Kind)
}

func TestParseRejectsUnknownVerb(t *testing.T) {
	_, err := tape.Parse(strings.NewReader("jump 3\n"))
	assert.Error(t, err)
}

func TestParseRejectsMissingArgument(t *testing.T) {
	_, err := tape.Parse(strings.NewReader("fork\n"))
	assert.Error(t, err)
}

func TestStepReasonTimerIsExpired(t *testing.T) {
	step := tape.Step{Kind: tape.StepTimer}
	assert.True(t, step.Reason(0).Expired())
}

func TestStepReasonForkCarriesPriority(t *testing.T) {
	step := tape.Step{Kind: tape.StepFork, Priority: 4}
	reason := step.Reason(2)
	require.False(t, reason.Expired())
	assert.Equal(t, vm.Fork, reason.Syscall.Kind)
	assert.Equal(t, 4, reason.Syscall.Priority)
	assert.Equal(t, 2, reason.Remaining)
}
