package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kornnellio/schedsim/internal/tape"
	"github.com/kornnellio/schedsim/listing"
	"github.com/kornnellio/schedsim/vm"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Drive a scheduler through an event tape and print the outcome",
		RunE:  runRun,
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	sched, err := buildScheduler()
	if err != nil {
		return err
	}

	steps, err := loadTape()
	if err != nil {
		return err
	}

	views := drive(sched, steps, true)

	out := os.Stdout
	if path := viper.GetString("write_output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "opening %s", path)
		}
		defer f.Close()
		if _, err := f.WriteString(listing.Table(views)); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
		logger.Infow("wrote final listing", "path", path, "processes", len(views))
		return nil
	}

	out.WriteString(listing.Table(views))
	return nil
}

func loadTape() ([]tape.Step, error) {
	path := viper.GetString("tape")
	if path == "" {
		logger.Info("no tape file given, running the built-in demo")
		return demoTape(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening tape %s", path)
	}
	defer f.Close()
	steps, err := tape.Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing tape %s", path)
	}
	return steps, nil
}

// drive plays steps against sched one dispatch at a time: each Run
// decision consumes the next tape step (or a synthetic timer once the
// tape is exhausted) until the scheduler reaches Done, Panic, Deadlock,
// or reports that nothing is runnable. When verbose is false (the "list"
// subcommand), only the terminal condition is logged, not every dispatch.
func drive(sched vm.Scheduler, steps []tape.Step, verbose bool) []listing.PCBView {
	var cursor int
	nextStep := func() tape.Step {
		if cursor >= len(steps) {
			return tape.Step{Kind: tape.StepTimer}
		}
		s := steps[cursor]
		cursor++
		return s
	}

	for {
		decision := sched.Next()
		switch decision.Kind {
		case vm.Run:
			step := nextStep()
			res := sched.Stop(step.Reason(0))
			if verbose {
				logger.Infow("dispatch", "pid", decision.Pid, "timeslice", decision.Timeslice, "step", step.String(), "result", res.Kind)
			}

		case vm.SleepDecision:
			logger.Infow("idle", "units", decision.Units)
			return sched.List()

		case vm.Deadlock:
			logger.Warn("deadlock: every remaining process is blocked on an event")
			return sched.List()

		case vm.Done:
			logger.Info("simulation complete: pid 1 exited alone")
			return sched.List()

		case vm.Panic:
			logger.Error("panic: pid 1 exited while other processes were still alive")
			return sched.List()
		}
	}
}
