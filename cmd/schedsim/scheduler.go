package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/kornnellio/schedsim/sched/cfs"
	"github.com/kornnellio/schedsim/sched/priority"
	"github.com/kornnellio/schedsim/sched/roundrobin"
	"github.com/kornnellio/schedsim/vm"
)

// buildScheduler constructs the policy named by the "policy" config key,
// the way the teacher's loadConfig built a Process from ServiceConfig.
func buildScheduler() (vm.Scheduler, error) {
	policy := viper.GetString("policy")
	minRemaining := viper.GetInt("remaining")

	switch policy {
	case "rr":
		return roundrobin.New(viper.GetInt("timeslice"), minRemaining), nil
	case "pq":
		return priority.New(viper.GetInt("timeslice"), minRemaining), nil
	case "cfs":
		return cfs.New(viper.GetInt("cpu_slices"), minRemaining), nil
	default:
		return nil, errors.Errorf("unknown policy %q, want one of rr, pq, cfs", policy)
	}
}
