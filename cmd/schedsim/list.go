package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kornnellio/schedsim/listing"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Drive the configured scheduler to quiescence and print the final PCB listing",
		RunE:  runList,
	}
}

// runList replays the same tape as "run" but skips the per-dispatch log
// lines, printing only the final snapshot — useful for scripting against
// the listing output alone.
func runList(cmd *cobra.Command, args []string) error {
	sched, err := buildScheduler()
	if err != nil {
		return err
	}
	steps, err := loadTape()
	if err != nil {
		return err
	}
	views := drive(sched, steps, false)
	os.Stdout.WriteString(listing.Table(views))
	return nil
}
