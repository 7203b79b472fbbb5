// Command schedsim is the demonstration and manual-exploration harness for
// the scheduler core. It plays the role the teacher's main.go played for
// gosv: a CLI entrypoint with a flag/config-driven setup and a "no input
// given, run a demo" fallback, rebuilt on cobra/viper/zap instead of
// flag/encoding-json/fmt.Println.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	logger  *zap.SugaredLogger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "schedsim",
		Short: "Deterministic process scheduler simulator",
		Long: "schedsim drives the round-robin, priority-queue and CFS scheduler\n" +
			"cores against a scripted or file-supplied event tape, printing the\n" +
			"resulting decisions and PCB snapshots.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml/json/toml)")
	root.PersistentFlags().String("policy", "rr", "scheduler policy: rr, pq, cfs")
	root.PersistentFlags().Int("timeslice", 3, "fixed timeslice for rr/pq")
	root.PersistentFlags().Int("remaining", 1, "minimum remaining units worth continuing on")
	root.PersistentFlags().Int("cpu-slices", 12, "total cpu_time budget for cfs")
	root.PersistentFlags().String("tape", "", "path to an event tape file; empty runs the built-in demo")
	root.PersistentFlags().String("write-output", "", "path to write the final PCB listing to; empty prints to stdout")

	_ = viper.BindPFlag("policy", root.PersistentFlags().Lookup("policy"))
	_ = viper.BindPFlag("timeslice", root.PersistentFlags().Lookup("timeslice"))
	_ = viper.BindPFlag("remaining", root.PersistentFlags().Lookup("remaining"))
	_ = viper.BindPFlag("cpu_slices", root.PersistentFlags().Lookup("cpu-slices"))
	_ = viper.BindPFlag("tape", root.PersistentFlags().Lookup("tape"))
	_ = viper.BindPFlag("write_output", root.PersistentFlags().Lookup("write-output"))
	viper.SetEnvPrefix("SCHEDSIM")
	viper.AutomaticEnv()

	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	return root
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading config %s", cfgFile)
		}
	}
	return nil
}

func initLogger() error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	z, err := cfg.Build()
	if err != nil {
		return errors.Wrap(err, "building logger")
	}
	logger = z.Sugar()
	return initConfig()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
