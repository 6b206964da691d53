package main

import (
	"github.com/rpgo/allocation-planner/internal/calculation"
	"github.com/rpgo/allocation-planner/internal/config"
	"github.com/rpgo/allocation-planner/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries state shared by every subcommand
type app struct {
	env        config.Environment
	configPath string
	logLevel   string
	logPretty  bool
	log        zerolog.Logger
	engine     *calculation.CalculationEngine
}

func newRootCmd() *cobra.Command {
	a := &app{
		env:    config.LoadEnvironment(".env"),
		engine: calculation.NewCalculationEngine(),
	}

	root := &cobra.Command{
		Use:   "planner",
		Short: "Asset allocation and rebalancing planner",
		Long: `planner computes portfolio metrics, places target dollars into taxable,
tax-deferred and Roth accounts, and lists the buys and sells each account needs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.log = logger.New(logger.Config{Level: a.logLevel, Pretty: a.logPretty, Out: cmd.ErrOrStderr()})
			logger.SetGlobalLogger(a.log)
			a.engine.SetLogger(calculation.NewZerologLogger(a.log))
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", a.env.ConfigPath, "portfolio YAML or JSON file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", a.env.LogLevel, "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&a.logPretty, "log-pretty", a.env.LogPretty, "human-readable log output")

	root.AddCommand(
		newPlanCmd(a),
		newMetricsCmd(a),
		newGlidePathCmd(a),
		newExampleCmd(),
		newValidateCmd(a),
		newFormatsCmd(),
	)
	return root
}
