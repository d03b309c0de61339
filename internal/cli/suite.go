package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/annealer/internal/config"
	"github.com/copyleftdev/annealer/internal/optimization/functions"
	"github.com/copyleftdev/annealer/internal/suite"
)

func newSuiteCmd(cfg *config.Config, opts *options) *cobra.Command {
	var (
		workers int
		asJSON  bool
		flags   annealFlags
	)

	cmd := &cobra.Command{
		Use:   "suite",
		Short: "Anneal the benchmark functions concurrently with one configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rf, err := loadRunFile(opts.configFile)
			if err != nil {
				return err
			}

			run := cfg.AnnealingDefaults()
			fileInterval, err := rf.apply(&run)
			if err != nil {
				return err
			}
			flagInterval := flags.apply(cmd.Flags(), &run)

			n := cfg.Annealing.Workers
			if rf.Workers > 0 {
				n = rf.Workers
			}
			if cmd.Flags().Changed("workers") {
				n = workers
			}

			logger, err := newLogger(cmd, cfg, opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			suiteOpts := []suite.Option{suite.WithWorkers(n), suite.WithLogger(logger)}
			if fileInterval || flagInterval {
				suiteOpts = append(suiteOpts, suite.WithSharedInterval())
			}

			reports, runErr := suite.New(run, suiteOpts...).Run(cmd.Context(), functions.Benchmarks())

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(reports); err != nil {
					return err
				}
			} else if err := suite.WriteTable(cmd.OutOrStdout(), reports); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", suite.DefaultWorkers, "drivers running at once")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the reports as JSON")
	flags.register(cmd.Flags())
	return cmd
}
