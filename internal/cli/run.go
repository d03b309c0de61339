package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/annealer/internal/config"
	"github.com/copyleftdev/annealer/internal/optimization"
	"github.com/copyleftdev/annealer/internal/optimization/annealing"
	"github.com/copyleftdev/annealer/internal/optimization/functions"
)

func newRunCmd(cfg *config.Config, opts *options) *cobra.Command {
	var (
		function    string
		asJSON      bool
		withHistory bool
		flags       annealFlags
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Anneal a single function",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rf, err := loadRunFile(opts.configFile)
			if err != nil {
				return err
			}

			name := function
			if !cmd.Flags().Changed("function") && rf.Function != "" {
				name = rf.Function
			}
			surface, err := functions.Lookup(name)
			if err != nil {
				return err
			}

			run := cfg.AnnealingDefaults()
			run.Interval = surface.Interval
			if _, err := rf.apply(&run); err != nil {
				return err
			}
			flags.apply(cmd.Flags(), &run)

			logger, err := newLogger(cmd, cfg, opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := annealing.New(run, surface.Objective, annealing.WithLogger(logger.Named(surface.Name)))
			if err != nil {
				return err
			}
			res, err := a.Optimize()
			if err != nil {
				return fmt.Errorf("anneal %s: %w", surface.Name, err)
			}

			return writeResult(cmd, surface.Name, res, asJSON, withHistory)
		},
	}

	cmd.Flags().StringVarP(&function, "function", "f", "sphere", "function to minimise (see `annealer functions`)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&withHistory, "history", false, "include the state, energy and temperature history in JSON output")
	flags.register(cmd.Flags())
	return cmd
}

func writeResult(cmd *cobra.Command, name string, res *optimization.Result, asJSON, withHistory bool) error {
	if !asJSON {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, res.Summary())
		return err
	}

	out := *res
	if !withHistory {
		out.States, out.Energies, out.Temperatures = nil, nil, nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Function string `json:"function"`
		*optimization.Result
	}{name, &out})
}
