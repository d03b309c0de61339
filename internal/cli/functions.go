package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/annealer/internal/optimization/functions"
)

func newFunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the available functions and their default intervals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tINTERVAL\tBENCHMARK\tMINIMA")
			for _, s := range functions.All() {
				fmt.Fprintf(tw, "%s\t[%g, %g]\t%t\t%v\n", s.Name, s.Interval.Lo, s.Interval.Hi, s.Benchmark, s.Minima)
			}
			return tw.Flush()
		},
	}
}
