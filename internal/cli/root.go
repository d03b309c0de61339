// Package cli implements the annealer command line: single runs, the
// benchmark suite and the function listing.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/copyleftdev/annealer/internal/config"
	"github.com/copyleftdev/annealer/internal/logging"
)

// options holds the persistent flags.
type options struct {
	configFile string
	logLevel   string
	logFormat  string
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. The environment is read once here.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "annealer",
		Short:         "Simulated annealing over two-variable functions",
		Long:          "annealer minimises two-variable objective surfaces with simulated annealing, either one function at a time or as a concurrent benchmark suite.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML run file overlaid on the environment defaults")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format (json, text); defaults to LOG_FORMAT")

	cfg, err := config.Load()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newRunCmd(cfg, opts),
		newSuiteCmd(cfg, opts),
		newFunctionsCmd(),
	)
	return rootCmd
}

// newLogger builds the logger for a command, writing to its stderr.
func newLogger(cmd *cobra.Command, cfg *config.Config, opts *options) (*zap.Logger, error) {
	levelName := cfg.Logging.Level
	if opts.logLevel != "" {
		levelName = opts.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	formatName := cfg.Logging.Format
	if opts.logFormat != "" {
		formatName = opts.logFormat
	}
	var format logging.Format
	switch strings.ToLower(formatName) {
	case "", string(logging.JSONFormat):
		format = logging.JSONFormat
	case string(logging.TextFormat):
		format = logging.TextFormat
	default:
		return nil, fmt.Errorf("unknown log format %q", formatName)
	}

	return logging.NewZapLogger(logging.NewWithFormat(level, format, cmd.ErrOrStderr())), nil
}
