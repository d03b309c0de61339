// Package suite runs the annealer over several surfaces concurrently, one
// independent driver per surface.
package suite

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/copyleftdev/annealer/internal/optimization"
	"github.com/copyleftdev/annealer/internal/optimization/annealing"
	"github.com/copyleftdev/annealer/internal/optimization/functions"
)

// DefaultWorkers bounds the number of drivers running at once.
const DefaultWorkers = 4

// Report is the outcome of one surface in a suite run.
type Report struct {
	Function string               `json:"function"`
	Seed     uint64               `json:"seed"`
	Result   *optimization.Result `json:"result,omitempty"`
	Duration time.Duration        `json:"duration"`
	Err      error                `json:"-"`
}

// Summary formats the report as a single line.
func (r Report) Summary() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: failed: %v", r.Function, r.Err)
	}
	return fmt.Sprintf("%s: %s", r.Function, r.Result.Summary())
}

// Suite runs one shared configuration over a set of surfaces.
type Suite struct {
	config         annealing.Config
	workers        int
	sharedInterval bool
	observers      func(function string) optimization.Observer
	logger         *zap.Logger
}

// Option configures a Suite.
type Option func(*Suite)

// WithWorkers sets the concurrency limit. Values below one mean one.
func WithWorkers(n int) Option {
	return func(s *Suite) {
		if n < 1 {
			n = 1
		}
		s.workers = n
	}
}

// WithSharedInterval makes every case search the configured interval
// instead of its surface's default.
func WithSharedInterval() Option {
	return func(s *Suite) { s.sharedInterval = true }
}

// WithObserver attaches an observer, built per function, to every driver.
func WithObserver(f func(function string) optimization.Observer) Option {
	return func(s *Suite) { s.observers = f }
}

// WithLogger sets the logger handed to every driver.
func WithLogger(l *zap.Logger) Option {
	return func(s *Suite) { s.logger = l }
}

// New creates a Suite. The configuration is validated per case when the
// drivers are built.
func New(config annealing.Config, opts ...Option) *Suite {
	s := &Suite{
		config:  config,
		workers: DefaultWorkers,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run anneals every surface and returns one report per surface, in input
// order. The first failure is returned after all started drivers finish;
// cases not yet started when ctx is done are skipped.
func (s *Suite) Run(ctx context.Context, surfaces []functions.Surface) ([]Report, error) {
	reports := make([]Report, len(surfaces))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, surface := range surfaces {
		i, surface := i, surface
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				reports[i] = Report{Function: surface.Name, Err: err}
				return err
			}
			reports[i] = s.runCase(i, surface)
			return reports[i].Err
		})
	}

	err := g.Wait()
	return reports, err
}

func (s *Suite) runCase(i int, surface functions.Surface) Report {
	cfg := s.config
	if !s.sharedInterval {
		cfg.Interval = surface.Interval
	}
	if cfg.RandomSeed != 0 {
		cfg.RandomSeed += uint64(i)
	}

	report := Report{Function: surface.Name, Seed: cfg.RandomSeed}
	logger := s.logger.With(zap.String("function", surface.Name))

	opts := []annealing.Option{annealing.WithLogger(logger)}
	if s.observers != nil {
		opts = append(opts, annealing.WithObserver(s.observers(surface.Name)))
	}

	a, err := annealing.New(cfg, surface.Objective, opts...)
	if err != nil {
		report.Err = err
		return report
	}

	start := time.Now()
	report.Result, report.Err = a.Optimize()
	report.Duration = time.Since(start)

	if report.Err != nil {
		logger.Warn("suite case failed", zap.Error(report.Err))
	}
	return report
}

// WriteTable prints reports as an aligned table.
func WriteTable(w io.Writer, reports []Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FUNCTION\tSTOP\tITERATIONS\tREANNEALED\tX\tY\tENERGY")
	for _, r := range reports {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\tfailed\t-\t-\t-\t-\t%v\n", r.Function, r.Err)
			continue
		}
		res := r.Result
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%.6g\t%.6g\t%.6g\n",
			r.Function, res.Outcome, res.Iterations, res.Reannealed,
			res.Final.Point.X, res.Final.Point.Y, res.Final.Energy)
	}
	return tw.Flush()
}
