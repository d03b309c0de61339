// Package annealing implements the simulated annealing driver: a finite
// state machine that proposes, evaluates, cools, checks termination,
// reanneals and accepts, until one of the termination criteria fires.
package annealing

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/copyleftdev/annealer/internal/optimization"
	"github.com/copyleftdev/annealer/internal/optimization/acceptance"
	"github.com/copyleftdev/annealer/internal/optimization/cooling"
	"github.com/copyleftdev/annealer/internal/optimization/move"
	"github.com/copyleftdev/annealer/internal/optimization/termination"
)

// Annealer implements simulated annealing over a two-dimensional interval.
// An Annealer is not safe for concurrent use; run independent searches on
// independent Annealers.
type Annealer struct {
	// Configuration
	config Config

	// Strategies
	objective optimization.Objective
	mover     optimization.Mover
	cooler    optimization.Cooler
	acceptor  optimization.Acceptor

	evaluator *termination.Evaluator
	reanneal  reannealer

	// Random source shared with the default mover
	src rand.Source
	rng *rand.Rand

	observers []optimization.Observer
	logger    *zap.Logger

	// Run state
	state       optimization.Point
	temperature float64
	k           int64
	total       int64
	history     *history
	reanneals   int
	best        optimization.Solution
}

var _ optimization.Optimizer = (*Annealer)(nil)

// Option configures an Annealer.
type Option func(*Annealer)

// WithMover replaces the default Boltzmann mover.
func WithMover(m optimization.Mover) Option {
	return func(a *Annealer) { a.mover = m }
}

// WithCooler replaces the default geometric schedule.
func WithCooler(c optimization.Cooler) Option {
	return func(a *Annealer) { a.cooler = c }
}

// WithAcceptor replaces the default Boltzmann acceptance model.
func WithAcceptor(acc optimization.Acceptor) Option {
	return func(a *Annealer) { a.acceptor = acc }
}

// WithSource sets the random source, overriding Config.RandomSeed.
func WithSource(src rand.Source) Option {
	return func(a *Annealer) { a.src = src }
}

// WithObserver registers an observer for driver events.
func WithObserver(o optimization.Observer) Option {
	return func(a *Annealer) { a.observers = append(a.observers, o) }
}

// WithLogger sets the logger used for verbose progress output.
func WithLogger(l *zap.Logger) Option {
	return func(a *Annealer) { a.logger = l }
}

// New creates an Annealer. The configuration is validated here; an invalid
// one yields an error wrapping optimization.ErrInvalidConfig.
func New(config Config, objective optimization.Objective, opts ...Option) (*Annealer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if objective == nil {
		return nil, invalid("objective is required")
	}

	a := &Annealer{
		config:    config,
		objective: objective,
		reanneal:  reannealer{tolerance: config.ReannTol},
		evaluator: termination.NewEvaluator(termination.Limits{
			MaxIterations:  config.KMax,
			ToleranceValue: config.ToleranceValue,
			ToleranceIter:  config.ToleranceIter,
			ObjectiveFloor: config.ObjFnLimit,
		}),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.src == nil {
		seed := config.RandomSeed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		a.src = rand.NewPCG(seed, seed)
	}
	a.rng = rand.New(a.src)

	if a.mover == nil {
		a.mover = move.NewBoltzmann(a.src)
	}
	if a.cooler == nil {
		a.cooler = cooling.NewGeometric(config.Alpha)
	}
	if a.acceptor == nil {
		a.acceptor = acceptance.NewBoltzmann()
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}

	return a, nil
}

// Config returns the validated configuration.
func (a *Annealer) Config() Config {
	return a.config
}

// Optimize runs the search until a termination criterion fires.
// An objective failure aborts the run and is returned wrapped in
// optimization.ErrObjectiveEvaluation.
func (a *Annealer) Optimize() (*optimization.Result, error) {
	a.initialize()
	a.emit(optimization.Event{
		Kind:        optimization.EventStart,
		Point:       a.state,
		Temperature: a.temperature,
	})

	for {
		a.k++
		a.total++

		// Propose
		candidate := a.mover.Move(a.state, a.temperature, a.config.Interval)

		// Evaluate
		energy, err := a.evaluate(a.state)
		if err != nil {
			return nil, err
		}
		candidateEnergy, err := a.evaluate(candidate)
		if err != nil {
			return nil, err
		}
		a.history.record(a.state, energy, a.temperature)
		a.updateBest(a.state, energy)

		// Cool
		a.temperature = a.cooler.Cool(a.temperature)

		// Check termination
		outcome, stop := a.evaluator.Evaluate(termination.State{
			Iteration:       a.k,
			TotalIterations: a.total,
			Temperature:     a.temperature,
			Energies:        a.history.energies,
			Energy:          energy,
		})
		if stop {
			return a.finish(outcome, energy), nil
		}

		// Check reanneal
		if best, fire := a.reanneal.check(a.history, energy); fire {
			iteration := a.k
			a.restart(best)
			a.emit(optimization.Event{
				Kind:            optimization.EventReanneal,
				Iteration:       iteration,
				TotalIterations: a.total,
				Point:           best.Point,
				Energy:          best.Energy,
				Temperature:     a.temperature,
			})
			continue
		}

		// Accept or reject
		p := a.acceptor.Probability(energy, candidateEnergy, a.temperature)
		if acceptance.Accept(p, a.rng.Float64()) {
			a.state = candidate
		}
	}
}

// initialize draws a uniform starting point and resets the run state.
func (a *Annealer) initialize() {
	u := distuv.Uniform{Min: a.config.Interval.Lo, Max: a.config.Interval.Hi, Src: a.src}
	x := u.Rand()
	y := u.Rand()

	a.state = optimization.Point{X: x, Y: y}
	a.temperature = a.config.InitialTemp
	a.k = 0
	a.total = 0
	a.history = newHistory()
	a.reanneals = 0
	a.best = optimization.Solution{Energy: math.Inf(1)}
}

// evaluate calls the objective and rejects failures and NaN energies.
func (a *Annealer) evaluate(p optimization.Point) (float64, error) {
	energy, err := a.objective.Evaluate(p)
	if err != nil {
		return 0, optimization.WrapErrorf(
			fmt.Errorf("%w: %w", optimization.ErrObjectiveEvaluation, err),
			"evaluate %s", p,
		).WithComponent("annealing").WithOperation("optimize")
	}
	if math.IsNaN(energy) {
		return 0, optimization.WrapErrorf(optimization.ErrObjectiveEvaluation,
			"objective returned NaN at %s", p).
			WithComponent("annealing").WithOperation("optimize")
	}
	return energy, nil
}

// updateBest tracks the best solution across all epochs.
func (a *Annealer) updateBest(p optimization.Point, energy float64) {
	if energy < a.best.Energy {
		a.best = optimization.Solution{Point: p, Energy: energy}
	}
}

// finish assembles the result and hands the epoch history over to it.
func (a *Annealer) finish(outcome optimization.Outcome, energy float64) *optimization.Result {
	h := a.history
	a.history = nil

	res := &optimization.Result{
		States:          h.states,
		Energies:        h.energies,
		Temperatures:    h.temperatures,
		Iterations:      a.k,
		TotalIterations: a.total,
		Outcome:         outcome,
		Reannealed:      a.reanneals > 0,
		Reanneals:       a.reanneals,
		Final:           optimization.Solution{Point: a.state, Energy: energy},
		Best:            a.best,
	}

	a.emit(optimization.Event{
		Kind:            optimization.EventTerminate,
		Outcome:         outcome,
		Iteration:       a.k,
		TotalIterations: a.total,
		Point:           a.state,
		Energy:          energy,
		Temperature:     a.temperature,
	})
	a.logger.Debug("annealing finished",
		zap.Stringer("outcome", outcome),
		zap.Int64("iterations", res.Iterations),
		zap.Int64("total_iterations", res.TotalIterations),
		zap.Int("reanneals", res.Reanneals),
		zap.Float64("energy", energy),
	)
	return res
}

var exitMessages = map[optimization.Outcome]string{
	optimization.MaxIterations:    "max iteration exit",
	optimization.TemperatureFloor: "temperature exit",
	optimization.ToleranceWindow:  "tolerance exit",
	optimization.ObjectiveFloor:   "objective limit exit",
}

// emit notifies observers and, in verbose mode, logs the event.
func (a *Annealer) emit(e optimization.Event) {
	for _, o := range a.observers {
		o.Observe(e)
	}
	if !a.config.Verbose {
		return
	}

	fields := []zap.Field{
		zap.Int64("iteration", e.Iteration),
		zap.Int64("total_iterations", e.TotalIterations),
		zap.Float64("x", e.Point.X),
		zap.Float64("y", e.Point.Y),
		zap.Float64("temperature", e.Temperature),
	}
	switch e.Kind {
	case optimization.EventStart:
		a.logger.Info("simulated annealing started", fields...)
	case optimization.EventReanneal:
		a.logger.Info("reannealing", append(fields, zap.Float64("best_energy", e.Energy))...)
	case optimization.EventTerminate:
		a.logger.Info(exitMessages[e.Outcome],
			append(fields, zap.Float64("energy", e.Energy), zap.Stringer("outcome", e.Outcome))...)
	}
}
