package optimization

import (
	"fmt"
	"math"
)

// Optimizer defines the interface for optimization algorithms
type Optimizer interface {
	// Optimize runs the optimization process to completion
	Optimize() (*Result, error)
}

// Point is a position in the two-dimensional search domain.
// Points are values: a move always produces a new Point.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// String returns the point formatted as (x, y).
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Interval is the closed range [Lo, Hi] shared by both axes.
type Interval struct {
	Lo float64 `json:"lo" yaml:"lo" validate:"ltfield=Hi"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// Contains reports whether both coordinates of p lie within the interval.
func (iv Interval) Contains(p Point) bool {
	return p.X >= iv.Lo && p.X <= iv.Hi && p.Y >= iv.Lo && p.Y <= iv.Hi
}

// Clamp limits v to the interval.
func (iv Interval) Clamp(v float64) float64 {
	return math.Max(iv.Lo, math.Min(v, iv.Hi))
}

// Objective is the energy function being minimized. It must be deterministic
// and free of side effects observable by the optimizer.
type Objective interface {
	Evaluate(p Point) (float64, error)
}

// ObjectiveFunc adapts an ordinary function to the Objective interface.
type ObjectiveFunc func(Point) (float64, error)

// Evaluate calls f(p).
func (f ObjectiveFunc) Evaluate(p Point) (float64, error) {
	return f(p)
}

// Mover proposes a candidate point from the current one.
// The returned point must lie within interval on both axes.
type Mover interface {
	Move(state Point, temperature float64, interval Interval) Point
}

// Cooler advances the temperature by one step.
type Cooler interface {
	Cool(temperature float64) float64
}

// Acceptor returns the probability, in (0, 1], of moving from an energy
// to a candidate energy at the given temperature.
type Acceptor interface {
	Probability(current, candidate, temperature float64) float64
}

// Outcome is the reason a run terminated.
type Outcome int

const (
	// OutcomeNone is the zero value of a run that has not terminated.
	OutcomeNone Outcome = iota
	// MaxIterations means the iteration cap was reached.
	MaxIterations
	// TemperatureFloor means the cooled temperature dropped to zero or below.
	TemperatureFloor
	// ToleranceWindow means recent energies plateaued below the tolerance.
	ToleranceWindow
	// ObjectiveFloor means the current energy reached the configured floor.
	ObjectiveFloor
)

var outcomeNames = map[Outcome]string{
	OutcomeNone:      "none",
	MaxIterations:    "max_iterations",
	TemperatureFloor: "temperature_floor",
	ToleranceWindow:  "tolerance_window",
	ObjectiveFloor:   "objective_floor",
}

// String returns the snake_case name of the outcome.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	for k, v := range outcomeNames {
		if v == string(text) {
			*o = k
			return nil
		}
	}
	return NewErrorf("unknown outcome %q", string(text))
}

// Solution is a point together with its energy.
type Solution struct {
	Point  Point   `json:"point"`
	Energy float64 `json:"energy"`
}

// Result contains the result of an annealing run.
// States, Energies and Temperatures hold the history of the final epoch,
// index-aligned.
type Result struct {
	States       []Point   `json:"states"`
	Energies     []float64 `json:"energies"`
	Temperatures []float64 `json:"temperatures"`

	// Iterations is the epoch iteration counter at exit.
	Iterations int64 `json:"iterations"`
	// TotalIterations counts every pass, across reannealing epochs.
	TotalIterations int64 `json:"total_iterations"`

	Outcome    Outcome `json:"outcome"`
	Reannealed bool    `json:"reannealed"`
	Reanneals  int     `json:"reanneals"`

	// Final is the last recorded state of the run.
	Final Solution `json:"final"`
	// Best is the lowest energy seen in any epoch.
	Best Solution `json:"best"`
}

// Summary returns a one-line description of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf("stopping criterion: %s, iterations: %d, reannealing: %t, final: %s energy=%g",
		r.Outcome, r.Iterations, r.Reannealed, r.Final.Point, r.Final.Energy)
}

// EventKind identifies a driver transition worth reporting.
type EventKind int

const (
	// EventStart is emitted once after initialization.
	EventStart EventKind = iota
	// EventReanneal is emitted each time the walk is reset to the epoch best.
	EventReanneal
	// EventTerminate is emitted once when a termination criterion fires.
	EventTerminate
)

// String returns the name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventReanneal:
		return "reanneal"
	case EventTerminate:
		return "terminate"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event describes a driver transition.
type Event struct {
	Kind EventKind
	// Outcome is set for EventTerminate only.
	Outcome Outcome
	// Iteration is the epoch counter when the event fired.
	Iteration int64
	// TotalIterations is the run-wide pass counter.
	TotalIterations int64
	Point           Point
	Energy          float64
	Temperature     float64
}

// Observer receives driver events. Observers must not retain or mutate
// optimizer state.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) {
	f(e)
}
