// Package termination implements the stopping criteria of an annealing run.
//
// Each criterion is a pure predicate over the running state. An Evaluator
// checks them in a fixed priority order: iteration cap, temperature floor,
// tolerance window, objective floor.
package termination

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/copyleftdev/annealer/internal/optimization"
)

// Limits holds the configured thresholds.
type Limits struct {
	// MaxIterations caps both the epoch counter and the run-wide pass count
	MaxIterations int64
	// ToleranceValue is the plateau threshold on the mean energy change
	ToleranceValue float64
	// ToleranceIter is the number of consecutive differences averaged
	ToleranceIter int
	// ObjectiveFloor stops the run once an energy at or below it is seen
	ObjectiveFloor float64
}

// State is the running state inspected after each move and cooling step.
type State struct {
	Iteration       int64
	TotalIterations int64
	// Temperature after cooling
	Temperature float64
	// Energies recorded in the current epoch, oldest first
	Energies []float64
	// Energy of the current point
	Energy float64
}

// Evaluator checks the four criteria in priority order.
type Evaluator struct {
	limits Limits
}

// NewEvaluator creates an Evaluator for the given limits.
func NewEvaluator(limits Limits) *Evaluator {
	return &Evaluator{limits: limits}
}

// Evaluate returns the first criterion that fires and true, or
// OutcomeNone and false when the run should continue.
func (e *Evaluator) Evaluate(s State) (optimization.Outcome, bool) {
	switch {
	case MaxIterations(s.Iteration, e.limits.MaxIterations) ||
		MaxIterations(s.TotalIterations, e.limits.MaxIterations):
		return optimization.MaxIterations, true
	case TemperatureFloor(s.Temperature):
		return optimization.TemperatureFloor, true
	case ToleranceWindow(s.Energies, e.limits.ToleranceValue, e.limits.ToleranceIter):
		return optimization.ToleranceWindow, true
	case ObjectiveFloor(s.Energy, e.limits.ObjectiveFloor):
		return optimization.ObjectiveFloor, true
	}
	return optimization.OutcomeNone, false
}

// MaxIterations reports whether the counter k has reached kMax.
func MaxIterations(k, kMax int64) bool {
	return k >= kMax
}

// TemperatureFloor reports whether the cooled temperature is at or below zero.
func TemperatureFloor(temperature float64) bool {
	return temperature <= 0
}

// ToleranceWindow reports whether the mean absolute change over the last
// window consecutive pairs of energies is strictly below tolerance.
// It is false until window differences exist, i.e. window+1 energies.
func ToleranceWindow(energies []float64, tolerance float64, window int) bool {
	if window <= 0 || len(energies) <= window {
		return false
	}
	return MeanAbsDiff(energies, window) < tolerance
}

// MeanAbsDiff returns mean(|e[i] - e[i-1]|) over the last window indices of
// energies. It returns NaN when fewer than window+1 energies are given.
func MeanAbsDiff(energies []float64, window int) float64 {
	n := len(energies)
	if window <= 0 || n <= window {
		return math.NaN()
	}
	diffs := make([]float64, window)
	for i := 0; i < window; i++ {
		j := n - window + i
		diffs[i] = math.Abs(energies[j] - energies[j-1])
	}
	return stat.Mean(diffs, nil)
}

// ObjectiveFloor reports whether energy is at or below the floor.
func ObjectiveFloor(energy, floor float64) bool {
	return energy <= floor
}
