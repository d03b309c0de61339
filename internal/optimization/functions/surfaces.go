// Package functions provides the two-variable objective surfaces used to
// exercise the annealer, and a registry that resolves them by name.
package functions

import (
	"math"

	gonumfns "gonum.org/v1/gonum/optimize/functions"

	"github.com/copyleftdev/annealer/internal/optimization"
)

// Ackley is full of local minima around a single global minimum of 0 at
// the origin.
func Ackley(p optimization.Point) float64 {
	e1 := math.Exp(-0.2 * math.Sqrt(0.5*(p.X*p.X+p.Y*p.Y)))
	e2 := math.Exp(0.5 * (math.Cos(2*math.Pi*p.X) + math.Cos(2*math.Pi*p.Y)))
	return -20*e1 - e2 + math.E + 20
}

// Himmelblau has four global minima of 0, one of them at (3, 2).
func Himmelblau(p optimization.Point) float64 {
	a := p.X*p.X + p.Y - 11
	b := p.X + p.Y*p.Y - 7
	return a*a + b*b
}

// Rastrigin has a global minimum of 0 at the origin.
func Rastrigin(p optimization.Point) float64 {
	return 20 + p.X*p.X + p.Y*p.Y - 10*(math.Cos(2*math.Pi*p.X)+math.Cos(2*math.Pi*p.Y))
}

// Rosenbrock is the banana valley with its minimum of 0 at (1, 1).
func Rosenbrock(p optimization.Point) float64 {
	return gonumfns.ExtendedRosenbrock{}.Func([]float64{p.X, p.Y})
}

// Sphere is x² + y².
func Sphere(p optimization.Point) float64 {
	return p.X*p.X + p.Y*p.Y
}

// objective adapts an infallible surface to optimization.Objective.
func objective(f func(optimization.Point) float64) optimization.Objective {
	return optimization.ObjectiveFunc(func(p optimization.Point) (float64, error) {
		return f(p), nil
	})
}
