// Package move generates candidate points for the annealing walk.
package move

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/copyleftdev/annealer/internal/optimization"
)

// Boltzmann moves both coordinates by ±sqrt(T) in the same direction, then
// confines each coordinate to the interval with Clip.
type Boltzmann struct {
	// Random source for the direction bit and confinement draws
	src rand.Source
	rng *rand.Rand
}

// NewBoltzmann creates a Boltzmann mover drawing from src.
func NewBoltzmann(src rand.Source) *Boltzmann {
	if src == nil {
		panic("move: nil random source")
	}
	return &Boltzmann{
		src: src,
		rng: rand.New(src),
	}
}

// Move proposes a candidate from state at the given temperature.
// The candidate always lies within interval provided state does.
func (b *Boltzmann) Move(state optimization.Point, temperature float64, interval optimization.Interval) optimization.Point {
	step := math.Sqrt(temperature)
	if b.rng.Float64() >= 0.5 {
		step = -step
	}

	return optimization.Point{
		X: Clip(state.X+step, interval, state.X, b.src),
		Y: Clip(state.Y+step, interval, state.Y, b.src),
	}
}

// Clip confines x to interval. A coordinate below Lo is redrawn uniformly
// from [Lo, prev] and one above Hi from [prev, Hi], where prev is the
// coordinate before the move. In-range values are returned unchanged.
func Clip(x float64, interval optimization.Interval, prev float64, src rand.Source) float64 {
	var u distuv.Uniform
	switch {
	case x < interval.Lo:
		u = distuv.Uniform{Min: interval.Lo, Max: prev, Src: src}
	case x > interval.Hi:
		u = distuv.Uniform{Min: prev, Max: interval.Hi, Src: src}
	default:
		return x
	}
	// prev is inside the interval, so only rounding can escape it
	return interval.Clamp(u.Rand())
}
