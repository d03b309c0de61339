// Package acceptance decides whether the annealing walk moves to a candidate.
package acceptance

import (
	"math"
)

// Boltzmann implements the Metropolis acceptance rule
type Boltzmann struct{}

// NewBoltzmann creates a new Boltzmann acceptance model
func NewBoltzmann() *Boltzmann {
	return &Boltzmann{}
}

// Probability returns 1 when the candidate is no worse and
// exp(-(candidate-current)/temperature) otherwise. A worse candidate at a
// non-positive temperature is accepted with the floor probability.
// The result is floored at the smallest positive float64, so it is in (0, 1].
func (Boltzmann) Probability(current, candidate, temperature float64) float64 {
	if candidate == current {
		return 1
	}
	delta := candidate - current
	if delta < 0 {
		return 1
	}
	if temperature <= 0 {
		return math.SmallestNonzeroFloat64
	}
	p := math.Exp(-delta / temperature)
	if p < math.SmallestNonzeroFloat64 {
		return math.SmallestNonzeroFloat64
	}
	return p
}

// Accept reports whether a move with probability p is committed for the
// uniform draw u in [0, 1).
func Accept(p, u float64) bool {
	return u <= p
}
