// Package cooling provides temperature schedules for simulated annealing.
package cooling

import (
	"fmt"
)

// DefaultAlpha is the geometric ratio used when none is configured.
const DefaultAlpha = 0.95

// Geometric implements the schedule T' = alpha * T.
// It depends only on the current temperature.
type Geometric struct {
	// Ratio applied at every step, in (0, 1)
	alpha float64
}

// NewGeometric creates a geometric schedule with the given ratio
func NewGeometric(alpha float64) *Geometric {
	if !(alpha > 0 && alpha < 1) {
		panic(fmt.Sprintf("alpha must be in (0, 1), got %v", alpha))
	}
	return &Geometric{alpha: alpha}
}

// Cool returns alpha * temperature
func (g *Geometric) Cool(temperature float64) float64 {
	return g.alpha * temperature
}

// Alpha returns the geometric ratio
func (g *Geometric) Alpha() float64 {
	return g.alpha
}
