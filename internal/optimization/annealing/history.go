package annealing

import (
	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/annealer/internal/optimization"
)

// history is the append-only record of one epoch. The driver owns it and
// replaces it with a fresh one on reannealing.
type history struct {
	states       []optimization.Point
	energies     []float64
	temperatures []float64
}

func newHistory() *history {
	return &history{}
}

// record appends one (point, energy, temperature) triple.
func (h *history) record(p optimization.Point, energy, temperature float64) {
	h.states = append(h.states, p)
	h.energies = append(h.energies, energy)
	h.temperatures = append(h.temperatures, temperature)
}

func (h *history) len() int {
	return len(h.energies)
}

// best returns the first recorded point with the minimum energy.
func (h *history) best() (optimization.Solution, bool) {
	if h.len() == 0 {
		return optimization.Solution{}, false
	}
	i := floats.MinIdx(h.energies)
	return optimization.Solution{Point: h.states[i], Energy: h.energies[i]}, true
}
