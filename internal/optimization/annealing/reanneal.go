package annealing

import (
	"github.com/copyleftdev/annealer/internal/optimization"
)

// reannealer detects when the walk has drifted more than tolerance above
// the best energy of the current epoch.
type reannealer struct {
	tolerance float64
}

// check returns the epoch best and whether the current energy exceeds it by
// more than the tolerance.
func (r reannealer) check(h *history, energy float64) (optimization.Solution, bool) {
	best, ok := h.best()
	if !ok {
		return optimization.Solution{}, false
	}
	return best, energy > best.Energy+r.tolerance
}

// restart resets the walk to best: fresh history, initial temperature,
// epoch counter zero.
func (a *Annealer) restart(best optimization.Solution) {
	a.history = newHistory()
	a.state = best.Point
	a.temperature = a.config.InitialTemp
	a.k = 0
	a.reanneals++
}
