package functions

import (
	"sort"
	"strings"

	"github.com/copyleftdev/annealer/internal/optimization"
)

// Surface is a named objective with its default search interval and
// known global minima.
type Surface struct {
	Name      string                 `json:"name"`
	Interval  optimization.Interval  `json:"interval"`
	Minima    []optimization.Point   `json:"minima"`
	Benchmark bool                   `json:"benchmark"`
	Objective optimization.Objective `json:"-"`
}

var registry = map[string]Surface{
	"ackley": {
		Name:      "ackley",
		Interval:  optimization.Interval{Lo: -6, Hi: 6},
		Minima:    []optimization.Point{{X: 0, Y: 0}},
		Benchmark: true,
		Objective: objective(Ackley),
	},
	"himmelblau": {
		Name:     "himmelblau",
		Interval: optimization.Interval{Lo: -6, Hi: 6},
		Minima: []optimization.Point{
			{X: 3, Y: 2},
			{X: -2.805118, Y: 3.131312},
			{X: -3.779310, Y: -3.283186},
			{X: 3.584428, Y: -1.848126},
		},
		Benchmark: true,
		Objective: objective(Himmelblau),
	},
	"rastrigin": {
		Name:      "rastrigin",
		Interval:  optimization.Interval{Lo: -5.12, Hi: 5.12},
		Minima:    []optimization.Point{{X: 0, Y: 0}},
		Benchmark: true,
		Objective: objective(Rastrigin),
	},
	"rosenbrock": {
		Name:      "rosenbrock",
		Interval:  optimization.Interval{Lo: -6, Hi: 6},
		Minima:    []optimization.Point{{X: 1, Y: 1}},
		Benchmark: true,
		Objective: objective(Rosenbrock),
	},
	"sphere": {
		Name:      "sphere",
		Interval:  optimization.Interval{Lo: -6, Hi: 6},
		Minima:    []optimization.Point{{X: 0, Y: 0}},
		Objective: objective(Sphere),
	},
}

// Lookup resolves a surface by case-insensitive name.
func Lookup(name string) (Surface, error) {
	s, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Surface{}, optimization.WrapErrorf(optimization.ErrUnknownFunction, "%q", name).
			WithComponent("functions").
			WithOperation("lookup")
	}
	return s, nil
}

// Names returns all registered names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every registered surface sorted by name.
func All() []Surface {
	out := make([]Surface, 0, len(registry))
	for _, name := range Names() {
		out = append(out, registry[name])
	}
	return out
}

// Benchmarks returns the four benchmark surfaces sorted by name.
func Benchmarks() []Surface {
	var out []Surface
	for _, s := range All() {
		if s.Benchmark {
			out = append(out, s)
		}
	}
	return out
}
