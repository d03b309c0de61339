package cli

import (
	"github.com/spf13/pflag"

	"github.com/copyleftdev/annealer/internal/optimization/annealing"
)

// annealFlags are the per-run overrides shared by run and suite.
type annealFlags struct {
	initialTemp    float64
	kMax           int64
	toleranceValue float64
	toleranceIter  int
	objFnLimit     float64
	reannTol       float64
	lo, hi         float64
	alpha          float64
	seed           uint64
	verbose        bool
}

func (f *annealFlags) register(fs *pflag.FlagSet) {
	d := annealing.DefaultConfig()
	fs.Float64Var(&f.initialTemp, "initial-temp", d.InitialTemp, "initial temperature")
	fs.Int64Var(&f.kMax, "k-max", d.KMax, "iteration ceiling")
	fs.Float64Var(&f.toleranceValue, "tolerance-value", d.ToleranceValue, "plateau threshold on the mean energy change")
	fs.IntVar(&f.toleranceIter, "tolerance-iter", d.ToleranceIter, "plateau window length")
	fs.Float64Var(&f.objFnLimit, "obj-fn-limit", d.ObjFnLimit, "stop once the energy reaches this value")
	fs.Float64Var(&f.reannTol, "reann-tol", d.ReannTol, "reanneal when the energy exceeds the epoch best by more than this")
	fs.Float64Var(&f.lo, "lo", d.Interval.Lo, "interval lower bound")
	fs.Float64Var(&f.hi, "hi", d.Interval.Hi, "interval upper bound")
	fs.Float64Var(&f.alpha, "alpha", d.Alpha, "geometric cooling factor")
	fs.Uint64Var(&f.seed, "seed", d.RandomSeed, "random seed (0 seeds from the clock)")
	fs.BoolVarP(&f.verbose, "verbose", "v", d.Verbose, "log start, reannealing and exit events")
}

// apply overrides cfg with every flag set on the command line. It reports
// whether an interval bound was set.
func (f *annealFlags) apply(fs *pflag.FlagSet, cfg *annealing.Config) bool {
	set := func(name string) bool { return fs.Changed(name) }

	if set("initial-temp") {
		cfg.InitialTemp = f.initialTemp
	}
	if set("k-max") {
		cfg.KMax = f.kMax
	}
	if set("tolerance-value") {
		cfg.ToleranceValue = f.toleranceValue
	}
	if set("tolerance-iter") {
		cfg.ToleranceIter = f.toleranceIter
	}
	if set("obj-fn-limit") {
		cfg.ObjFnLimit = f.objFnLimit
	}
	if set("reann-tol") {
		cfg.ReannTol = f.reannTol
	}
	if set("alpha") {
		cfg.Alpha = f.alpha
	}
	if set("seed") {
		cfg.RandomSeed = f.seed
	}
	if set("verbose") {
		cfg.Verbose = f.verbose
	}

	interval := false
	if set("lo") {
		cfg.Interval.Lo = f.lo
		interval = true
	}
	if set("hi") {
		cfg.Interval.Hi = f.hi
		interval = true
	}
	return interval
}
