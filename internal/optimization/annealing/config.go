package annealing

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/copyleftdev/annealer/internal/optimization"
	"github.com/copyleftdev/annealer/internal/optimization/cooling"
)

// Default parameter values.
const (
	DefaultInitialTemp    = 100.0
	DefaultKMax           = int64(1e10)
	DefaultToleranceValue = 1e-6
	DefaultToleranceIter  = 10
	DefaultObjFnLimit     = -1e10
	DefaultReannTol       = 100.0
)

// DefaultInterval is the search domain used when none is configured.
var DefaultInterval = optimization.Interval{Lo: -6, Hi: 6}

// Config contains the parameters of one annealing run.
// It is validated once, by New, before any iteration executes.
type Config struct {
	// Starting temperature; restored on every reannealing
	InitialTemp float64 `json:"initial_temp" yaml:"initial_temp" validate:"gt=0"`

	// Iteration cap, enforced on the epoch counter and on the run-wide pass count
	KMax int64 `json:"k_max" yaml:"k_max" validate:"gt=0"`

	// Plateau threshold for the tolerance window
	ToleranceValue float64 `json:"tolerance_value" yaml:"tolerance_value" validate:"gte=0"`

	// Tolerance window size
	ToleranceIter int `json:"tolerance_iter" yaml:"tolerance_iter" validate:"gt=0"`

	// Objective floor: the run stops once an energy at or below it is seen
	ObjFnLimit float64 `json:"obj_fn_limit" yaml:"obj_fn_limit"`

	// Margin above the epoch best that triggers reannealing
	ReannTol float64 `json:"reann_tol" yaml:"reann_tol" validate:"gte=0"`

	// Search domain shared by both axes
	Interval optimization.Interval `json:"interval" yaml:"interval"`

	// Geometric cooling ratio
	Alpha float64 `json:"alpha" yaml:"alpha" validate:"gt=0,lt=1"`

	// Log every termination and reannealing transition
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Random seed for reproducibility; 0 seeds from the clock
	RandomSeed uint64 `json:"random_seed" yaml:"random_seed"`
}

// DefaultConfig returns the default run configuration.
func DefaultConfig() Config {
	return Config{
		InitialTemp:    DefaultInitialTemp,
		KMax:           DefaultKMax,
		ToleranceValue: DefaultToleranceValue,
		ToleranceIter:  DefaultToleranceIter,
		ObjFnLimit:     DefaultObjFnLimit,
		ReannTol:       DefaultReannTol,
		Interval:       DefaultInterval,
		Alpha:          cooling.DefaultAlpha,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their configuration names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks every parameter. Failures wrap optimization.ErrInvalidConfig.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return invalid(describe(verrs[0]))
		}
		return optimization.WrapError(err, "validate config").
			WithComponent("annealing").
			WithOperation("validate")
	}

	if math.IsInf(c.InitialTemp, 0) {
		return invalid("initial_temp must be finite")
	}
	if math.IsInf(c.Interval.Lo, 0) || math.IsInf(c.Interval.Hi, 0) ||
		math.IsNaN(c.Interval.Lo) || math.IsNaN(c.Interval.Hi) {
		return invalid("interval bounds must be finite")
	}
	if math.IsInf(c.Interval.Hi-c.Interval.Lo, 0) {
		return invalid("interval width must be finite")
	}
	return nil
}

func describe(fe validator.FieldError) string {
	name := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "gt":
		return name + " must be > " + fe.Param()
	case "gte":
		return name + " must be >= " + fe.Param()
	case "lt":
		return name + " must be < " + fe.Param()
	case "ltfield":
		return "interval lo must be < hi"
	default:
		return name + " failed " + fe.Tag()
	}
}

func invalid(msg string) error {
	return optimization.InvalidConfigf("%s", msg).
		WithComponent("annealing").
		WithOperation("validate")
}
