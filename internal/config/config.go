// Package config loads the process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"

	"github.com/copyleftdev/annealer/internal/logging"
	"github.com/copyleftdev/annealer/internal/optimization"
	"github.com/copyleftdev/annealer/internal/optimization/annealing"
)

// Config is the process configuration shared by the server and the CLI.
type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        HTTPConfig
	Logging     logging.Config
	Annealing   AnnealingConfig
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Port            int           `env:"HTTP_PORT" envDefault:"8080" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// AnnealingConfig holds the defaults applied to every run, and the suite
// concurrency.
type AnnealingConfig struct {
	InitialTemp    float64 `env:"ANNEAL_INITIAL_TEMP" envDefault:"100"`
	KMax           int64   `env:"ANNEAL_K_MAX" envDefault:"10000000000"`
	ToleranceValue float64 `env:"ANNEAL_TOLERANCE_VALUE" envDefault:"1e-6"`
	ToleranceIter  int     `env:"ANNEAL_TOLERANCE_ITER" envDefault:"10"`
	ObjFnLimit     float64 `env:"ANNEAL_OBJ_FN_LIMIT" envDefault:"-1e10"`
	ReannTol       float64 `env:"ANNEAL_REANN_TOL" envDefault:"100"`
	IntervalLo     float64 `env:"ANNEAL_INTERVAL_LO" envDefault:"-6"`
	IntervalHi     float64 `env:"ANNEAL_INTERVAL_HI" envDefault:"6"`
	Alpha          float64 `env:"ANNEAL_ALPHA" envDefault:"0.95"`
	Verbose        bool    `env:"ANNEAL_VERBOSE" envDefault:"false"`
	Seed           uint64  `env:"ANNEAL_SEED" envDefault:"0"`
	Workers        int     `env:"ANNEAL_WORKERS" envDefault:"4" validate:"gte=1"`

	// Ceiling on k_max for runs started through the service
	MaxRunIterations int64 `env:"ANNEAL_MAX_RUN_ITERATIONS" envDefault:"1000000" validate:"gte=1"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from vars instead of the process
// environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}
	if err := cfg.AnnealingDefaults().Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AnnealingDefaults converts the annealing section to a run configuration.
func (c *Config) AnnealingDefaults() annealing.Config {
	a := c.Annealing
	return annealing.Config{
		InitialTemp:    a.InitialTemp,
		KMax:           a.KMax,
		ToleranceValue: a.ToleranceValue,
		ToleranceIter:  a.ToleranceIter,
		ObjFnLimit:     a.ObjFnLimit,
		ReannTol:       a.ReannTol,
		Interval:       optimization.Interval{Lo: a.IntervalLo, Hi: a.IntervalHi},
		Alpha:          a.Alpha,
		Verbose:        a.Verbose,
		RandomSeed:     a.Seed,
	}
}
