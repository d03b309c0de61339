package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/annealer/internal/optimization"
	"github.com/copyleftdev/annealer/internal/optimization/annealing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 120*time.Second, cfg.HTTP.IdleTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 4, cfg.Annealing.Workers)
	assert.Equal(t, int64(1000000), cfg.Annealing.MaxRunIterations)

	want := annealing.DefaultConfig()
	assert.Equal(t, want, cfg.AnnealingDefaults())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"HTTP_PORT":              "9090",
		"LOG_LEVEL":              "debug",
		"ANNEAL_INITIAL_TEMP":    "250",
		"ANNEAL_K_MAX":           "5000",
		"ANNEAL_TOLERANCE_VALUE": "1e-10",
		"ANNEAL_TOLERANCE_ITER":  "20",
		"ANNEAL_OBJ_FN_LIMIT":    "-5",
		"ANNEAL_REANN_TOL":       "0",
		"ANNEAL_INTERVAL_LO":     "-5.12",
		"ANNEAL_INTERVAL_HI":     "5.12",
		"ANNEAL_ALPHA":           "0.9",
		"ANNEAL_VERBOSE":         "true",
		"ANNEAL_SEED":            "7",
		"ANNEAL_WORKERS":         "2",
	})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2, cfg.Annealing.Workers)
	assert.Equal(t, annealing.Config{
		InitialTemp:    250,
		KMax:           5000,
		ToleranceValue: 1e-10,
		ToleranceIter:  20,
		ObjFnLimit:     -5,
		ReannTol:       0,
		Interval:       optimization.Interval{Lo: -5.12, Hi: 5.12},
		Alpha:          0.9,
		Verbose:        true,
		RandomSeed:     7,
	}, cfg.AnnealingDefaults())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unparsable number": {"ANNEAL_K_MAX": "lots"},
		"zero workers":      {"ANNEAL_WORKERS": "0"},
		"zero run ceiling":  {"ANNEAL_MAX_RUN_ITERATIONS": "0"},
		"port out of range": {"HTTP_PORT": "70000"},
		"alpha above one":   {"ANNEAL_ALPHA": "1.5"},
		"reversed interval": {"ANNEAL_INTERVAL_LO": "6", "ANNEAL_INTERVAL_HI": "-6"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(vars)
			assert.Error(t, err)
		})
	}

	_, err := LoadFrom(map[string]string{"ANNEAL_TOLERANCE_ITER": "0"})
	assert.ErrorIs(t, err, optimization.ErrInvalidConfig)
}
