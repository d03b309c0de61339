package optimization

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalContains(t *testing.T) {
	iv := Interval{Lo: -1, Hi: 2}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Point{X: 0, Y: 1}, true},
		{"on bounds", Point{X: -1, Y: 2}, true},
		{"x below", Point{X: -1.5, Y: 0}, false},
		{"y above", Point{X: 0, Y: 2.01}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, iv.Contains(tt.p))
		})
	}
}

func TestIntervalClamp(t *testing.T) {
	iv := Interval{Lo: -6, Hi: 6}
	assert.Equal(t, -6.0, iv.Clamp(-7))
	assert.Equal(t, 6.0, iv.Clamp(6.5))
	assert.Equal(t, 1.5, iv.Clamp(1.5))
}

func TestOutcomeText(t *testing.T) {
	for _, o := range []Outcome{MaxIterations, TemperatureFloor, ToleranceWindow, ObjectiveFloor} {
		t.Run(o.String(), func(t *testing.T) {
			text, err := o.MarshalText()
			require.NoError(t, err)

			var back Outcome
			require.NoError(t, back.UnmarshalText(text))
			assert.Equal(t, o, back)
		})
	}

	var o Outcome
	assert.Error(t, o.UnmarshalText([]byte("sideways")))
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}

func TestResultJSON(t *testing.T) {
	res := &Result{
		Outcome:    ToleranceWindow,
		Iterations: 3,
		Final:      Solution{Point: Point{X: 1, Y: 2}, Energy: 5},
	}

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "tolerance_window", decoded["outcome"])
	assert.Contains(t, res.Summary(), "tolerance_window")
	assert.Contains(t, res.Summary(), "(1, 2)")
}

func TestObserverFunc(t *testing.T) {
	var got []EventKind
	obs := ObserverFunc(func(e Event) { got = append(got, e.Kind) })

	obs.Observe(Event{Kind: EventStart})
	obs.Observe(Event{Kind: EventTerminate, Outcome: MaxIterations})

	assert.Equal(t, []EventKind{EventStart, EventTerminate}, got)
	assert.Equal(t, "reanneal", EventReanneal.String())
}

func TestErrorWrapping(t *testing.T) {
	err := InvalidConfigf("k_max must be > 0, got %d", 0).
		WithComponent("annealing").
		WithOperation("validate")

	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.False(t, errors.Is(err, ErrObjectiveEvaluation))
	assert.Equal(t, "annealing: validate: k_max must be > 0, got 0: invalid configuration", err.Error())

	wrapped := WrapError(err, "start run")
	e, ok := IsOptimizationError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "start run", e.Message)
	assert.True(t, errors.Is(wrapped, ErrInvalidConfig))

	assert.Nil(t, WrapError(nil, "nothing"))
	_, ok = IsOptimizationError(errors.New("plain"))
	assert.False(t, ok)
}

func TestFailingObjective(t *testing.T) {
	boom := errors.New("boom")
	obj := FailingObjective(2, boom)

	v, err := obj.Evaluate(Point{X: 1, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	_, err = obj.Evaluate(Point{})
	assert.ErrorIs(t, err, boom)
}
