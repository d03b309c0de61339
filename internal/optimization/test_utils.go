package optimization

import (
	"math"
	"testing"
)

// SphereObjective is x² + y², minimized at the origin.
var SphereObjective = ObjectiveFunc(func(p Point) (float64, error) {
	return p.X*p.X + p.Y*p.Y, nil
})

// FailingObjective returns err on the call numbered failAt (1-based) and
// the sphere energy otherwise.
func FailingObjective(failAt int, err error) Objective {
	calls := 0
	return ObjectiveFunc(func(p Point) (float64, error) {
		calls++
		if calls == failAt {
			return 0, err
		}
		return SphereObjective(p)
	})
}

// AssertPointInInterval fails the test if p lies outside iv on either axis.
func AssertPointInInterval(t testing.TB, p Point, iv Interval) {
	t.Helper()

	if !iv.Contains(p) {
		t.Fatalf("point %v outside interval [%v, %v]", p, iv.Lo, iv.Hi)
	}
}

// AssertPointNear fails the test if either coordinate of got differs from
// want by more than tol.
func AssertPointNear(t testing.TB, got, want Point, tol float64) {
	t.Helper()

	if math.Abs(got.X-want.X) > tol || math.Abs(got.Y-want.Y) > tol {
		t.Fatalf("got %v, want %v (tolerance %v)", got, want, tol)
	}
}
