// Package validate reduces the tally field and checks it against the
// reference value configured for the run.
package validate

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/fluence/tally"
)

// DefaultTolerance is the relative tolerance used when the configuration
// does not name one.
const DefaultTolerance = 1.0e-3

// Result reports a validation outcome.
type Result struct {
	Expected  float64
	Actual    float64
	Tolerance float64
	Passed    bool
}

// Reduce sums the tally field into the global energy deposition total.
func Reduce(g *tally.Grid) float64 {
	return floats.Sum(g.Cells())
}

// Check reduces the tally and compares it to the expected value under a
// relative tolerance.
func Check(g *tally.Grid, expected, tolerance float64) Result {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	actual := Reduce(g)
	return Result{
		Expected:  expected,
		Actual:    actual,
		Tolerance: tolerance,
		Passed:    WithinTolerance(expected, actual, tolerance),
	}
}

// WithinTolerance reports whether got is relatively within tol of want.
// A zero reference falls back to an absolute comparison.
func WithinTolerance(want, got, tol float64) bool {
	if want == 0 {
		return math.Abs(got) <= tol
	}
	return math.Abs(got-want)/math.Abs(want) <= tol
}
