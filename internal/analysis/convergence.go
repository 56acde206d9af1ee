package analysis

import (
	"math"

	"github.com/san-kum/fresim/internal/sim"
)

// StepsToTolerance returns the first index whose fxi lies within tol of
// equilibrium, or -1 if the run never gets there.
func StepsToTolerance(res *sim.Result, tol float64) int {
	for i, fxi := range res.FXISeries {
		if math.Abs(fxi-sim.Equilibrium) <= tol {
			return i
		}
	}
	return -1
}

// IsMonotonic reports whether the distance to equilibrium never grows.
func IsMonotonic(res *sim.Result) bool {
	for i := 1; i < res.Len(); i++ {
		if math.Abs(res.FXISeries[i]-sim.Equilibrium) > math.Abs(res.FXISeries[i-1]-sim.Equilibrium) {
			return false
		}
	}
	return true
}

// PredictedGap is the distance to equilibrium after t steps of a linear
// contraction alpha starting at fxi0.
func PredictedGap(fxi0, alpha float64, t int) float64 {
	return math.Pow(alpha, float64(t)) * math.Abs(fxi0-sim.Equilibrium)
}
