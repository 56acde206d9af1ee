package analysis

import (
	"math"

	"github.com/san-kum/fresim/internal/sim"
)

// LogRate is the mean of ln(kappa) over steps with a defined, non-zero
// contraction ratio. It returns 0 when no such step exists.
//
// For a linear contraction with factor alpha this is ln(alpha).
func LogRate(res *sim.Result) float64 {
	sumLog := 0.0
	count := 0

	for i := 1; i < res.Len(); i++ {
		k, ok := res.Kappa(i)
		if !ok || k <= 0 || math.IsInf(k, 0) || math.IsNaN(k) {
			continue
		}
		sumLog += math.Log(k)
		count++
	}

	if count == 0 {
		return 0
	}
	return sumLog / float64(count)
}

// ContractionRate is the geometric mean of kappa, exp(LogRate). A run that
// never left equilibrium reports 0.
func ContractionRate(res *sim.Result) float64 {
	lr := LogRate(res)
	if lr == 0 && !hasContraction(res) {
		return 0
	}
	return math.Exp(lr)
}

func hasContraction(res *sim.Result) bool {
	for i := 1; i < res.Len(); i++ {
		if k, ok := res.Kappa(i); ok && k > 0 {
			return true
		}
	}
	return false
}

// HalfLife is the number of steps needed to halve the distance to
// equilibrium at the given rate. It is +Inf for rates outside (0, 1).
func HalfLife(rate float64) float64 {
	if rate <= 0 || rate >= 1 {
		return math.Inf(1)
	}
	return math.Log(0.5) / math.Log(rate)
}
