package operators

import (
	"math"

	"github.com/san-kum/fresim/internal/sim"
)

// Kappa is the contraction ratio |next-1| / |prev-1|. At prev == 1 it is
// 0 whatever next is: there is no distance left to contract.
func Kappa(prev, next float64) float64 {
	den := math.Abs(prev - sim.Equilibrium)
	if den == 0 {
		return 0
	}
	return math.Abs(next-sim.Equilibrium) / den
}
