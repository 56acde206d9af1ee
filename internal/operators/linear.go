package operators

import (
	"fmt"
	"math"

	"github.com/san-kum/fresim/internal/sim"
)

// Clamp rail applied to every Linear result.
const (
	DefaultClampMin = 0.1
	DefaultClampMax = 5.0
	DefaultAlpha    = 0.7
)

// Linear contracts toward equilibrium: next = 1 + alpha*(fxi-1).
type Linear struct {
	Alpha    float64
	ClampMin float64
	ClampMax float64
}

// NewLinear returns a contraction with the default clamp rail. alpha must
// lie strictly inside (0, 1).
func NewLinear(alpha float64) (*Linear, error) {
	return NewLinearWithBounds(alpha, DefaultClampMin, DefaultClampMax)
}

func NewLinearWithBounds(alpha, lo, hi float64) (*Linear, error) {
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("%w: alpha must be in (0, 1), got %v", sim.ErrInvalidParameter, alpha)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || lo >= hi || lo > sim.Equilibrium || hi < sim.Equilibrium {
		return nil, fmt.Errorf("%w: clamp [%v, %v] must contain equilibrium", sim.ErrInvalidParameter, lo, hi)
	}
	return &Linear{Alpha: alpha, ClampMin: lo, ClampMax: hi}, nil
}

func (l *Linear) Apply(fxi float64) float64 {
	next := sim.Equilibrium + l.Alpha*(fxi-sim.Equilibrium)
	if next < l.ClampMin {
		next = l.ClampMin
	}
	if next > l.ClampMax {
		next = l.ClampMax
	}
	return next
}

func (l *Linear) Kappa(prev, next float64) float64 {
	return Kappa(prev, next)
}
