package operators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/fresim/internal/sim"
)

func TestNewLinearInvalidAlpha(t *testing.T) {
	tests := []struct {
		name  string
		alpha float64
	}{
		{"zero", 0},
		{"one", 1},
		{"negative", -0.2},
		{"above one", 1.5},
		{"nan", math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLinear(tt.alpha)
			if !errors.Is(err, sim.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestNewLinearInvalidBounds(t *testing.T) {
	if _, err := NewLinearWithBounds(0.5, 2.0, 3.0); !errors.Is(err, sim.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for range above equilibrium, got %v", err)
	}
	if _, err := NewLinearWithBounds(0.5, 1.5, 0.5); !errors.Is(err, sim.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for inverted range, got %v", err)
	}
}

func TestLinearGeometricConvergence(t *testing.T) {
	for _, alpha := range []float64{0.1, 0.4, 0.7, 0.95} {
		op, err := NewLinear(alpha)
		if err != nil {
			t.Fatalf("alpha %.2f: %v", alpha, err)
		}

		for _, x0 := range []float64{0.3, 0.9, 1.15, 3.0} {
			x := x0
			for step := 1; step <= 30; step++ {
				next := op.Apply(x)
				want := math.Pow(alpha, float64(step)) * math.Abs(x0-1)
				if got := math.Abs(next - 1); math.Abs(got-want) > 1e-9 {
					t.Fatalf("alpha %.2f x0 %.2f step %d: |fxi-1| = %g, want %g", alpha, x0, step, got, want)
				}
				if math.Abs(x-1) > 1e-6 {
					if k := op.Kappa(x, next); math.Abs(k-alpha) > 1e-6 {
						t.Fatalf("alpha %.2f step %d: kappa = %g", alpha, step, k)
					}
				}
				x = next
			}
		}
	}
}

func TestLinearClamp(t *testing.T) {
	op, err := NewLinearWithBounds(0.5, 0.8, 1.2)
	if err != nil {
		t.Fatal(err)
	}

	if got := op.Apply(5.0); got != 1.2 {
		t.Errorf("expected clamp to 1.2, got %f", got)
	}
	if got := op.Apply(-3.0); got != 0.8 {
		t.Errorf("expected clamp to 0.8, got %f", got)
	}
	if got := op.Apply(1.0); got != 1.0 {
		t.Errorf("equilibrium should be a fixed point, got %f", got)
	}
}

func TestKappa(t *testing.T) {
	tests := []struct {
		name       string
		prev, next float64
		want       float64
	}{
		{"halved", 1.2, 1.1, 0.5},
		{"crossing", 1.2, 0.9, 0.5},
		{"expanding", 1.1, 1.3, 3.0},
		{"equilibrium", 1.0, 1.7, 0.0},
		{"equilibrium fixed", 1.0, 1.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kappa(tt.prev, tt.next); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Kappa(%v, %v) = %v, want %v", tt.prev, tt.next, got, tt.want)
			}
		})
	}
}

func TestNone(t *testing.T) {
	op := NewNone()
	if got := op.Apply(1.3); got != 1.3 {
		t.Errorf("expected unchanged fxi, got %f", got)
	}
	if got := op.Kappa(1.3, 1.3); math.Abs(got-1) > 1e-12 {
		t.Errorf("expected kappa 1, got %f", got)
	}
}

func TestGet(t *testing.T) {
	op, err := Get("linear", 0.4)
	if err != nil {
		t.Fatalf("get linear: %v", err)
	}
	if l, ok := op.(*Linear); !ok || l.Alpha != 0.4 {
		t.Errorf("expected *Linear with alpha 0.4, got %#v", op)
	}

	if _, err := Get("linear", 2); !errors.Is(err, sim.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}

	if _, err := Get("quadratic", 0.4); err == nil {
		t.Error("expected error for unknown operator")
	}

	if names := Names(); len(names) != 2 || names[0] != "linear" {
		t.Errorf("unexpected names %v", names)
	}
}
