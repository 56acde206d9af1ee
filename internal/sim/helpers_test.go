package sim_test

import (
	"fmt"
	"math"

	"github.com/san-kum/fresim/internal/sim"
)

// looseState keeps delta independent of fxi, so shocks to delta persist
// across operator updates.
type looseState struct {
	fxi, qp, qf, delta float64
	deltaMax          float64
}

func newLooseState(fxi, qp, qf float64) *looseState {
	s := &looseState{fxi: fxi, qp: qp, qf: qf, deltaMax: sim.DefaultDeltaMax}
	s.ComputeDelta()
	return s
}

func (s *looseState) FXI() float64   { return s.fxi }
func (s *looseState) Delta() float64 { return s.delta }

func (s *looseState) Validate() error {
	if math.Abs(s.delta) > 2*s.deltaMax {
		return fmt.Errorf("%w: delta %f", sim.ErrInvariantViolation, s.delta)
	}
	return nil
}

func (s *looseState) ComputeDelta()                   { s.delta = s.qp - s.qf }
func (s *looseState) UpdateFromOperator(next float64) { s.fxi = next }
func (s *looseState) SetFXI(v float64)                { s.fxi = v }
func (s *looseState) SetDelta(v float64)              { s.qp = s.qf + v; s.ComputeDelta() }

// plainError fails validation with an error that does not wrap the
// sentinel.
type plainError struct{ looseState }

func (p *plainError) Validate() error {
	if p.fxi > 1.5 {
		return fmt.Errorf("fxi too high")
	}
	return nil
}

type countingObserver struct {
	samples []sim.Sample
}

func (c *countingObserver) OnStep(s sim.Sample) { c.samples = append(c.samples, s) }

type maxDeltaMetric struct{ max float64 }

func (m *maxDeltaMetric) Name() string { return "max_delta" }
func (m *maxDeltaMetric) Observe(s sim.Sample) {
	if d := math.Abs(s.Delta); d > m.max {
		m.max = d
	}
}
func (m *maxDeltaMetric) Value() float64 { return m.max }
func (m *maxDeltaMetric) Reset()         { m.max = 0 }
