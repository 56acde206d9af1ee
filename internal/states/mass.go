package states

import (
	"fmt"
	"math"

	"github.com/san-kum/fresim/internal/sim"
)

// DefaultSlack widens the hard validation bounds beyond the nominal
// thresholds so that floating-point drift near a limit is not fatal.
const DefaultSlack = 2.0

// Mass tracks an actual magnitude Qp against a reference Qf. Delta is
// Qp-Qf, and the indicator is tied back into Qp by
// Qp = Qf + (FXI-1)*DeltaMax + Offset.
type Mass struct {
	Qp     float64
	Qf     float64
	Limits sim.Thresholds
	Slack  float64

	// Offset is a structural deviation that survives operator updates.
	// Delta shocks move it.
	Offset float64

	fxi   float64
	delta float64
}

// NewMass returns a state with the default threshold table.
func NewMass(qp, qf, fxi float64) *Mass {
	return NewMassWithLimits(qp, qf, fxi, sim.DefaultThresholds())
}

func NewMassWithLimits(qp, qf, fxi float64, limits sim.Thresholds) *Mass {
	m := &Mass{
		Qp:     qp,
		Qf:     qf,
		Limits: limits,
		Slack:  DefaultSlack,
		fxi:    fxi,
	}
	m.ComputeDelta()
	return m
}

func (m *Mass) FXI() float64   { return m.fxi }
func (m *Mass) Delta() float64 { return m.delta }

func (m *Mass) Thresholds() sim.Thresholds { return m.Limits }

// Validate checks fxi and delta against the thresholds scaled by Slack.
// The fxi range is widened around equilibrium, so with the defaults it
// becomes [0, 2].
func (m *Mass) Validate() error {
	if math.IsNaN(m.fxi) || math.IsInf(m.fxi, 0) || math.IsNaN(m.delta) || math.IsInf(m.delta, 0) {
		return fmt.Errorf("%w: non-finite state fxi=%v delta=%v", sim.ErrInvariantViolation, m.fxi, m.delta)
	}

	slack := m.slack()
	if limit := m.Limits.DeltaMax * slack; math.Abs(m.delta) > limit {
		return fmt.Errorf("%w: delta %.6f exceeds %.6f", sim.ErrInvariantViolation, m.delta, limit)
	}

	lo := sim.Equilibrium - (sim.Equilibrium-m.Limits.FXIMin)*slack
	hi := sim.Equilibrium + (m.Limits.FXIMax-sim.Equilibrium)*slack
	if m.fxi < lo || m.fxi > hi {
		return fmt.Errorf("%w: fxi %.6f outside [%.6f, %.6f]", sim.ErrInvariantViolation, m.fxi, lo, hi)
	}
	return nil
}

func (m *Mass) ComputeDelta() {
	m.delta = m.Qp - m.Qf
}

func (m *Mass) UpdateFromOperator(next float64) {
	m.fxi = next
	m.Qp = m.Qf + (m.fxi-sim.Equilibrium)*m.Limits.DeltaMax + m.Offset
	m.ComputeDelta()
}

func (m *Mass) SetFXI(v float64) {
	m.fxi = v
}

// SetDelta sets delta now and shifts Offset by the same amount, so the
// deviation carries into later steps.
func (m *Mass) SetDelta(v float64) {
	m.Offset += v - m.delta
	m.Qp = m.Qf + v
	m.ComputeDelta()
}

func (m *Mass) slack() float64 {
	if m.Slack < 1 {
		return 1
	}
	return m.Slack
}
