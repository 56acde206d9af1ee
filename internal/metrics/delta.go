package metrics

import (
	"math"

	"github.com/san-kum/fresim/internal/sim"
)

type MaxDelta struct {
	name string
	max  float64
}

func NewMaxDelta() *MaxDelta {
	return &MaxDelta{
		name: "max_delta",
	}
}

func (m *MaxDelta) Name() string { return m.name }

func (m *MaxDelta) Observe(x sim.Sample) {
	m.max = math.Max(m.max, math.Abs(x.Delta))
}

func (m *MaxDelta) Value() float64 {
	return m.max
}

func (m *MaxDelta) Reset() {
	m.max = 0
}

// FinalGap is the distance from equilibrium at the last observed step.
type FinalGap struct {
	name string
	gap  float64
}

func NewFinalGap() *FinalGap {
	return &FinalGap{
		name: "final_gap",
	}
}

func (f *FinalGap) Name() string { return f.name }

func (f *FinalGap) Observe(x sim.Sample) {
	f.gap = math.Abs(x.FXI - sim.Equilibrium)
}

func (f *FinalGap) Value() float64 {
	return f.gap
}

func (f *FinalGap) Reset() {
	f.gap = 0
}
