package metrics

import "github.com/san-kum/fresim/internal/sim"

// MeanKappa averages the contraction ratio over steps that started away
// from equilibrium. Steps reporting exactly 0 are skipped.
type MeanKappa struct {
	name    string
	sum     float64
	samples int
}

func NewMeanKappa() *MeanKappa {
	return &MeanKappa{
		name: "mean_kappa",
	}
}

func (m *MeanKappa) Name() string { return m.name }

func (m *MeanKappa) Observe(x sim.Sample) {
	if x.Kappa == 0 {
		return
	}
	m.sum += x.Kappa
	m.samples++
}

func (m *MeanKappa) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanKappa) Reset() {
	m.sum = 0
	m.samples = 0
}
