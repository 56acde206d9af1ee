package metrics

import "github.com/san-kum/fresim/internal/sim"

// Stability is the fraction of post-step samples classified STABLE.
type Stability struct {
	name    string
	stable  int
	samples int
}

func NewStability() *Stability {
	return &Stability{
		name: "stability",
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x sim.Sample) {
	s.samples++
	if x.Zone == sim.ZoneStable {
		s.stable++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return float64(s.stable) / float64(s.samples)
}

func (s *Stability) Reset() {
	s.stable = 0
	s.samples = 0
}
