package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fresim/internal/sim"
	"github.com/san-kum/fresim/internal/states"
)

var _ = Describe("Config", func() {
	Describe("Resolve", func() {
		It("uses the default table for a nil config and an unbounded state", func() {
			th, err := (*sim.Config)(nil).Resolve(newLooseState(1, 1, 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(th).To(Equal(sim.DefaultThresholds()))
		})

		It("reads a bounded state's own thresholds", func() {
			limits := sim.Thresholds{DeltaMax: 2, FXIMin: 0.2, FXIMax: 3}
			st := states.NewMassWithLimits(1, 1, 1, limits)

			th, err := (&sim.Config{}).Resolve(st)
			Expect(err).NotTo(HaveOccurred())
			Expect(th.DeltaMax).To(Equal(2.0))
			Expect(th.FXIMax).To(Equal(3.0))
			Expect(th.Zones.WatchRatio).To(Equal(sim.DefaultWatchRatio))
		})

		It("lets overrides win over the state", func() {
			st := states.NewMass(1, 1, 1)
			cfg := &sim.Config{
				DeltaMax: sim.Float(0.5),
				FXIMin:   sim.Float(0.9),
				Zones:    &sim.ZoneBoundaries{WatchRatio: 0.5},
			}

			th, err := cfg.Resolve(st)
			Expect(err).NotTo(HaveOccurred())
			Expect(th).To(Equal(sim.Thresholds{
				DeltaMax: 0.5,
				FXIMin:   0.9,
				FXIMax:   sim.DefaultFXIMax,
				Zones:    sim.ZoneBoundaries{WatchRatio: 0.5},
			}))
		})
	})

	DescribeTable("Thresholds.Validate rejects",
		func(mutate func(*sim.Thresholds)) {
			th := sim.DefaultThresholds()
			mutate(&th)
			Expect(th.Validate()).To(MatchError(sim.ErrInvalidParameter))
		},
		Entry("zero delta max", func(th *sim.Thresholds) { th.DeltaMax = 0 }),
		Entry("nan delta max", func(th *sim.Thresholds) { th.DeltaMax = math.NaN() }),
		Entry("min above equilibrium", func(th *sim.Thresholds) { th.FXIMin = 1.1 }),
		Entry("max below equilibrium", func(th *sim.Thresholds) { th.FXIMax = 0.9 }),
		Entry("infinite max", func(th *sim.Thresholds) { th.FXIMax = math.Inf(1) }),
		Entry("zero watch ratio", func(th *sim.Thresholds) { th.Zones.WatchRatio = 0 }),
		Entry("watch ratio above one", func(th *sim.Thresholds) { th.Zones.WatchRatio = 1.2 }),
	)

	It("parses breach policies", func() {
		p, err := sim.ParseBreachPolicy("")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(sim.BreachContinue))

		p, err = sim.ParseBreachPolicy("halt")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(sim.BreachHalt))
		Expect(p.String()).To(Equal("halt"))

		_, err = sim.ParseBreachPolicy("panic")
		Expect(err).To(MatchError(sim.ErrInvalidParameter))
	})
})
