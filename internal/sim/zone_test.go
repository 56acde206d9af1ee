package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fresim/internal/sim"
)

var _ = Describe("Classify", func() {
	th := sim.DefaultThresholds()

	DescribeTable("zone bands",
		func(fxi, delta float64, want sim.Zone) {
			Expect(sim.Classify(fxi, delta, th)).To(Equal(want))
		},
		Entry("equilibrium", 1.0, 0.0, sim.ZoneStable),
		Entry("small deviation", 1.1, 0.1, sim.ZoneStable),
		Entry("delta at watch boundary", 1.0, 0.8, sim.ZoneStable),
		Entry("delta beyond watch boundary", 1.0, 0.85, sim.ZoneWatch),
		Entry("negative delta near limit", 1.0, -0.9, sim.ZoneWatch),
		Entry("fxi high watch", 1.45, 0.0, sim.ZoneWatch),
		Entry("fxi low watch", 0.55, 0.0, sim.ZoneWatch),
		Entry("fxi exactly at max", 1.5, 0.0, sim.ZoneWatch),
		Entry("fxi exactly at min", 0.5, 0.0, sim.ZoneWatch),
		Entry("delta exactly at max", 1.0, 1.0, sim.ZoneWatch),
		Entry("delta exceeded", 1.0, 1.01, sim.ZoneBreach),
		Entry("fxi above range", 1.51, 0.0, sim.ZoneBreach),
		Entry("fxi below range", 0.49, 0.0, sim.ZoneBreach),
		Entry("nan fxi", math.NaN(), 0.0, sim.ZoneBreach),
		Entry("nan delta", 1.0, math.NaN(), sim.ZoneBreach),
	)

	It("is a pure function of its inputs", func() {
		for _, fxi := range []float64{0.4, 0.55, 1.0, 1.3, 1.49, 2.0} {
			for _, delta := range []float64{-1.2, -0.5, 0, 0.81, 1.0} {
				first := sim.Classify(fxi, delta, th)
				Expect(sim.Classify(fxi, delta, th)).To(Equal(first))
			}
		}
	})

	It("uses the configured watch ratio", func() {
		tight := th
		tight.Zones.WatchRatio = 0.1
		Expect(sim.Classify(1.1, 0.0, tight)).To(Equal(sim.ZoneWatch))
		Expect(sim.Classify(1.1, 0.0, th)).To(Equal(sim.ZoneStable))
	})

	It("orders zones by severity", func() {
		Expect(sim.ZoneStable.Severity()).To(BeNumerically("<", sim.ZoneWatch.Severity()))
		Expect(sim.ZoneWatch.Severity()).To(BeNumerically("<", sim.ZoneBreach.Severity()))
		Expect(sim.Zone("UNKNOWN").Severity()).To(Equal(-1))
	})
})

var _ = Describe("DetectBreach", func() {
	th := sim.DefaultThresholds()

	It("treats range ends as nominal", func() {
		for _, fxi := range []float64{th.FXIMin, th.FXIMax} {
			_, ok := sim.DetectBreach(fxi, th.DeltaMax, th)
			Expect(ok).To(BeFalse())
		}
	})

	It("checks delta before fxi", func() {
		kind, ok := sim.DetectBreach(2.0, 1.5, th)
		Expect(ok).To(BeTrue())
		Expect(kind).To(Equal(sim.BreachDeltaExceeded))
	})

	It("reports fxi out of range", func() {
		kind, ok := sim.DetectBreach(0.3, 0.0, th)
		Expect(ok).To(BeTrue())
		Expect(kind).To(Equal(sim.BreachFXIOutOfRange))
	})

	It("reports nothing inside the thresholds", func() {
		kind, ok := sim.DetectBreach(1.2, -0.4, th)
		Expect(ok).To(BeFalse())
		Expect(kind).To(Equal(sim.BreachNone))
	})
})
