package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fresim/internal/sim"
)

func validResult() *sim.Result {
	k := 0.5
	step := 1
	return &sim.Result{
		FXISeries:      []float64{1.2, 1.1},
		DeltaSeries:    []float64{0.2, 0.1},
		KappaSeries:    []*float64{nil, &k},
		Zones:          []sim.Zone{sim.ZoneStable, sim.ZoneBreach},
		BreachOccurred: true,
		BreachStep:     &step,
		BreachType:     sim.BreachDeltaExceeded,
		StepsTaken:     1,
	}
}

var _ = Describe("Result", func() {
	It("accepts a consistent result", func() {
		Expect(validResult().Validate()).To(Succeed())
	})

	DescribeTable("Validate rejects",
		func(mutate func(*sim.Result)) {
			r := validResult()
			mutate(r)
			Expect(r.Validate()).NotTo(Succeed())
		},
		Entry("empty series", func(r *sim.Result) {
			r.FXISeries, r.DeltaSeries, r.KappaSeries, r.Zones = nil, nil, nil, nil
		}),
		Entry("length mismatch", func(r *sim.Result) { r.Zones = r.Zones[:1] }),
		Entry("wrong step count", func(r *sim.Result) { r.StepsTaken = 4 }),
		Entry("kappa at index 0", func(r *sim.Result) { r.KappaSeries[0] = r.KappaSeries[1] }),
		Entry("flag without step", func(r *sim.Result) { r.BreachStep = nil }),
		Entry("flag without type", func(r *sim.Result) { r.BreachType = sim.BreachNone }),
		Entry("step out of range", func(r *sim.Result) { s := 5; r.BreachStep = &s }),
	)

	It("exposes samples", func() {
		r := validResult()
		Expect(r.Len()).To(Equal(2))

		first := r.Sample(0)
		Expect(math.IsNaN(first.Kappa)).To(BeTrue())
		Expect(first.FXI).To(Equal(1.2))

		last := r.Final()
		Expect(last.Step).To(Equal(1))
		Expect(last.Kappa).To(Equal(0.5))
		Expect(last.Zone).To(Equal(sim.ZoneBreach))

		_, ok := r.Kappa(7)
		Expect(ok).To(BeFalse())
	})
})
