package sim_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fresim/internal/operators"
	"github.com/san-kum/fresim/internal/scenarios"
	"github.com/san-kum/fresim/internal/sim"
	"github.com/san-kum/fresim/internal/states"
)

var _ = Describe("Simulator", func() {
	var op *operators.Linear

	BeforeEach(func() {
		var err error
		op, err = operators.NewLinear(0.4)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("monotonic convergence", func() {
		var res *sim.Result

		BeforeEach(func() {
			var err error
			res, err = sim.Run(states.NewMass(1.2, 1.0, 1.15), op, scenarios.NoShock{}, 20, nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("records horizon+1 entries in every series", func() {
			Expect(res.FXISeries).To(HaveLen(21))
			Expect(res.DeltaSeries).To(HaveLen(21))
			Expect(res.KappaSeries).To(HaveLen(21))
			Expect(res.Zones).To(HaveLen(21))
			Expect(res.StepsTaken).To(Equal(20))
			Expect(res.Validate()).To(Succeed())
		})

		It("starts from the initial state", func() {
			Expect(res.FXISeries[0]).To(Equal(1.15))
			Expect(res.DeltaSeries[0]).To(BeNumerically("~", 0.2, 1e-12))
			Expect(res.KappaSeries[0]).To(BeNil())
		})

		It("approaches equilibrium strictly from above", func() {
			for i := 1; i < res.Len(); i++ {
				Expect(res.FXISeries[i]).To(BeNumerically("<", res.FXISeries[i-1]))
				Expect(res.FXISeries[i]).To(BeNumerically(">", 1.0))
				Expect(res.DeltaSeries[i]).To(BeNumerically("<", res.DeltaSeries[i-1]))
				Expect(res.DeltaSeries[i]).To(BeNumerically(">", 0.0))
			}
		})

		It("follows the geometric rate", func() {
			for i := 1; i < res.Len(); i++ {
				want := math.Pow(0.4, float64(i)) * 0.15
				Expect(res.FXISeries[i]-1).To(BeNumerically("~", want, 1e-12))

				k, ok := res.Kappa(i)
				Expect(ok).To(BeTrue())
				Expect(k).To(BeNumerically("~", 0.4, 1e-5))
			}
		})

		It("never breaches and stays stable", func() {
			Expect(res.BreachOccurred).To(BeFalse())
			Expect(res.BreachStep).To(BeNil())
			Expect(res.BreachType).To(Equal(sim.BreachNone))
			Expect(res.Zones).To(HaveEach(sim.ZoneStable))
		})

		It("resolves thresholds from the state", func() {
			Expect(res.Thresholds).To(Equal(sim.DefaultThresholds()))
		})
	})

	Describe("forced breach", func() {
		shock := scenarios.NewSchedule("delta-spike",
			scenarios.Shock{Step: 5, Kind: scenarios.ShockDeltaSet, Value: 2.0})

		It("records the first breach and keeps running", func() {
			res, err := sim.Run(newLooseState(1.15, 1.2, 1.0), op, shock, 20, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.BreachOccurred).To(BeTrue())
			Expect(res.BreachStep).NotTo(BeNil())
			Expect(*res.BreachStep).To(Equal(6))
			Expect(res.BreachType).To(Equal(sim.BreachDeltaExceeded))
			Expect(res.FXISeries).To(HaveLen(21))
			Expect(res.Zones[5]).NotTo(Equal(sim.ZoneBreach))
			Expect(res.Zones[6]).To(Equal(sim.ZoneBreach))
			Expect(res.Zones[20]).To(Equal(sim.ZoneBreach))
			Expect(res.Validate()).To(Succeed())
		})

		It("stops after the breach under the halt policy", func() {
			cfg := &sim.Config{Policy: sim.BreachHalt}
			res, err := sim.Run(newLooseState(1.15, 1.2, 1.0), op, shock, 20, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(*res.BreachStep).To(Equal(6))
			Expect(res.StepsTaken).To(Equal(6))
			Expect(res.Len()).To(Equal(7))
			Expect(res.Validate()).To(Succeed())
		})

		It("keeps the earliest breach when later steps breach differently", func() {
			later := scenarios.NewSchedule("two-kicks",
				scenarios.Shock{Step: 2, Kind: scenarios.ShockFXISet, Value: 4.0},
				scenarios.Shock{Step: 5, Kind: scenarios.ShockDeltaSet, Value: 2.0},
			)
			res, err := sim.Run(newLooseState(1.15, 1.2, 1.0), op, later, 20, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(*res.BreachStep).To(Equal(3))
			Expect(res.BreachType).To(Equal(sim.BreachFXIOutOfRange))
		})
	})

	Describe("threshold overrides", func() {
		It("reports delta before fxi when both cross", func() {
			cfg := &sim.Config{DeltaMax: sim.Float(0.05), FXIMax: sim.Float(1.05)}
			res, err := sim.Run(states.NewMass(1.2, 1.0, 1.15), op, nil, 10, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(*res.BreachStep).To(Equal(1))
			Expect(res.BreachType).To(Equal(sim.BreachDeltaExceeded))
		})

		It("reports fxi when only the range is tightened", func() {
			cfg := &sim.Config{FXIMax: sim.Float(1.05)}
			res, err := sim.Run(states.NewMass(1.2, 1.0, 1.15), op, nil, 10, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(*res.BreachStep).To(Equal(1))
			Expect(res.BreachType).To(Equal(sim.BreachFXIOutOfRange))
			Expect(res.Thresholds.FXIMax).To(Equal(1.05))
			Expect(res.Thresholds.DeltaMax).To(Equal(sim.DefaultDeltaMax))
		})

		It("does not record a breach for the initial state", func() {
			cfg := &sim.Config{DeltaMax: sim.Float(0.1)}
			res, err := sim.Run(states.NewMass(1.2, 1.0, 1.15), op, nil, 10, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Zones[0]).To(Equal(sim.ZoneBreach))
			Expect(res.BreachOccurred).To(BeFalse())
		})

		It("rejects an inverted range", func() {
			cfg := &sim.Config{FXIMin: sim.Float(1.2), FXIMax: sim.Float(0.8)}
			_, err := sim.Run(states.NewMass(1.2, 1.0, 1.15), op, nil, 10, cfg)
			Expect(err).To(MatchError(sim.ErrInvalidParameter))
		})
	})

	Describe("hard failures", func() {
		It("rejects a non-positive horizon", func() {
			for _, h := range []int{0, -3} {
				_, err := sim.Run(states.NewMass(1.2, 1.0, 1.15), op, nil, h, nil)
				Expect(errors.Is(err, sim.ErrInvalidParameter)).To(BeTrue())
			}
		})

		It("rejects a nil state or operator", func() {
			_, err := sim.Run(nil, op, nil, 5, nil)
			Expect(err).To(MatchError(sim.ErrInvalidParameter))

			_, err = sim.Run(states.NewMass(1.2, 1.0, 1.15), nil, nil, 5, nil)
			Expect(err).To(MatchError(sim.ErrInvalidParameter))
		})

		It("fails fast on an invalid initial state", func() {
			res, err := sim.Run(states.NewMass(5.0, 1.0, 1.0), op, nil, 5, nil)
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(sim.ErrInvariantViolation))

			var stepErr *sim.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(0))
		})

		It("aborts when a step leaves the hard bounds", func() {
			blowup := scenarios.NewSchedule("blowup",
				scenarios.Shock{Step: 3, Kind: scenarios.ShockDeltaSet, Value: 5.0})

			res, err := sim.Run(newLooseState(1.15, 1.2, 1.0), op, blowup, 20, nil)
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(sim.ErrInvariantViolation))

			var stepErr *sim.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(4))
			Expect(stepErr.Delta).To(BeNumerically("~", 5.0, 1e-12))
		})

		It("wraps validation errors that do not use the sentinel", func() {
			st := &plainError{looseState: *newLooseState(1.0, 1.0, 1.0)}
			kick := scenarios.NewSchedule("", scenarios.Shock{Step: 1, Kind: scenarios.ShockFXISet, Value: 4.0})

			_, err := sim.Run(st, operators.NewNone(), kick, 5, nil)
			Expect(err).To(MatchError(sim.ErrInvariantViolation))
			Expect(err.Error()).To(ContainSubstring("fxi too high"))
		})

		It("rejects a scenario returning nil", func() {
			vanish := scenarios.Func(func(sim.State, int) sim.State { return nil })
			_, err := sim.Run(states.NewMass(1.2, 1.0, 1.15), op, vanish, 5, nil)
			Expect(err).To(MatchError(sim.ErrInvalidParameter))
		})
	})

	Describe("equilibrium", func() {
		It("reports zero kappa at every step", func() {
			res, err := sim.Run(states.NewMass(1.0, 1.0, 1.0), op, nil, 5, nil)
			Expect(err).NotTo(HaveOccurred())

			for i := 1; i < res.Len(); i++ {
				k, ok := res.Kappa(i)
				Expect(ok).To(BeTrue())
				Expect(k).To(Equal(0.0))
			}
		})
	})

	Describe("observers and metrics", func() {
		It("sees every post-step sample", func() {
			obs := &countingObserver{}
			m := &maxDeltaMetric{max: 99}

			s := sim.New(op, nil)
			s.AddObserver(obs)
			s.AddMetric(m)

			res, err := s.Run(states.NewMass(1.2, 1.0, 1.15), 8, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(obs.samples).To(HaveLen(8))
			Expect(obs.samples[0].Step).To(Equal(1))
			Expect(obs.samples[7].Step).To(Equal(8))
			Expect(obs.samples[7].FXI).To(Equal(res.FXISeries[8]))

			Expect(res.Metrics).To(HaveKey("max_delta"))
			Expect(res.Metrics["max_delta"]).To(BeNumerically("~", 0.06, 1e-12))
		})
	})
})

var _ = Describe("StepError", func() {
	It("formats the step context", func() {
		err := &sim.StepError{Step: 3, FXI: 1.5, Delta: 0.25, Wrapped: errors.New("boom")}
		Expect(err.Error()).To(Equal("step 3 (fxi=1.500000, delta=0.250000): boom"))
		Expect(errors.Unwrap(err)).To(MatchError("boom"))
	})
})
