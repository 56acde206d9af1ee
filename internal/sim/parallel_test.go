package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fresim/internal/operators"
	"github.com/san-kum/fresim/internal/scenarios"
	"github.com/san-kum/fresim/internal/sim"
	"github.com/san-kum/fresim/internal/states"
)

var _ = Describe("Ensemble", func() {
	alphas := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}

	build := func(idx int) (sim.RunSpec, error) {
		op, err := operators.NewLinear(alphas[idx])
		if err != nil {
			return sim.RunSpec{}, err
		}
		return sim.RunSpec{
			Initial:  states.NewMass(1.2, 1.0, 1.15),
			Operator: op,
			Scenario: scenarios.NoShock{},
			Horizon:  10,
		}, nil
	}

	It("returns results in index order", func() {
		results, err := sim.NewEnsemble(len(alphas), build).WithWorkers(3).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(len(alphas)))

		for i, res := range results {
			want := 1 + 0.15*math.Pow(alphas[i], 10)
			Expect(res.Final().FXI).To(BeNumerically("~", want, 1e-12))
		}
	})

	It("gives every run its own metrics", func() {
		results, err := sim.NewEnsemble(len(alphas), build).
			WithMetrics(func() []sim.Metric { return []sim.Metric{&maxDeltaMetric{}} }).
			Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		for i, res := range results {
			Expect(res.Metrics["max_delta"]).To(BeNumerically("~", 0.15*alphas[i], 1e-12))
		}
	})

	It("propagates build errors", func() {
		boom := errors.New("boom")
		_, err := sim.NewEnsemble(4, func(idx int) (sim.RunSpec, error) {
			if idx == 2 {
				return sim.RunSpec{}, boom
			}
			return build(idx)
		}).Run(context.Background())
		Expect(err).To(MatchError(boom))
		Expect(err.Error()).To(ContainSubstring("run 2"))
	})

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := sim.NewEnsemble(len(alphas), build).Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("reports every failure separately with RunAll", func() {
		results, errs := sim.NewEnsemble(4, func(idx int) (sim.RunSpec, error) {
			if idx%2 == 1 {
				return sim.RunSpec{}, errors.New("odd")
			}
			return build(idx)
		}).RunAll(context.Background())

		Expect(results[0]).NotTo(BeNil())
		Expect(errs[0]).NotTo(HaveOccurred())
		Expect(results[1]).To(BeNil())
		Expect(errs[1]).To(MatchError(ContainSubstring("run 1: odd")))
		Expect(results[2]).NotTo(BeNil())
		Expect(errs[3]).To(HaveOccurred())
	})
})
