package sim

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// RunSpec is everything one independent run needs. Builders must return
// fresh State, Operator and Scenario instances for every index.
type RunSpec struct {
	Initial  State
	Operator Operator
	Scenario Scenario
	Horizon  int
	Config   *Config
}

type Ensemble struct {
	numRuns int
	workers int
	build   func(idx int) (RunSpec, error)
	metrics func() []Metric
}

func NewEnsemble(numRuns int, build func(idx int) (RunSpec, error)) *Ensemble {
	return &Ensemble{numRuns: numRuns, workers: runtime.NumCPU(), build: build}
}

// WithMetrics attaches a fresh metric set, built by fn, to every run.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.metrics = fn
	return e
}

// WithWorkers bounds the number of runs executing at once.
func (e *Ensemble) WithWorkers(n int) *Ensemble {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Run executes every run and returns the results in index order. The
// first error by index is returned; ctx is checked before each run starts.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results, errs := e.RunAll(ctx)
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// RunAll executes every run and reports each outcome separately: a failed
// run leaves a nil result and a non-nil error at its index.
func (e *Ensemble) RunAll(ctx context.Context) ([]*Result, []error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)
	sem := make(chan struct{}, e.workers)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}

			spec, err := e.build(idx)
			if err != nil {
				errs[idx] = fmt.Errorf("run %d: %w", idx, err)
				return
			}

			s := New(spec.Operator, spec.Scenario)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			results[idx], err = s.Run(spec.Initial, spec.Horizon, spec.Config)
			if err != nil {
				errs[idx] = fmt.Errorf("run %d: %w", idx, err)
			}
		}(i)
	}

	wg.Wait()
	return results, errs
}
