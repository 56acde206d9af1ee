package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/san-kum/fresim/internal/metrics"
	"github.com/san-kum/fresim/internal/sim"
)

var ErrNoCandidates = errors.New("optim: no grid point completed")

type Goal int

const (
	Minimize Goal = iota
	Maximize
)

// Trial is the outcome of one grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type Report struct {
	Best      map[string]float64
	BestValue float64
	Trials    []Trial
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	goal       Goal
	workers    int
	metrics    func() []sim.Metric
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{
		paramNames: params,
		ranges:     ranges,
		workers:    runtime.NumCPU(),
		metrics:    metrics.Default,
	}
}

func (g *GridSearch) Maximize() *GridSearch {
	g.goal = Maximize
	return g
}

func (g *GridSearch) WithWorkers(n int) *GridSearch {
	if n > 0 {
		g.workers = n
	}
	return g
}

// WithMetrics replaces the metric set attached to every run.
func (g *GridSearch) WithMetrics(fn func() []sim.Metric) *GridSearch {
	g.metrics = fn
	return g
}

// Points enumerates the grid; the last parameter varies fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var points []map[string]float64
	g.collect(0, make(map[string]float64), &points)
	return points
}

func (g *GridSearch) collect(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.collect(depth+1, newParams, out)
	}
}

// Search runs every grid point and picks the best value of metricName.
// Points that fail to build or run are kept in the report with their error
// and never win.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (sim.RunSpec, error),
	metricName string,
) (*Report, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	points := g.Points()
	results, errs := sim.NewEnsemble(len(points), func(idx int) (sim.RunSpec, error) {
		return build(points[idx])
	}).WithWorkers(g.workers).WithMetrics(g.metrics).RunAll(ctx)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{BestValue: math.NaN(), Trials: make([]Trial, len(points))}
	for i, params := range points {
		trial := Trial{Params: params, Value: math.NaN(), Err: errs[i]}
		if trial.Err == nil {
			val, ok := results[i].Metrics[metricName]
			if !ok {
				return nil, fmt.Errorf("optim: unknown metric %q", metricName)
			}
			trial.Value = val
			if g.better(val, report.BestValue) {
				report.BestValue = val
				report.Best = params
			}
		}
		report.Trials[i] = trial
	}

	if report.Best == nil {
		return report, ErrNoCandidates
	}
	return report, nil
}

func (g *GridSearch) better(val, best float64) bool {
	if math.IsNaN(val) {
		return false
	}
	if math.IsNaN(best) {
		return true
	}
	if g.goal == Maximize {
		return val > best
	}
	return val < best
}
