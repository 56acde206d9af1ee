package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/fresim/internal/config"
	"github.com/san-kum/fresim/internal/metrics"
	"github.com/san-kum/fresim/internal/sim"
)

// Registry names the run-file parameters that can be set from a number,
// so sweeps and flags can address them uniformly.
type Registry struct {
	params map[string]func(*config.Config, float64)
}

func NewRegistry() *Registry {
	r := &Registry{
		params: make(map[string]func(*config.Config, float64)),
	}

	r.params["alpha"] = func(c *config.Config, v float64) { c.Alpha = v }
	r.params["clamp_min"] = func(c *config.Config, v float64) { c.ClampMin = v }
	r.params["clamp_max"] = func(c *config.Config, v float64) { c.ClampMax = v }
	r.params["horizon"] = func(c *config.Config, v float64) { c.Horizon = int(math.Round(v)) }

	r.params["qp"] = func(c *config.Config, v float64) { c.Initial.Qp = v }
	r.params["qf"] = func(c *config.Config, v float64) { c.Initial.Qf = v }
	r.params["fxi"] = func(c *config.Config, v float64) { c.Initial.FXI = v }

	r.params["delta_max"] = func(c *config.Config, v float64) { c.Thresholds.DeltaMax = sim.Float(v) }
	r.params["fxi_min"] = func(c *config.Config, v float64) { c.Thresholds.FXIMin = sim.Float(v) }
	r.params["fxi_max"] = func(c *config.Config, v float64) { c.Thresholds.FXIMax = sim.Float(v) }
	r.params["watch_ratio"] = func(c *config.Config, v float64) { c.Thresholds.WatchRatio = sim.Float(v) }

	return r
}

// Apply returns a copy of base with every named parameter set.
func (r *Registry) Apply(base *config.Config, params map[string]float64) (*config.Config, error) {
	cfg := base.Clone()
	for name, v := range params {
		fn, ok := r.params[name]
		if !ok {
			return nil, fmt.Errorf("unknown parameter: %s", name)
		}
		fn(cfg, v)
	}
	return cfg, nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.params[name]
	return ok
}

func (r *Registry) ListParams() []string {
	names := make([]string, 0, len(r.params))
	for name := range r.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return metrics.Default()
}
