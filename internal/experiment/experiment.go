package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/fresim/internal/config"
	"github.com/san-kum/fresim/internal/sim"
)

// Experiment is one configured run: a run file turned into a simulator.
type Experiment struct {
	cfg       *config.Config
	spec      sim.RunSpec
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the collaborators and attaches metrics. It must be called
// before Run.
func (e *Experiment) Setup(metrics []sim.Metric) error {
	spec, err := e.cfg.RunSpec()
	if err != nil {
		return err
	}
	e.spec = spec
	e.simulator = sim.New(spec.Operator, spec.Scenario)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.simulator.Run(e.spec.Initial, e.spec.Horizon, e.spec.Config)
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator {
	return e.simulator
}

// SetLogger forwards to the simulator once Setup has run.
func (e *Experiment) SetLogger(l *slog.Logger) {
	if e.simulator != nil {
		e.simulator.SetLogger(l)
	}
}
