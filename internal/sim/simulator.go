package sim

import (
	"fmt"
	"log/slog"
)

type Simulator struct {
	operator  Operator
	scenario  Scenario
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
}

// New returns a simulator for the given operator and scenario. A nil
// scenario applies no perturbation.
func New(op Operator, sc Scenario) *Simulator {
	if sc == nil {
		sc = noShock{}
	}
	return &Simulator{
		operator:  op,
		scenario:  sc,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    slog.New(slog.DiscardHandler),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetLogger routes breach and failure events to l.
func (s *Simulator) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Run is shorthand for New(op, sc).Run(initial, horizon, cfg).
func Run(initial State, op Operator, sc Scenario, horizon int, cfg *Config) (*Result, error) {
	return New(op, sc).Run(initial, horizon, cfg)
}

// Run steps initial through horizon steps. The state is mutated in place.
//
// Soft breaches are recorded in the result; only the first one is kept.
// A state failing Validate aborts the run with a *StepError wrapping
// ErrInvariantViolation and no result.
func (s *Simulator) Run(initial State, horizon int, cfg *Config) (*Result, error) {
	if err := s.validate(initial, horizon); err != nil {
		return nil, err
	}

	th, err := cfg.Resolve(initial)
	if err != nil {
		return nil, err
	}

	if err := initial.Validate(); err != nil {
		return nil, s.fail(0, initial, err)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result := newResult(horizon, th)
	state := initial
	result.record(state.FXI(), state.Delta(), nil, Classify(state.FXI(), state.Delta(), th))

	halt := cfg.policy() == BreachHalt

	for t := 0; t < horizon; t++ {
		state = s.scenario.Apply(state, t)
		if state == nil {
			return nil, &StepError{Step: t, Wrapped: fmt.Errorf("%w: scenario returned nil state", ErrInvalidParameter)}
		}

		prev := state.FXI()
		next := s.operator.Apply(prev)

		state.UpdateFromOperator(next)
		state.ComputeDelta()

		if err := state.Validate(); err != nil {
			return nil, s.fail(t+1, state, err)
		}

		kappa := s.operator.Kappa(prev, next)
		fxi, delta := state.FXI(), state.Delta()
		zone := Classify(fxi, delta, th)

		if !result.BreachOccurred {
			if kind, ok := DetectBreach(fxi, delta, th); ok {
				result.recordBreach(t+1, kind)
				s.logger.Warn("threshold breached",
					"step", t+1, "type", string(kind), "fxi", fxi, "delta", delta)
			}
		}

		result.record(fxi, delta, &kappa, zone)
		result.StepsTaken++

		sample := Sample{Step: t + 1, FXI: fxi, Delta: delta, Kappa: kappa, Zone: zone}
		for _, m := range s.metrics {
			m.Observe(sample)
		}
		for _, obs := range s.observers {
			obs.OnStep(sample)
		}

		if halt && result.BreachOccurred {
			break
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validate(initial State, horizon int) error {
	if horizon <= 0 {
		return fmt.Errorf("%w: horizon must be positive, got %d", ErrInvalidParameter, horizon)
	}
	if initial == nil {
		return fmt.Errorf("%w: nil initial state", ErrInvalidParameter)
	}
	if s.operator == nil {
		return fmt.Errorf("%w: nil operator", ErrInvalidParameter)
	}
	return nil
}

func (s *Simulator) fail(step int, st State, err error) error {
	stepErr := &StepError{Step: step, FXI: st.FXI(), Delta: st.Delta(), Wrapped: asInvariant(err)}
	s.logger.Error("state validation failed", "step", step, "err", err)
	return stepErr
}

type noShock struct{}

func (noShock) Apply(s State, _ int) State { return s }
