package sim

import (
	"fmt"
	"math"
)

// Equilibrium is the indicator value every corrective operator drives toward.
const Equilibrium = 1.0

// State holds the evolving quantities of one run. The engine owns the
// instance exclusively for the duration of the run.
type State interface {
	FXI() float64
	Delta() float64
	// Validate reports ErrInvariantViolation when the state is outside its
	// hard bounds.
	Validate() error
	// ComputeDelta recomputes delta from the state's internal quantities.
	ComputeDelta()
	// UpdateFromOperator absorbs a new indicator value and leaves the state
	// self-consistent, so a following ComputeDelta is a no-op.
	UpdateFromOperator(next float64)
}

// Bounded is implemented by states that carry their own default thresholds.
// They are used for any threshold a Config leaves unset.
type Bounded interface {
	Thresholds() Thresholds
}

// Perturbable is implemented by states that accept direct shocks from a
// Scenario.
type Perturbable interface {
	State
	SetFXI(v float64)
	SetDelta(v float64)
}

// Operator is the corrective map applied once per step.
type Operator interface {
	Apply(fxi float64) float64
	// Kappa is the contraction ratio |next-1| / |prev-1|, defined as 0 when
	// prev is exactly at equilibrium.
	Kappa(prev, next float64) float64
}

// Scenario perturbs the state at timestep t. It may mutate and return the
// same instance, or return a different one.
type Scenario interface {
	Apply(s State, t int) State
}

// Zone is a severity band for a (fxi, delta) pair.
type Zone string

const (
	ZoneStable Zone = "STABLE"
	ZoneWatch  Zone = "WATCH"
	ZoneBreach Zone = "BREACH"
)

// Severity orders zones from least to most severe.
func (z Zone) Severity() int {
	switch z {
	case ZoneStable:
		return 0
	case ZoneWatch:
		return 1
	case ZoneBreach:
		return 2
	default:
		return -1
	}
}

// BreachType names the threshold that was crossed.
type BreachType string

const (
	BreachNone          BreachType = ""
	BreachDeltaExceeded BreachType = "delta_exceeded"
	BreachFXIOutOfRange BreachType = "fxi_out_of_range"
)

// Sample is the post-step view of a run handed to observers and metrics.
type Sample struct {
	Step  int
	FXI   float64
	Delta float64
	Kappa float64
	Zone  Zone
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(s Sample)
}

// Metric reduces the post-step samples of a run to a single value.
type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Result is the trajectory of one run. All series are index-aligned and
// index 0 holds the initial state. A Result must not be modified after Run
// returns it.
type Result struct {
	FXISeries      []float64          `json:"fxi_series"`
	DeltaSeries    []float64          `json:"delta_series"`
	KappaSeries    []*float64         `json:"kappa_series"`
	Zones          []Zone             `json:"stability_zones"`
	BreachOccurred bool               `json:"breach_occurred"`
	BreachStep     *int               `json:"breach_step"`
	BreachType     BreachType         `json:"breach_type,omitempty"`
	StepsTaken     int                `json:"steps_taken"`
	Thresholds     Thresholds         `json:"thresholds"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
}

func newResult(horizon int, th Thresholds) *Result {
	return &Result{
		FXISeries:   make([]float64, 0, horizon+1),
		DeltaSeries: make([]float64, 0, horizon+1),
		KappaSeries: make([]*float64, 0, horizon+1),
		Zones:       make([]Zone, 0, horizon+1),
		Thresholds:  th,
		Metrics:     make(map[string]float64),
	}
}

func (r *Result) record(fxi, delta float64, kappa *float64, zone Zone) {
	r.FXISeries = append(r.FXISeries, fxi)
	r.DeltaSeries = append(r.DeltaSeries, delta)
	r.KappaSeries = append(r.KappaSeries, kappa)
	r.Zones = append(r.Zones, zone)
}

func (r *Result) recordBreach(step int, kind BreachType) {
	r.BreachOccurred = true
	r.BreachStep = &step
	r.BreachType = kind
}

// Len returns the number of recorded entries, StepsTaken+1.
func (r *Result) Len() int {
	return len(r.FXISeries)
}

// Kappa returns the contraction ratio at index i and whether it is defined.
func (r *Result) Kappa(i int) (float64, bool) {
	if i < 0 || i >= len(r.KappaSeries) || r.KappaSeries[i] == nil {
		return 0, false
	}
	return *r.KappaSeries[i], true
}

// Sample returns the entry at index i. Kappa is NaN at index 0.
func (r *Result) Sample(i int) Sample {
	k, ok := r.Kappa(i)
	if !ok {
		k = math.NaN()
	}
	return Sample{
		Step:  i,
		FXI:   r.FXISeries[i],
		Delta: r.DeltaSeries[i],
		Kappa: k,
		Zone:  r.Zones[i],
	}
}

// Final returns the last recorded entry.
func (r *Result) Final() Sample {
	return r.Sample(r.Len() - 1)
}

// Validate checks the structural invariants of a result.
func (r *Result) Validate() error {
	n := len(r.FXISeries)
	if n == 0 {
		return fmt.Errorf("empty result")
	}
	if len(r.DeltaSeries) != n || len(r.KappaSeries) != n || len(r.Zones) != n {
		return fmt.Errorf("series length mismatch: fxi=%d delta=%d kappa=%d zones=%d",
			n, len(r.DeltaSeries), len(r.KappaSeries), len(r.Zones))
	}
	if n != r.StepsTaken+1 {
		return fmt.Errorf("expected %d entries for %d steps, got %d", r.StepsTaken+1, r.StepsTaken, n)
	}
	if r.KappaSeries[0] != nil {
		return fmt.Errorf("kappa defined at index 0")
	}
	if r.BreachOccurred != (r.BreachStep != nil) {
		return fmt.Errorf("breach flag %v disagrees with breach step", r.BreachOccurred)
	}
	if r.BreachOccurred != (r.BreachType != BreachNone) {
		return fmt.Errorf("breach flag %v disagrees with breach type %q", r.BreachOccurred, r.BreachType)
	}
	if r.BreachStep != nil && (*r.BreachStep < 1 || *r.BreachStep >= n) {
		return fmt.Errorf("breach step %d out of range", *r.BreachStep)
	}
	return nil
}
