package sim

import (
	"fmt"
	"math"
)

// Default threshold table. States that do not implement Bounded, and
// Configs that leave a field unset, fall back to these values.
const (
	DefaultDeltaMax   = 1.0
	DefaultFXIMin     = 0.5
	DefaultFXIMax     = 1.5
	DefaultWatchRatio = 0.8
)

// ZoneBoundaries splits the nominal region into STABLE and WATCH. A value
// whose distance from its reference exceeds WatchRatio times the distance
// to its threshold is in WATCH.
type ZoneBoundaries struct {
	WatchRatio float64 `json:"watch_ratio" yaml:"watch_ratio"`
}

// Thresholds are the soft limits used for zone classification and breach
// detection.
type Thresholds struct {
	DeltaMax float64        `json:"delta_max" yaml:"delta_max"`
	FXIMin   float64        `json:"fxi_min" yaml:"fxi_min"`
	FXIMax   float64        `json:"fxi_max" yaml:"fxi_max"`
	Zones    ZoneBoundaries `json:"zones" yaml:"zones"`
}

// DefaultThresholds returns the default threshold table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DeltaMax: DefaultDeltaMax,
		FXIMin:   DefaultFXIMin,
		FXIMax:   DefaultFXIMax,
		Zones:    ZoneBoundaries{WatchRatio: DefaultWatchRatio},
	}
}

func (th Thresholds) Validate() error {
	for name, v := range map[string]float64{
		"delta_max":   th.DeltaMax,
		"fxi_min":     th.FXIMin,
		"fxi_max":     th.FXIMax,
		"watch_ratio": th.Zones.WatchRatio,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParameter, name, v)
		}
	}
	if th.DeltaMax <= 0 {
		return fmt.Errorf("%w: delta_max must be positive, got %f", ErrInvalidParameter, th.DeltaMax)
	}
	if th.FXIMin > Equilibrium || th.FXIMax < Equilibrium || th.FXIMin >= th.FXIMax {
		return fmt.Errorf("%w: fxi range [%f, %f] must contain equilibrium %.1f",
			ErrInvalidParameter, th.FXIMin, th.FXIMax, Equilibrium)
	}
	if th.Zones.WatchRatio <= 0 || th.Zones.WatchRatio > 1 {
		return fmt.Errorf("%w: watch_ratio must be in (0, 1], got %f", ErrInvalidParameter, th.Zones.WatchRatio)
	}
	return nil
}

// BreachPolicy decides what the engine does after the first breach.
type BreachPolicy int

const (
	// BreachContinue records the first breach and runs the full horizon.
	BreachContinue BreachPolicy = iota
	// BreachHalt stops right after the step that recorded the first breach.
	BreachHalt
)

func (p BreachPolicy) String() string {
	switch p {
	case BreachContinue:
		return "continue"
	case BreachHalt:
		return "halt"
	default:
		return fmt.Sprintf("BreachPolicy(%d)", int(p))
	}
}

// ParseBreachPolicy maps "continue" or "halt" to a policy. The empty
// string is BreachContinue.
func ParseBreachPolicy(s string) (BreachPolicy, error) {
	switch s {
	case "", "continue":
		return BreachContinue, nil
	case "halt":
		return BreachHalt, nil
	default:
		return BreachContinue, fmt.Errorf("%w: unknown breach policy %q", ErrInvalidParameter, s)
	}
}

// Config overrides thresholds for a single run. Nil fields fall back to the
// state's own thresholds when it implements Bounded, else to
// DefaultThresholds. A nil *Config is valid.
type Config struct {
	DeltaMax *float64
	FXIMin   *float64
	FXIMax   *float64
	Zones    *ZoneBoundaries
	Policy   BreachPolicy
}

// Resolve merges the overrides over the defaults for s and validates the
// outcome.
func (c *Config) Resolve(s State) (Thresholds, error) {
	th := DefaultThresholds()
	if b, ok := s.(Bounded); ok {
		th = b.Thresholds()
		if th.Zones.WatchRatio == 0 {
			th.Zones.WatchRatio = DefaultWatchRatio
		}
	}
	if c != nil {
		if c.DeltaMax != nil {
			th.DeltaMax = *c.DeltaMax
		}
		if c.FXIMin != nil {
			th.FXIMin = *c.FXIMin
		}
		if c.FXIMax != nil {
			th.FXIMax = *c.FXIMax
		}
		if c.Zones != nil {
			th.Zones = *c.Zones
		}
	}
	if err := th.Validate(); err != nil {
		return Thresholds{}, err
	}
	return th, nil
}

func (c *Config) policy() BreachPolicy {
	if c == nil {
		return BreachContinue
	}
	return c.Policy
}

// Float returns a pointer to v, for filling Config overrides.
func Float(v float64) *float64 {
	return &v
}
