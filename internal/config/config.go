package config

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fresim/internal/operators"
	"github.com/san-kum/fresim/internal/scenarios"
	"github.com/san-kum/fresim/internal/sim"
	"github.com/san-kum/fresim/internal/states"
)

const (
	DefaultHorizon = 20
	DefaultQp      = 1.2
	DefaultQf      = 1.0
	DefaultFXI     = 1.15
)

// Config is a complete run description as stored in a run file.
type Config struct {
	Name       string            `yaml:"name,omitempty"`
	Operator   string            `yaml:"operator"`
	Alpha      float64           `yaml:"alpha"`
	ClampMin   float64           `yaml:"clamp_min"`
	ClampMax   float64           `yaml:"clamp_max"`
	Horizon    int               `yaml:"horizon"`
	Policy     string            `yaml:"policy,omitempty"`
	Initial    InitialConfig     `yaml:"initial"`
	Thresholds ThresholdOverride `yaml:"thresholds,omitempty"`
	Shocks     []scenarios.Shock `yaml:"shocks,omitempty"`
}

type InitialConfig struct {
	Qp  float64 `yaml:"qp"`
	Qf  float64 `yaml:"qf"`
	FXI float64 `yaml:"fxi"`
}

// ThresholdOverride holds optional threshold overrides. Omitted keys fall
// back to the state's own thresholds.
type ThresholdOverride struct {
	DeltaMax   *float64 `yaml:"delta_max,omitempty"`
	FXIMin     *float64 `yaml:"fxi_min,omitempty"`
	FXIMax     *float64 `yaml:"fxi_max,omitempty"`
	WatchRatio *float64 `yaml:"watch_ratio,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Operator: "linear",
		Alpha:    operators.DefaultAlpha,
		ClampMin: operators.DefaultClampMin,
		ClampMax: operators.DefaultClampMax,
		Horizon:  DefaultHorizon,
		Policy:   sim.BreachContinue.String(),
		Initial: InitialConfig{
			Qp:  DefaultQp,
			Qf:  DefaultQf,
			FXI: DefaultFXI,
		},
	}
}

// Load reads a run file over DefaultConfig and validates it. Unknown keys
// are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Encode writes cfg as YAML, in the same form Save uses.
func Encode(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Shocks = slices.Clone(c.Shocks)
	out.Thresholds = ThresholdOverride{
		DeltaMax:   clonePtr(c.Thresholds.DeltaMax),
		FXIMin:     clonePtr(c.Thresholds.FXIMin),
		FXIMax:     clonePtr(c.Thresholds.FXIMax),
		WatchRatio: clonePtr(c.Thresholds.WatchRatio),
	}
	return &out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Validate builds every collaborator once and reports the first problem.
func (c *Config) Validate() error {
	_, err := c.RunSpec()
	return err
}

// RunSpec builds a fresh state, operator and scenario for one run. Each
// call returns new instances, so the result may be handed to sim.Ensemble
// builders directly.
func (c *Config) RunSpec() (sim.RunSpec, error) {
	if c.Horizon <= 0 {
		return sim.RunSpec{}, fmt.Errorf("%w: horizon must be positive, got %d", sim.ErrInvalidParameter, c.Horizon)
	}
	for name, v := range map[string]float64{"qp": c.Initial.Qp, "qf": c.Initial.Qf, "fxi": c.Initial.FXI} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return sim.RunSpec{}, fmt.Errorf("%w: initial %s must be finite", sim.ErrInvalidParameter, name)
		}
	}

	op, err := c.buildOperator()
	if err != nil {
		return sim.RunSpec{}, err
	}

	simCfg, err := c.SimConfig()
	if err != nil {
		return sim.RunSpec{}, err
	}

	var sc sim.Scenario = scenarios.NoShock{}
	if len(c.Shocks) > 0 {
		sched := scenarios.NewSchedule(c.Name, slices.Clone(c.Shocks)...)
		if err := sched.Validate(); err != nil {
			return sim.RunSpec{}, fmt.Errorf("%w: %v", sim.ErrInvalidParameter, err)
		}
		sc = sched
	}

	state := states.NewMass(c.Initial.Qp, c.Initial.Qf, c.Initial.FXI)
	if _, err := simCfg.Resolve(state); err != nil {
		return sim.RunSpec{}, err
	}

	return sim.RunSpec{
		Initial:  state,
		Operator: op,
		Scenario: sc,
		Horizon:  c.Horizon,
		Config:   simCfg,
	}, nil
}

// SimConfig converts the threshold overrides and policy.
func (c *Config) SimConfig() (*sim.Config, error) {
	policy, err := sim.ParseBreachPolicy(c.Policy)
	if err != nil {
		return nil, err
	}
	cfg := &sim.Config{
		DeltaMax: clonePtr(c.Thresholds.DeltaMax),
		FXIMin:   clonePtr(c.Thresholds.FXIMin),
		FXIMax:   clonePtr(c.Thresholds.FXIMax),
		Policy:   policy,
	}
	if c.Thresholds.WatchRatio != nil {
		cfg.Zones = &sim.ZoneBoundaries{WatchRatio: *c.Thresholds.WatchRatio}
	}
	return cfg, nil
}

func (c *Config) buildOperator() (sim.Operator, error) {
	if c.Operator == "linear" {
		return operators.NewLinearWithBounds(c.Alpha, c.ClampMin, c.ClampMax)
	}
	op, err := operators.Get(c.Operator, c.Alpha)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sim.ErrInvalidParameter, err)
	}
	return op, nil
}
