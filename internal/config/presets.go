package config

import (
	"sort"

	"github.com/san-kum/fresim/internal/scenarios"
	"github.com/san-kum/fresim/internal/sim"
)

var Presets = map[string]*Config{
	"converge": {
		Name: "converge", Operator: "linear", Alpha: 0.4, Horizon: 20,
		Initial: InitialConfig{Qp: 1.2, Qf: 1.0, FXI: 1.15},
	},
	"forced_breach": {
		Name: "forced_breach", Operator: "linear", Alpha: 0.4, Horizon: 20,
		Initial: InitialConfig{Qp: 1.2, Qf: 1.0, FXI: 1.15},
		Shocks: []scenarios.Shock{
			{Step: 5, Kind: scenarios.ShockDeltaSet, Value: 2.0},
		},
	},
	"breach_halt": {
		Name: "breach_halt", Operator: "linear", Alpha: 0.7, Horizon: 20,
		Policy:  sim.BreachHalt.String(),
		Initial: InitialConfig{Qp: 1.2, Qf: 1.0, FXI: 1.15},
		Shocks: []scenarios.Shock{
			{Step: 5, Kind: scenarios.ShockFXISet, Value: 1.9},
		},
	},
	"slow_recovery": {
		Name: "slow_recovery", Operator: "linear", Alpha: 0.9, Horizon: 40,
		Initial: InitialConfig{Qp: 1.45, Qf: 1.0, FXI: 1.45},
	},
	"undershoot": {
		Name: "undershoot", Operator: "linear", Alpha: 0.5, Horizon: 20,
		Initial: InitialConfig{Qp: 0.6, Qf: 1.0, FXI: 0.6},
	},
	"equilibrium": {
		Name: "equilibrium", Operator: "linear", Alpha: 0.5, Horizon: 10,
		Initial: InitialConfig{Qp: 1.0, Qf: 1.0, FXI: 1.0},
	},
}

// GetPreset returns a copy of the named preset with the operator clamp
// rail filled from the defaults, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := p.Clone()
	def := DefaultConfig()
	if cfg.ClampMin == 0 && cfg.ClampMax == 0 {
		cfg.ClampMin, cfg.ClampMax = def.ClampMin, def.ClampMax
	}
	if cfg.Policy == "" {
		cfg.Policy = def.Policy
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
