package scenarios

import "github.com/san-kum/fresim/internal/sim"

// NoShock leaves the state untouched at every step.
type NoShock struct{}

func (NoShock) Apply(s sim.State, _ int) sim.State { return s }

// Func adapts a plain function to sim.Scenario.
type Func func(s sim.State, t int) sim.State

func (f Func) Apply(s sim.State, t int) sim.State { return f(s, t) }
