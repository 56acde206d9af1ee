// Package sim provides the stepping engine for corrective dynamical runs.
//
// A run drives a scalar deviation indicator (FXI) toward its equilibrium
// value of 1.0 by repeatedly applying a corrective operator, while a
// structural deviation (delta) is tracked alongside it:
//
//   - [State]: the evolving quantities, able to validate and update itself
//   - [Operator]: maps the current indicator to the next one and reports
//     its contraction ratio
//   - [Scenario]: an external perturbation applied once per timestep
//   - [Simulator]: orchestrates the three over a fixed horizon
//
// Every step is classified into a stability [Zone] and checked for a soft
// breach of the configured [Thresholds]. Breaches are recorded in the
// [Result] and never stop the run under the default policy; a state that
// fails its own validation aborts the run with [ErrInvariantViolation].
//
// # Example
//
//	op, _ := operators.NewLinear(0.4)
//	st := states.NewMass(1.2, 1.0, 1.15)
//	res, err := sim.Run(st, op, scenarios.NoShock{}, 20, nil)
//
// # Thread Safety
//
// A Simulator holds no state between runs apart from its attached metrics,
// so independent runs may execute concurrently as long as each owns its
// State, Operator and Scenario. [Ensemble] manages that fan-out.
package sim
