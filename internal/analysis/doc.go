// Package analysis characterizes finished runs.
//
// The package works on a [sim.Result] after the fact:
//
//   - [ContractionRate]: effective per-step contraction, exp(mean ln kappa)
//   - [LogRate]: mean ln kappa; negative for a converging run
//   - [StepsToTolerance]: first step within a distance of equilibrium
//   - [HalfLife]: steps needed to halve the distance at a given rate
//   - [Occupancy]: how many entries fall in each stability zone
//   - [GeneratePhasePortrait]: (fxi, delta) trajectory for plotting
//
// # Divergence Detection
//
// A positive log rate means the operator widened the gap on average:
//
//	if analysis.LogRate(res) > 0 {
//	    // correction is not contracting
//	}
package analysis
