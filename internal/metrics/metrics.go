package metrics

import "github.com/san-kum/fresim/internal/sim"

// Default returns a fresh instance of every metric.
func Default() []sim.Metric {
	return []sim.Metric{
		NewStability(),
		NewMeanKappa(),
		NewMaxDelta(),
		NewFinalGap(),
	}
}
