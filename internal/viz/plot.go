package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/fresim/internal/sim"
)

// SeriesNames lists what PlotSeries can draw.
func SeriesNames() []string {
	return []string{"fxi", "delta", "kappa"}
}

// SeriesValues extracts a named series. Kappa is NaN where undefined.
func SeriesValues(res *sim.Result, name string) ([]float64, error) {
	switch name {
	case "fxi":
		return res.FXISeries, nil
	case "delta":
		return res.DeltaSeries, nil
	case "kappa":
		out := make([]float64, res.Len())
		for i := range out {
			out[i] = res.Sample(i).Kappa
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown series: %s", name)
	}
}

// PlotSeries draws one series with its reference lines: the fxi range and
// equilibrium, ±delta_max, or kappa = 1.
func PlotSeries(res *sim.Result, name string, width, height int) (string, error) {
	values, err := SeriesValues(res, name)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", fmt.Errorf("empty result")
	}

	th := res.Thresholds
	var (
		refs    []float64
		legends []string
	)
	switch name {
	case "fxi":
		refs = []float64{th.FXIMin, sim.Equilibrium, th.FXIMax}
		legends = []string{"fxi", "fxi_min", "equilibrium", "fxi_max"}
	case "delta":
		refs = []float64{-th.DeltaMax, 0, th.DeltaMax}
		legends = []string{"delta", "-delta_max", "zero", "delta_max"}
	case "kappa":
		refs = []float64{1}
		legends = []string{"kappa", "kappa=1"}
	}

	data := [][]float64{values}
	for _, r := range refs {
		data = append(data, constant(r, len(values)))
	}

	colors := []asciigraph.AnsiColor{asciigraph.Cyan}
	for range refs {
		colors = append(colors, asciigraph.DarkGray)
	}
	if len(refs) == 3 {
		colors[1], colors[3] = asciigraph.Red, asciigraph.Red
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.Caption(fmt.Sprintf("%s over %d steps", name, res.StepsTaken)),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
	), nil
}

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
