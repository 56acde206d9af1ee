package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/fresim/internal/config"
	"github.com/san-kum/fresim/internal/experiment"
	"github.com/san-kum/fresim/internal/optim"
	"github.com/san-kum/fresim/internal/sim"
)

func newSweepCmd(opts *options) *cobra.Command {
	var (
		flags    runFlags
		params   []string
		metric   string
		maximize bool
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid-search run parameters against a metric",
		Long: "Run every combination of the --param ranges and report the best value of --metric.\n" +
			"A range is name=start:stop:step or name=v1,v2,...",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(params) == 0 {
				return NewExitError(ExitCommandError, "at least one --param is required")
			}

			base, err := flags.build(cmd.Flags())
			if err != nil {
				return err
			}

			registry := experiment.NewRegistry()
			names := make([]string, 0, len(params))
			ranges := make([][]float64, 0, len(params))
			for _, p := range params {
				name, values, err := optim.ParseRange(p)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --param", err)
				}
				if !registry.Has(name) {
					return NewExitError(ExitCommandError, fmt.Sprintf("unknown parameter %q (known: %s)",
						name, strings.Join(registry.ListParams(), ", ")))
				}
				names = append(names, name)
				ranges = append(ranges, values)
			}

			gs := optim.NewGridSearch(names, ranges).WithWorkers(workers).WithMetrics(registry.DefaultMetrics)
			if maximize {
				gs = gs.Maximize()
			}

			build := func(p map[string]float64) (sim.RunSpec, error) {
				cfg, err := registry.Apply(base, p)
				if err != nil {
					return sim.RunSpec{}, err
				}
				return cfg.RunSpec()
			}

			report, err := gs.Search(cmd.Context(), build, metric)
			if report != nil {
				writeReport(cmd, names, metric, report)
			}
			if errors.Is(err, optim.ErrNoCandidates) {
				return WrapExitError(ExitFailure, "sweep failed", err)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "sweep failed", err)
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringArrayVar(&params, "param", nil, "parameter range, repeatable (name=start:stop:step or name=v1,v2)")
	cmd.Flags().StringVar(&metric, "metric", "final_gap", "metric to optimize")
	cmd.Flags().BoolVar(&maximize, "maximize", false, "maximize the metric instead of minimizing it")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = one per CPU)")

	return cmd
}

func writeReport(cmd *cobra.Command, names []string, metric string, report *optim.Report) {
	out := cmd.OutOrStdout()

	for _, trial := range report.Trials {
		fmt.Fprintf(out, "%s  ", formatParams(names, trial.Params))
		if trial.Err != nil {
			fmt.Fprintf(out, "error: %v\n", trial.Err)
			continue
		}
		fmt.Fprintf(out, "%s=%.6g\n", metric, trial.Value)
	}

	if report.Best == nil {
		return
	}
	fmt.Fprintf(out, "\nbest: %s  %s=%.6g\n", formatParams(names, report.Best), metric, report.BestValue)
}

func formatParams(names []string, params map[string]float64) string {
	parts := make([]string, 0, len(params))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%g", name, params[name]))
	}
	return strings.Join(parts, " ")
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as a run file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range config.ListPresets() {
					p := config.GetPreset(name)
					fmt.Fprintf(out, "%-14s alpha=%.2f horizon=%d fxi=%.2f shocks=%d\n",
						name, p.Alpha, p.Horizon, p.Initial.FXI, len(p.Shocks))
				}
				return nil
			}

			cfg := config.GetPreset(args[0])
			if cfg == nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown preset: %s", args[0]))
			}
			return config.Encode(out, cfg)
		},
	}
}
