package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/san-kum/fresim/internal/config"
	"github.com/san-kum/fresim/internal/experiment"
	"github.com/san-kum/fresim/internal/operators"
	"github.com/san-kum/fresim/internal/scenarios"
	"github.com/san-kum/fresim/internal/sim"
	"github.com/san-kum/fresim/internal/viz"
)

// runFlags collects the flags that override a run file. Only flags the
// user set are applied.
type runFlags struct {
	preset     string
	configFile string
	schedule   string
	operator   string
	policy     string
	alpha      float64
	horizon    int
	qp         float64
	qf         float64
	fxi        float64
	deltaMax   float64
	fxiMin     float64
	fxiMax     float64
	watchRatio float64
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	def := config.DefaultConfig()
	fs.StringVar(&f.preset, "preset", "", "start from a preset configuration")
	fs.StringVar(&f.configFile, "config", "", "config file path (yaml)")
	fs.StringVar(&f.schedule, "schedule", "", "shock schedule file (yaml), appended to the config's shocks")
	fs.StringVar(&f.operator, "operator", def.Operator, "operator ("+strings.Join(operators.Names(), "|")+")")
	fs.StringVar(&f.policy, "policy", def.Policy, "breach policy (continue|halt)")
	fs.Float64Var(&f.alpha, "alpha", def.Alpha, "contraction factor in (0, 1)")
	fs.IntVar(&f.horizon, "horizon", def.Horizon, "number of steps")
	fs.Float64Var(&f.qp, "qp", def.Initial.Qp, "initial actual magnitude")
	fs.Float64Var(&f.qf, "qf", def.Initial.Qf, "initial reference magnitude")
	fs.Float64Var(&f.fxi, "fxi", def.Initial.FXI, "initial indicator")
	fs.Float64Var(&f.deltaMax, "delta-max", sim.DefaultDeltaMax, "override delta_max")
	fs.Float64Var(&f.fxiMin, "fxi-min", sim.DefaultFXIMin, "override fxi_min")
	fs.Float64Var(&f.fxiMax, "fxi-max", sim.DefaultFXIMax, "override fxi_max")
	fs.Float64Var(&f.watchRatio, "watch-ratio", sim.DefaultWatchRatio, "override the watch zone ratio")
}

// build resolves preset, then file, then flags.
func (f *runFlags) build(fs *pflag.FlagSet) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.preset != "" {
		cfg = config.GetPreset(f.preset)
		if cfg == nil {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown preset: %s", f.preset))
		}
	}

	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		if f.preset != "" {
			slog.Debug("config file replaces preset", "preset", f.preset, "file", f.configFile)
		}
		cfg = loaded
	}

	if f.schedule != "" {
		sched, err := scenarios.LoadSchedule(f.schedule)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load schedule", err)
		}
		cfg.Shocks = append(cfg.Shocks, sched.Shocks...)
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("operator", func() { cfg.Operator = f.operator })
	set("policy", func() { cfg.Policy = f.policy })
	set("alpha", func() { cfg.Alpha = f.alpha })
	set("horizon", func() { cfg.Horizon = f.horizon })
	set("qp", func() { cfg.Initial.Qp = f.qp })
	set("qf", func() { cfg.Initial.Qf = f.qf })
	set("fxi", func() { cfg.Initial.FXI = f.fxi })
	set("delta-max", func() { cfg.Thresholds.DeltaMax = sim.Float(f.deltaMax) })
	set("fxi-min", func() { cfg.Thresholds.FXIMin = sim.Float(f.fxiMin) })
	set("fxi-max", func() { cfg.Thresholds.FXIMax = sim.Float(f.fxiMax) })
	set("watch-ratio", func() { cfg.Thresholds.WatchRatio = sim.Float(f.watchRatio) })

	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

func newRunCmd(opts *options) *cobra.Command {
	var (
		flags     runFlags
		name      string
		live      bool
		frameRate int
		noSave    bool
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			viz.SetTheme(opts.theme)

			cfg, err := flags.build(cmd.Flags())
			if err != nil {
				return err
			}
			if name != "" {
				cfg.Name = name
			}

			exp := experiment.New(cfg)
			if err := exp.Setup(experiment.NewRegistry().DefaultMetrics()); err != nil {
				return WrapExitError(ExitCommandError, "failed to set up run", err)
			}
			exp.SetLogger(slog.Default())
			if live {
				exp.Simulator().AddObserver(viz.NewLiveRenderer(cmd.OutOrStdout(), frameRate))
			}

			slog.Info("starting run", "name", cfg.Name, "operator", cfg.Operator,
				"alpha", cfg.Alpha, "horizon", cfg.Horizon, "policy", cfg.Policy)

			res, err := exp.Run(cmd.Context())
			if err != nil {
				var stepErr *sim.StepError
				if errors.As(err, &stepErr) {
					return WrapExitError(ExitFailure, fmt.Sprintf("run aborted at step %d", stepErr.Step), err)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, viz.Summary(res))
			if limit != 0 {
				fmt.Fprintln(out, viz.StepTable(res, limit))
			}

			if noSave {
				return nil
			}
			fmt.Fprintln(out)
			return saveRun(cmd.Context(), opts, cfg, res, out)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&name, "name", "", "run name stored in the catalog")
	cmd.Flags().BoolVar(&live, "live", false, "print each step as it completes")
	cmd.Flags().IntVar(&frameRate, "fps", 0, "limit live output to this many lines per second (0 = every step)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	cmd.Flags().IntVar(&limit, "table", 0, "print the step table (-1 = all rows, n = first n rows)")

	return cmd
}

func saveRun(ctx context.Context, opts *options, cfg *config.Config, res *sim.Result, out io.Writer) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.Save(ctx, cfg, res)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to save run", err)
	}
	slog.Debug("run saved", "id", id, "data", opts.dataDir)
	fmt.Fprintf(out, "run saved: %s\n", id)
	return nil
}
