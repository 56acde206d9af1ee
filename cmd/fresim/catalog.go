package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/fresim/internal/analysis"
	"github.com/san-kum/fresim/internal/export"
	"github.com/san-kum/fresim/internal/sim"
	"github.com/san-kum/fresim/internal/storage"
	"github.com/san-kum/fresim/internal/viz"
)

// loadRun resolves a (possibly abbreviated) run id and loads its result.
func (o *options) loadRun(ctx context.Context, prefix string) (*storage.RunMetadata, *sim.Result, error) {
	st, err := o.openStore()
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	id, err := st.Resolve(ctx, prefix)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "unknown run", err)
	}
	meta, err := st.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	res, err := st.LoadResult(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return meta, res, nil
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs found")
				return nil
			}

			fmt.Fprintf(out, "%-36s  %-16s  %-6s  %5s  %s\n", "ID", "NAME", "ALPHA", "STEPS", "BREACH")
			for _, r := range runs {
				breach := "-"
				if r.BreachOccurred && r.BreachStep != nil {
					breach = fmt.Sprintf("%s@%d", r.BreachType, *r.BreachStep)
				}
				name := r.Name
				if name == "" {
					name = "-"
				}
				fmt.Fprintf(out, "%-36s  %-16s  %-6.3f  %5d  %s\n", r.ID, name, r.Alpha, r.StepsTaken, breach)
			}
			return nil
		},
	}
}

func newShowCmd(opts *options) *cobra.Command {
	var (
		limit int
		tol   float64
	)

	cmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run with its analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viz.SetTheme(opts.theme)

			meta, res, err := opts.loadRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s (%s)  %s\n\n", meta.ID, meta.Name, meta.Timestamp.Format("2006-01-02 15:04:05"))
			fmt.Fprint(out, viz.Summary(res))
			fmt.Fprintln(out)
			writeAnalysis(out, meta, res, tol)
			fmt.Fprintln(out)
			fmt.Fprintln(out, viz.StepTable(res, limit))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 25, "maximum table rows (0 = all)")
	cmd.Flags().Float64Var(&tol, "tol", 1e-3, "tolerance for steps-to-equilibrium")
	return cmd
}

func writeAnalysis(out io.Writer, meta *storage.RunMetadata, res *sim.Result, tol float64) {
	row := func(label, format string, args ...any) {
		fmt.Fprintf(out, "%-19s"+format+"\n", append([]any{label}, args...)...)
	}

	rate := analysis.ContractionRate(res)
	row("contraction rate", "%.6f", rate)
	row("log rate", "%.6f", analysis.LogRate(res))
	row("half-life", "%.3f steps", analysis.HalfLife(rate))

	final := res.Final()
	gap := math.Abs(final.FXI - sim.Equilibrium)
	if meta.Operator == "linear" {
		row("final gap", "%.6g (linear prediction %.6g)", gap,
			analysis.PredictedGap(res.FXISeries[0], meta.Alpha, res.StepsTaken))
	} else {
		row("final gap", "%.6g", gap)
	}

	label := fmt.Sprintf("within %g", tol)
	if n := analysis.StepsToTolerance(res, tol); n >= 0 {
		row(label, "step %d", n)
	} else {
		row(label, "never")
	}
	row("monotonic", "%v", analysis.IsMonotonic(res))

	occ := analysis.Occupancy(res)
	row("zones", "STABLE=%d WATCH=%d BREACH=%d (worst %s, longest watch run %d)",
		occ[sim.ZoneStable], occ[sim.ZoneWatch], occ[sim.ZoneBreach],
		analysis.WorstZone(res), analysis.LongestRun(res, sim.ZoneWatch))
}

func newPlotCmd(opts *options) *cobra.Command {
	var (
		series string
		width  int
		height int
		phase  bool
	)

	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, res, err := opts.loadRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if phase {
				fmt.Fprintln(out, "phase portrait (x: fxi, y: delta)")
				fmt.Fprint(out, analysis.PhasePortraitToASCII(analysis.GeneratePhasePortrait(res), width, height))
				return nil
			}

			names := []string{series}
			if series == "all" {
				names = viz.SeriesNames()
			}
			for _, name := range names {
				graph, err := viz.PlotSeries(res, name, width, height)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to plot", err)
				}
				fmt.Fprintln(out, graph)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&series, "series", "all", "series to plot ("+strings.Join(viz.SeriesNames(), "|")+"|all)")
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 12, "plot height")
	cmd.Flags().BoolVar(&phase, "phase", false, "draw the (fxi, delta) phase portrait instead")
	return cmd
}

// withOutput runs write against the -o file, or stdout when it is empty.
func withOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output file", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", path)
	return nil
}

func newExportJSONCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, res, err := opts.loadRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return withOutput(cmd, output, func(w io.Writer) error {
				return export.WriteJSON(w, export.Header{RunID: meta.ID, Name: meta.Name}, res)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newExportCSVCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, res, err := opts.loadRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return withOutput(cmd, output, func(w io.Writer) error {
				return export.WriteCSV(w, res)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newExportSVGCmd(opts *options) *cobra.Command {
	var (
		output        string
		width, height float64
	)
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the fxi series as an SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, res, err := opts.loadRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return withOutput(cmd, output, func(w io.Writer) error {
				return export.WriteSVG(w, res, width, height)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().Float64Var(&width, "width", 640, "chart width")
	cmd.Flags().Float64Var(&height, "height", 320, "chart height")
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			id, err := st.Resolve(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "unknown run", err)
			}
			if err := st.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}
}

func newReplayCmd(opts *options) *cobra.Command {
	var rate int
	cmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "step through a stored run interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viz.SetTheme(opts.theme)

			meta, res, err := opts.loadRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			title := meta.ID[:8]
			if meta.Name != "" {
				title = meta.Name + " " + title
			}

			p := tea.NewProgram(viz.NewReplayModel(title, res).WithRate(rate), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().IntVar(&rate, "rate", 8, "playback speed in steps per second")
	return cmd
}
