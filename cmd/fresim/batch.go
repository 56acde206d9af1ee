package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/san-kum/fresim/internal/automation"
	"github.com/san-kum/fresim/internal/experiment"
)

func newBatchCmd(opts *options) *cobra.Command {
	var noSave bool

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "run every entry of a batch file in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := automation.LoadBatch(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load batch", err)
			}

			registry := experiment.NewRegistry()
			if _, err := batch.Configs(registry); err != nil {
				return WrapExitError(ExitCommandError, "invalid batch", err)
			}

			outcomes, runErr := automation.RunBatch(cmd.Context(), batch, registry, slog.Default())

			out := cmd.OutOrStdout()
			for i, o := range outcomes {
				status := "ok"
				if o.Result.BreachOccurred {
					status = fmt.Sprintf("%s@%d", o.Result.BreachType, *o.Result.BreachStep)
				}
				fmt.Fprintf(out, "%2d  %-16s  steps=%-4d final_gap=%.6g  %s\n",
					i+1, o.Config.Name, o.Result.StepsTaken, o.Result.Metrics["final_gap"], status)

				if noSave {
					continue
				}
				if err := saveRun(cmd.Context(), opts, o.Config, o.Result, out); err != nil {
					return err
				}
			}

			if runErr != nil {
				return WrapExitError(ExitFailure, "batch aborted", runErr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")
	return cmd
}
