package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/san-kum/fresim/internal/config"
	"github.com/san-kum/fresim/internal/storage"
)

type options struct {
	env     config.Env
	dataDir string
	theme   string
}

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(ExitCommandError)
	}
	setupLogging(env)

	if err := newRootCmd(env).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(GetExitCode(err))
	}
}

func setupLogging(env config.Env) {
	var handler slog.Handler
	if env.JSON() {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: env.Level()})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      env.Level(),
			TimeFormat: "15:04:05",
		})
	}
	slog.SetDefault(slog.New(handler))
}

func newRootCmd(env config.Env) *cobra.Command {
	opts := &options{env: env}

	rootCmd := &cobra.Command{
		Use:           "fresim",
		Short:         "fxi/delta stability simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data", env.DataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&opts.theme, "theme", "cyberpunk", "color theme")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newPlotCmd(opts),
		newExportJSONCmd(opts),
		newExportCSVCmd(opts),
		newExportSVGCmd(opts),
		newDeleteCmd(opts),
		newPresetsCmd(),
		newSweepCmd(opts),
		newReplayCmd(opts),
		newBatchCmd(opts),
	)

	return rootCmd
}

func (o *options) openStore() (*storage.Store, error) {
	st, err := storage.Open(filepath.Join(o.dataDir, "runs.db"))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open run catalog", err)
	}
	return st, nil
}
