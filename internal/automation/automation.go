package automation

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fresim/internal/config"
	"github.com/san-kum/fresim/internal/experiment"
	"github.com/san-kum/fresim/internal/sim"
)

// Batch is a scripted sequence of runs.
type Batch struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Runs        []BatchRun `yaml:"runs"`
}

// BatchRun starts from a preset (or the defaults) and applies registry
// parameters on top. Name, when set, replaces the preset's run name.
type BatchRun struct {
	Name   string             `yaml:"name,omitempty"`
	Preset string             `yaml:"preset,omitempty"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// Outcome is one completed batch run.
type Outcome struct {
	Config *config.Config
	Result *sim.Result
}

func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var batch Batch
	if err := dec.Decode(&batch); err != nil {
		return nil, fmt.Errorf("parse batch %s: %w", path, err)
	}
	if len(batch.Runs) == 0 {
		return nil, fmt.Errorf("%w: batch %s has no runs", sim.ErrInvalidParameter, path)
	}
	return &batch, nil
}

// Configs resolves every run to a validated config without running it.
func (b *Batch) Configs(registry *experiment.Registry) ([]*config.Config, error) {
	cfgs := make([]*config.Config, 0, len(b.Runs))
	for i, run := range b.Runs {
		base := config.DefaultConfig()
		if run.Preset != "" {
			base = config.GetPreset(run.Preset)
			if base == nil {
				return nil, fmt.Errorf("%w: run %d: unknown preset %q", sim.ErrInvalidParameter, i+1, run.Preset)
			}
		}

		cfg, err := registry.Apply(base, run.Params)
		if err != nil {
			return nil, fmt.Errorf("%w: run %d: %v", sim.ErrInvalidParameter, i+1, err)
		}
		if run.Name != "" {
			cfg.Name = run.Name
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

// RunBatch executes the runs in order. It stops at the first run that
// fails and returns the outcomes completed so far.
func RunBatch(ctx context.Context, batch *Batch, registry *experiment.Registry, logger *slog.Logger) ([]Outcome, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cfgs, err := batch.Configs(registry)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(cfgs))
	for i, cfg := range cfgs {
		logger.Info("batch run", "index", i+1, "of", len(cfgs), "name", cfg.Name, "alpha", cfg.Alpha)

		exp := experiment.New(cfg)
		if err := exp.Setup(registry.DefaultMetrics()); err != nil {
			return outcomes, fmt.Errorf("run %d setup: %w", i+1, err)
		}
		exp.SetLogger(logger)

		res, err := exp.Run(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}
		outcomes = append(outcomes, Outcome{Config: cfg, Result: res})
	}
	return outcomes, nil
}
