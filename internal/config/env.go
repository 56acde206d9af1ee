package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Env holds settings read from the environment.
type Env struct {
	DataDir   string `env:"FRESIM_DATA_DIR"`
	LogLevel  string `env:"FRESIM_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"FRESIM_LOG_FORMAT" envDefault:"text"`
}

// LoadEnv parses Env. An empty DataDir resolves to ~/.fresim.
func LoadEnv() (Env, error) {
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Env{}, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".fresim")
	}
	return cfg, nil
}

// Level maps LogLevel to a slog level; unknown values are info.
func (e Env) Level() slog.Level {
	switch strings.ToLower(e.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (e Env) JSON() bool {
	return strings.EqualFold(e.LogFormat, "json")
}
