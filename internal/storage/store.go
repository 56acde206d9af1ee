package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/san-kum/fresim/internal/config"
	"github.com/san-kum/fresim/internal/sim"
)

var (
	ErrNotFound  = errors.New("storage: run not found")
	ErrAmbiguous = errors.New("storage: ambiguous run id prefix")
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	operator        TEXT NOT NULL,
	alpha           REAL NOT NULL,
	horizon         INTEGER NOT NULL,
	steps_taken     INTEGER NOT NULL,
	breach_occurred INTEGER NOT NULL,
	breach_step     INTEGER,
	breach_type     TEXT NOT NULL,
	thresholds_json TEXT NOT NULL,
	metrics_json    TEXT,
	config_yaml     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS samples (
	run_id TEXT NOT NULL,
	step   INTEGER NOT NULL,
	fxi    REAL NOT NULL,
	delta  REAL NOT NULL,
	kappa  REAL,
	zone   TEXT NOT NULL,
	PRIMARY KEY (run_id, step),
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);
`

// Timestamps are fixed-width so that created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the run catalog, one SQLite file holding every saved run.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog at path and runs migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Timestamp      time.Time          `json:"timestamp"`
	Operator       string             `json:"operator"`
	Alpha          float64            `json:"alpha"`
	Horizon        int                `json:"horizon"`
	StepsTaken     int                `json:"steps_taken"`
	BreachOccurred bool               `json:"breach_occurred"`
	BreachStep     *int               `json:"breach_step"`
	BreachType     sim.BreachType     `json:"breach_type,omitempty"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
}

// Save stores the run file and its result and returns the new run ID.
func (s *Store) Save(ctx context.Context, cfg *config.Config, res *sim.Result) (string, error) {
	if err := res.Validate(); err != nil {
		return "", fmt.Errorf("refusing to save invalid result: %w", err)
	}

	cfgYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	thJSON, err := json.Marshal(res.Thresholds)
	if err != nil {
		return "", fmt.Errorf("marshal thresholds: %w", err)
	}
	metricsJSON, err := json.Marshal(res.Metrics)
	if err != nil {
		return "", fmt.Errorf("marshal metrics: %w", err)
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, name, created_at, operator, alpha, horizon, steps_taken,
			breach_occurred, breach_step, breach_type, thresholds_json, metrics_json, config_yaml)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, cfg.Name, now.Format(timeLayout), cfg.Operator, cfg.Alpha, cfg.Horizon, res.StepsTaken,
		res.BreachOccurred, res.BreachStep, string(res.BreachType), string(thJSON), string(metricsJSON), string(cfgYAML),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (run_id, step, fxi, delta, kappa, zone) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare samples: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < res.Len(); i++ {
		if _, err := stmt.ExecContext(ctx, id, i, res.FXISeries[i], res.DeltaSeries[i],
			res.KappaSeries[i], string(res.Zones[i])); err != nil {
			return "", fmt.Errorf("insert sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

const runColumns = `run_id, name, created_at, operator, alpha, horizon, steps_taken,
	breach_occurred, breach_step, breach_type, metrics_json`

// List returns every run, newest first.
func (s *Store) List(ctx context.Context) ([]RunMetadata, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *meta)
	}
	return runs, rows.Err()
}

// Resolve expands a unique run ID prefix to the full ID.
func (s *Store) Resolve(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", ErrNotFound
	}
	pattern := strings.NewReplacer("%", "", "_", "").Replace(prefix) + "%"
	rows, err := s.db.QueryContext(ctx, `SELECT run_id FROM runs WHERE run_id LIKE ? LIMIT 2`, pattern)
	if err != nil {
		return "", fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguous, prefix)
	}
}

func (s *Store) Load(ctx context.Context, runID string) (*RunMetadata, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	meta, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return meta, err
}

// LoadConfig returns the run file the run was started from.
func (s *Store) LoadConfig(ctx context.Context, runID string) (*config.Config, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT config_yaml FROM runs WHERE run_id = ?`, runID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query config: %w", err)
	}

	cfg := config.DefaultConfig()
	if err := yaml.Unmarshal([]byte(raw), cfg); err != nil {
		return nil, fmt.Errorf("parse stored config: %w", err)
	}
	return cfg, nil
}

// LoadResult rebuilds the full result of a stored run.
func (s *Store) LoadResult(ctx context.Context, runID string) (*sim.Result, error) {
	meta, err := s.Load(ctx, runID)
	if err != nil {
		return nil, err
	}

	var thJSON string
	if err := s.db.QueryRowContext(ctx, `SELECT thresholds_json FROM runs WHERE run_id = ?`, runID).Scan(&thJSON); err != nil {
		return nil, fmt.Errorf("query thresholds: %w", err)
	}

	res := &sim.Result{
		FXISeries:      make([]float64, 0, meta.StepsTaken+1),
		DeltaSeries:    make([]float64, 0, meta.StepsTaken+1),
		KappaSeries:    make([]*float64, 0, meta.StepsTaken+1),
		Zones:          make([]sim.Zone, 0, meta.StepsTaken+1),
		BreachOccurred: meta.BreachOccurred,
		BreachStep:     meta.BreachStep,
		BreachType:     meta.BreachType,
		StepsTaken:     meta.StepsTaken,
		Metrics:        meta.Metrics,
	}
	if err := json.Unmarshal([]byte(thJSON), &res.Thresholds); err != nil {
		return nil, fmt.Errorf("parse thresholds: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT fxi, delta, kappa, zone FROM samples WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			fxi, delta float64
			kappa      sql.NullFloat64
			zone       string
		)
		if err := rows.Scan(&fxi, &delta, &kappa, &zone); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		res.FXISeries = append(res.FXISeries, fxi)
		res.DeltaSeries = append(res.DeltaSeries, delta)
		if kappa.Valid {
			k := kappa.Float64
			res.KappaSeries = append(res.KappaSeries, &k)
		} else {
			res.KappaSeries = append(res.KappaSeries, nil)
		}
		res.Zones = append(res.Zones, sim.Zone(zone))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := res.Validate(); err != nil {
		return nil, fmt.Errorf("stored run %s is corrupt: %w", runID, err)
	}
	return res, nil
}

func (s *Store) Delete(ctx context.Context, runID string) error {
	r, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunMetadata, error) {
	var (
		meta        RunMetadata
		createdAt   string
		breachStep  sql.NullInt64
		breachType  string
		metricsJSON sql.NullString
	)
	err := row.Scan(&meta.ID, &meta.Name, &createdAt, &meta.Operator, &meta.Alpha, &meta.Horizon,
		&meta.StepsTaken, &meta.BreachOccurred, &breachStep, &breachType, &metricsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}

	meta.Timestamp, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if breachStep.Valid {
		step := int(breachStep.Int64)
		meta.BreachStep = &step
	}
	meta.BreachType = sim.BreachType(breachType)
	if metricsJSON.Valid && metricsJSON.String != "" && metricsJSON.String != "null" {
		if err := json.Unmarshal([]byte(metricsJSON.String), &meta.Metrics); err != nil {
			return nil, fmt.Errorf("parse metrics: %w", err)
		}
	}
	return &meta, nil
}
