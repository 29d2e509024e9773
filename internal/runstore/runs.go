package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a run ID is unknown.
var ErrNotFound = errors.New("run not found")

// Split names used in score rows.
const (
	SplitTrain = "train"
	SplitTest  = "test"
)

// Params captures the pipeline settings a run was produced with.
type Params struct {
	SampleRate   int     `json:"sample_rate"`
	Subsample    int     `json:"subsample"`
	BlockSize    int     `json:"block_size"`
	Downsample   int     `json:"downsample"`
	LeftEpsilon  float64 `json:"left_epsilon"`
	RightEpsilon float64 `json:"right_epsilon"`
	OnlyPositive bool    `json:"only_positive"`
	Predictor    string  `json:"predictor"`
}

// Score is one metric summary for one split.
type Score struct {
	Split  string  `json:"split"`
	Metric string  `json:"metric"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Count  int     `json:"count"`
}

// Run is one recorded evaluation.
type Run struct {
	ID         string    `json:"id"`
	Folder     string    `json:"folder"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Train      int       `json:"train"`
	Test       int       `json:"test"`
	Seed       int64     `json:"seed"`
	TestRatio  float64   `json:"test_ratio"`
	CacheHit   bool      `json:"cache_hit"`
	Params     Params    `json:"params"`
	Scores     []Score   `json:"scores"`
}

// Duration returns the wall time of the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Score returns the score for split and metric.
func (r Run) Score(split, metric string) (Score, bool) {
	for _, sc := range r.Scores {
		if sc.Split == split && sc.Metric == metric {
			return sc, true
		}
	}
	return Score{}, false
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Record inserts run and its scores in one transaction. An empty ID is
// replaced with a new one; the stored ID is returned.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	} else if _, err := uuid.Parse(run.ID); err != nil {
		return "", fmt.Errorf("invalid run id %q: %w", run.ID, err)
	}
	params, err := json.Marshal(run.Params)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}

	err = retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (
                id, folder, started_at, finished_at, train_count, test_count,
                seed, test_ratio, cache_hit, params_json
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.Folder,
			run.StartedAt.UTC().Format(timeLayout),
			run.FinishedAt.UTC().Format(timeLayout),
			run.Train,
			run.Test,
			run.Seed,
			run.TestRatio,
			boolToInt(run.CacheHit),
			string(params),
		); err != nil {
			return err
		}
		for _, sc := range run.Scores {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO scores (run_id, split, metric, mean, stddev, count) VALUES (?, ?, ?, ?, ?, ?)`,
				run.ID, sc.Split, sc.Metric, sc.Mean, sc.StdDev, sc.Count,
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return run.ID, nil
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, folder, started_at, finished_at, train_count, test_count, seed, test_ratio, cache_hit, params_json"

// Get loads a run with its scores.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadScores(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// List returns up to limit runs, newest first. A non-positive limit returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	for i := range runs {
		if err := s.loadScores(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Delete removes a run and its scores.
func (s *Store) Delete(ctx context.Context, id string) error {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *Store) loadScores(ctx context.Context, run *Run) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT split, metric, mean, stddev, count FROM scores WHERE run_id = ? ORDER BY split DESC, rowid",
		run.ID)
	if err != nil {
		return fmt.Errorf("load scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc Score
		if err := rows.Scan(&sc.Split, &sc.Metric, &sc.Mean, &sc.StdDev, &sc.Count); err != nil {
			return fmt.Errorf("scan score: %w", err)
		}
		run.Scores = append(run.Scores, sc)
	}
	return rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw string
		cacheHit    int
		params      sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Folder,
		&startedRaw,
		&finishedRaw,
		&run.Train,
		&run.Test,
		&run.Seed,
		&run.TestRatio,
		&cacheHit,
		&params,
	); err != nil {
		return nil, err
	}
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finishedRaw)
	run.CacheHit = cacheHit != 0
	if params.Valid && params.String != "" {
		if err := json.Unmarshal([]byte(params.String), &run.Params); err != nil {
			return nil, fmt.Errorf("decode params for run %s: %w", run.ID, err)
		}
	}
	return &run, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
