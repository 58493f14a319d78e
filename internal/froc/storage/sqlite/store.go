package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fcalvet/froc/internal/froc"
)

// ErrNotFound is returned when a run ID has no stored run.
var ErrNotFound = errors.New("run not found")

// Run is a persisted FROC evaluation. Points holds the summary curve in
// key order and is only populated by GetRun.
type Run struct {
	RunID           string            `json:"run_id"`
	Name            string            `json:"name"`
	Mode            string            `json:"mode"`
	SampleCount     int               `json:"sample_count"`
	AllowedDistance float64           `json:"allowed_distance"`
	ParamsJSON      json.RawMessage   `json:"params_json,omitempty"`
	CreatedAt       int64             `json:"created_at"`
	Points          []froc.SummaryRow `json:"points,omitempty"`
}

// Store provides persistence for FROC runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// PRAGMAs such as foreign_keys are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SchemaVersion reports the applied migration version.
func (s *Store) SchemaVersion() (uint, bool, error) {
	return schemaVersion(s.db)
}

// InsertRun persists run and its curve points in one transaction. A UUID
// is generated when RunID is empty and CreatedAt defaults to now.
func (s *Store) InsertRun(ctx context.Context, run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}
	var params interface{}
	if len(run.ParamsJSON) > 0 {
		params = string(run.ParamsJSON)
	}

	return retryOnBusy(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO froc_runs (
				run_id, name, mode, sample_count, allowed_distance, params_json, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Name, run.Mode, run.SampleCount, run.AllowedDistance, params, run.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO froc_curve_points (
				run_id, point_index, curve_key, sensitivity, fp_avg, sensitivity_std, fp_std
			) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare curve insert: %w", err)
		}
		defer stmt.Close()

		for i, p := range run.Points {
			if _, err := stmt.ExecContext(ctx,
				run.RunID, i, p.Key,
				nullable(p.Sensitivity), nullable(p.FPAvg),
				nullable(p.SensitivityStd), nullable(p.FPStd),
			); err != nil {
				return fmt.Errorf("insert curve point %d: %w", i, err)
			}
		}
		return tx.Commit()
	})
}

// GetRun returns a run with its curve points.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, name, mode, sample_count, allowed_distance, params_json, created_at
		FROM froc_runs
		WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT curve_key, sensitivity, fp_avg, sensitivity_std, fp_std
		FROM froc_curve_points
		WHERE run_id = ?
		ORDER BY point_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query curve points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p froc.SummaryRow
		var sens, fp, sensStd, fpStd sql.NullFloat64
		if err := rows.Scan(&p.Key, &sens, &fp, &sensStd, &fpStd); err != nil {
			return nil, fmt.Errorf("scan curve point: %w", err)
		}
		p.Sensitivity = fromNullable(sens)
		p.FPAvg = fromNullable(fp)
		p.SensitivityStd = fromNullable(sensStd)
		p.FPStd = fromNullable(fpStd)
		run.Points = append(run.Points, p)
	}
	return run, rows.Err()
}

// ListRuns returns all runs without their points, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, name, mode, sample_count, allowed_distance, params_json, created_at
		FROM froc_runs
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and its curve points.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM froc_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var params sql.NullString
	if err := row.Scan(&r.RunID, &r.Name, &r.Mode, &r.SampleCount, &r.AllowedDistance, &params, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if params.Valid {
		r.ParamsJSON = json.RawMessage(params.String)
	}
	return &r, nil
}

// NaN is stored as NULL.
func nullable(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
