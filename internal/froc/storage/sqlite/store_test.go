package sqlite

import (
	"context"
	"encoding/json"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcalvet/froc/internal/froc"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "froc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRun() *Run {
	return &Run{
		Name:            "validation",
		Mode:            "sweep",
		SampleCount:     2,
		AllowedDistance: 1.5,
		ParamsJSON:      json.RawMessage(`{"num_thresholds":3}`),
		Points: []froc.SummaryRow{
			{Key: 0, Aggregate: froc.Aggregate{Sensitivity: 1, FPAvg: 2.5, SensitivityStd: 0, FPStd: 0.5}},
			{Key: 0.5, Aggregate: froc.Aggregate{Sensitivity: 0.5, FPAvg: 1, SensitivityStd: 0.5, FPStd: 0}},
			{Key: 1, Aggregate: froc.Aggregate{Sensitivity: math.NaN(), FPAvg: 0, SensitivityStd: math.NaN(), FPStd: 0}},
		},
	}
}

func TestOpen_AppliesMigrations(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "froc.db")
	s, err := Open(path)
	require.NoError(t, err)

	version, dirty, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
	require.NoError(t, s.Close())

	// Reopening an up-to-date database is a no-op.
	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestInsertAndGetRun(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	run := testRun()
	require.NoError(t, s.InsertRun(ctx, run))
	assert.NotEmpty(t, run.RunID)
	assert.NotZero(t, run.CreatedAt)

	got, err := s.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	if diff := cmp.Diff(run, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertRun_KeepsGivenID(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	run := testRun()
	run.RunID = "fixed"
	run.CreatedAt = 42
	run.ParamsJSON = nil
	require.NoError(t, s.InsertRun(ctx, run))

	got, err := s.GetRun(ctx, "fixed")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.CreatedAt)
	assert.Nil(t, got.ParamsJSON)

	assert.Error(t, s.InsertRun(ctx, run), "duplicate run id")
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	for i, name := range []string{"first", "second", "third"} {
		run := testRun()
		run.Name = name
		run.CreatedAt = int64(i + 1)
		require.NoError(t, s.InsertRun(ctx, run))
	}

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "third", runs[0].Name)
	assert.Equal(t, "first", runs[2].Name)
	assert.Empty(t, runs[0].Points)
}

func TestDeleteRun(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	run := testRun()
	require.NoError(t, s.InsertRun(ctx, run))
	require.NoError(t, s.DeleteRun(ctx, run.RunID))

	_, err := s.GetRun(ctx, run.RunID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteRun(ctx, run.RunID), ErrNotFound)

	var points int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM froc_curve_points`).Scan(&points))
	assert.Zero(t, points)
}

func TestGetRun_NotFound(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
