package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcalvet/froc/internal/froc/dataset"
	"github.com/fcalvet/froc/internal/froc/storage/sqlite"
	"github.com/fcalvet/froc/internal/fsutil"
)

func writeDataset(t *testing.T, name string, ds *dataset.Dataset) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, dataset.Write(f, ds, dataset.CompressionFor(path)))
	require.NoError(t, f.Close())
	return path
}

func points(p ...[]float64) *[][]float64 {
	out := append([][]float64{}, p...)
	return &out
}

func sweepDataset() *dataset.Dataset {
	return &dataset.Dataset{Samples: []dataset.Sample{
		{
			ID: "a",
			ProbabilityMap: &dataset.MaskDoc{Shape: []int{3, 3}, Data: []float64{
				0.9, 0, 0,
				0, 0, 0,
				0, 0, 0.4,
			}},
			GroundTruthPoints: points([]float64{0, 0}),
		},
		{
			ID: "b",
			ProbabilityMap: &dataset.MaskDoc{Shape: []int{3, 3}, Data: []float64{
				0, 0, 0,
				0, 0.7, 0,
				0, 0, 0,
			}},
			GroundTruthPoints: points(),
		},
	}}
}

func runCLI(t *testing.T, fsys fsutil.FileSystem, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append([]string{"-env", "", "-console=false"}, args...), &stdout, &stderr, fsys)
	return stdout.String(), err
}

func TestRun_Version(t *testing.T) {
	out, err := runCLI(t, fsutil.NewMemoryFileSystem(), "-version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "froc "), out)
}

func TestRun_Sweep(t *testing.T) {
	datasetPath := writeDataset(t, "demo.json.gz", sweepDataset())
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	fsys := fsutil.NewMemoryFileSystem()

	_, err := runCLI(t, fsys, "-dataset", datasetPath, "-out", "out", "-db", dbPath, "-html")
	require.NoError(t, err)

	for _, suffix := range []string{"_summary.csv", "_raw.csv", "_sensitivity.csv", "_fp.csv", ".png", ".html"} {
		assert.True(t, fsys.Exists(filepath.Join("out", "demo"+suffix)), "missing demo%s", suffix)
	}

	summary, err := fsys.ReadFile(filepath.Join("out", "demo_summary.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(summary)), "\n")
	assert.Equal(t, "threshold,sensitivity,fp_avg,sensitivity_std,fp_std", lines[0])
	assert.Len(t, lines, 41)

	table, err := fsys.ReadFile(filepath.Join("out", "demo_fp.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(table), "threshold,a,b\n"), string(table))

	store, err := sqlite.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "demo", runs[0].Name)
	assert.Equal(t, "sweep", runs[0].Mode)
	assert.Equal(t, 2, runs[0].SampleCount)

	stored, err := store.GetRun(context.Background(), runs[0].RunID)
	require.NoError(t, err)
	assert.Len(t, stored.Points, 40)
}

func TestRun_SweepRange(t *testing.T) {
	datasetPath := writeDataset(t, "demo.json", sweepDataset())
	fsys := fsutil.NewMemoryFileSystem()

	_, err := runCLI(t, fsys, "-dataset", datasetPath, "-out", "out", "-range", "0:0.5", "-png=false")
	require.NoError(t, err)

	summary, err := fsys.ReadFile(filepath.Join("out", "demo_summary.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(summary)), "\n")
	require.Len(t, lines, 41)
	assert.True(t, strings.HasPrefix(lines[1], "0.000000,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[40], "0.500000,"), lines[40])
}

func TestRun_Rank(t *testing.T) {
	ds := &dataset.Dataset{Samples: []dataset.Sample{
		{
			RankedDetections:  [][][]float64{{{5, 5}}, {{0, 0}}},
			GroundTruthPoints: points([]float64{0, 0}),
		},
	}}
	datasetPath := writeDataset(t, "ranked.json.zst", ds)
	fsys := fsutil.NewMemoryFileSystem()

	_, err := runCLI(t, fsys, "-dataset", datasetPath, "-mode", "rank", "-out", "reports", "-name", "run 1", "-png=false")
	require.NoError(t, err)

	summary, err := fsys.ReadFile(filepath.Join("reports", "run_1_summary.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(summary)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "rank,sensitivity,fp_avg,sensitivity_std,fp_std", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1.000000,1.000000,"), lines[1])
	assert.False(t, fsys.Exists(filepath.Join("reports", "run_1.png")))
}

func TestRun_Errors(t *testing.T) {
	datasetPath := writeDataset(t, "demo.json", sweepDataset())

	tests := []struct {
		name string
		args []string
	}{
		{"missing dataset flag", nil},
		{"missing dataset file", []string{"-dataset", filepath.Join(t.TempDir(), "none.json")}},
		{"invalid mode", []string{"-dataset", datasetPath, "-mode", "grid"}},
		{"unknown flag", []string{"-bogus"}},
		{"malformed range", []string{"-dataset", datasetPath, "-range", "0.5"}},
		{"inverted range", []string{"-dataset", datasetPath, "-range", "0.9:0.1"}},
		{"config with wrong extension", []string{"-dataset", datasetPath, "-config", "eval.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, fsutil.NewMemoryFileSystem(), tt.args...)
			assert.Error(t, err)
		})
	}
}
