package froc

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAssignment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		det      PointSet
		gt       PointSet
		distance float64
		want     ConfusionCount
	}{
		{
			name:     "exact hit",
			det:      PointSet{{0, 0}},
			gt:       PointSet{{0, 0}},
			distance: 1,
			want:     ConfusionCount{P: 1, TP: 1, FP: 0},
		},
		{
			name:     "hit plus distant false positive",
			det:      PointSet{{0, 0}, {10, 10}},
			gt:       PointSet{{0, 0}},
			distance: 1,
			want:     ConfusionCount{P: 1, TP: 1, FP: 1},
		},
		{
			name:     "no detections",
			det:      PointSet{},
			gt:       PointSet{{1, 1}},
			distance: 1,
			want:     ConfusionCount{P: 1, TP: 0, FP: 0},
		},
		{
			name:     "no ground truth",
			det:      PointSet{{1, 1}, {2, 2}},
			gt:       nil,
			distance: 1,
			want:     ConfusionCount{P: 0, TP: 0, FP: 2},
		},
		{
			name:     "zero distance never matches",
			det:      PointSet{{0, 0}},
			gt:       PointSet{{0, 0}},
			distance: 0,
			want:     ConfusionCount{P: 1, TP: 0, FP: 1},
		},
		{
			name:     "distance bound is strict",
			det:      PointSet{{0, 3}},
			gt:       PointSet{{0, 0}},
			distance: 3,
			want:     ConfusionCount{P: 1, TP: 0, FP: 1},
		},
		{
			name: "optimal pairing beats greedy",
			// Greedy would pair gt (0,0) with det (0,1) and leave gt (0,2)
			// beyond reach of det (0,-1).
			det:      PointSet{{0, 1}, {0, -1}},
			gt:       PointSet{{0, 0}, {0, 2}},
			distance: 1.5,
			want:     ConfusionCount{P: 2, TP: 2, FP: 0},
		},
		{
			name:     "three dimensions",
			det:      PointSet{{1, 1, 1}, {5, 5, 5}},
			gt:       PointSet{{1, 1, 2}, {9, 9, 9}},
			distance: 2,
			want:     ConfusionCount{P: 2, TP: 1, FP: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeAssignment(tt.det, tt.gt, tt.distance)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeAssignment_InvalidArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		det      PointSet
		gt       PointSet
		distance float64
	}{
		{"negative distance", PointSet{{0, 0}}, PointSet{{0, 0}}, -1},
		{"nan distance", PointSet{{0, 0}}, PointSet{{0, 0}}, math.NaN()},
		{"mixed dimensions", PointSet{{0, 0}}, PointSet{{0, 0, 0}}, 1},
		{"empty point", PointSet{{}}, PointSet{{0, 0}}, 1},
		{"non-finite coordinate", PointSet{{math.Inf(1), 0}}, PointSet{{0, 0}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeAssignment(tt.det, tt.gt, tt.distance)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestComputeAssignment_CountInvariants(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	randomSet := func(n int) PointSet {
		ps := make(PointSet, n)
		for i := range ps {
			ps[i] = Point{rng.Float64() * 20, rng.Float64() * 20}
		}
		return ps
	}

	for range 200 {
		det := randomSet(rng.IntN(8))
		gt := randomSet(rng.IntN(8))
		distance := rng.Float64() * 10

		got, err := ComputeAssignment(det, gt, distance)
		require.NoError(t, err)

		assert.Equal(t, len(det), got.TP+got.FP)
		assert.Equal(t, len(gt), got.P)
		assert.GreaterOrEqual(t, got.TP, 0)
		assert.LessOrEqual(t, got.TP, min(len(det), len(gt)))
	}
}

func TestConfusionCount_Sensitivity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.5, ConfusionCount{P: 2, TP: 1}.Sensitivity())
	assert.True(t, math.IsNaN(ConfusionCount{FP: 3}.Sensitivity()))
	assert.Equal(t, 4, ConfusionCount{P: 2, TP: 1, FP: 3}.Detections())
}

func TestSingletonRanks(t *testing.T) {
	t.Parallel()

	got := SingletonRanks(PointSet{{1, 1}, {2, 2}})
	assert.Equal(t, RankedDetections{{{1, 1}}, {{2, 2}}}, got)
	assert.Empty(t, SingletonRanks(nil))
}
