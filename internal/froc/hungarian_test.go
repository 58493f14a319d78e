package froc

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// noCols is an n×0 matrix; mat.Dense cannot hold zero-length dimensions.
type noCols int

func (n noCols) Dims() (int, int)    { return int(n), 0 }
func (n noCols) At(i, j int) float64 { panic("no columns") }
func (n noCols) T() mat.Matrix       { return mat.Transpose{Matrix: n} }

func totalCost(t *testing.T, cost *mat.Dense, result []int) float64 {
	t.Helper()
	total := 0.0
	for i, j := range result {
		if j >= 0 {
			total += cost.At(i, j)
		}
	}
	return total
}

func TestHungarianAssign_Nil(t *testing.T) {
	if result := HungarianAssign(nil); result != nil {
		t.Errorf("expected nil for nil cost matrix, got %v", result)
	}
}

func TestHungarianAssign_SingleElement(t *testing.T) {
	result := HungarianAssign(mat.NewDense(1, 1, []float64{5}))
	if len(result) != 1 || result[0] != 0 {
		t.Errorf("expected [0], got %v", result)
	}
}

func TestHungarianAssign_SquareOptimal(t *testing.T) {
	//   [1 2 3]     Optimal: row0→col0 (1), row1→col1 (4), row2→col2 (5) = 10
	//   [4 4 6]
	//   [9 8 5]
	cost := mat.NewDense(3, 3, []float64{
		1, 2, 3,
		4, 4, 6,
		9, 8, 5,
	})
	result := HungarianAssign(cost)

	if len(result) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(result))
	}
	for i, j := range result {
		if j < 0 {
			t.Errorf("row %d unassigned", i)
		}
	}
	if got := totalCost(t, cost, result); got != 10 {
		t.Errorf("expected optimal cost 10, got %v (assignments: %v)", got, result)
	}
}

func TestHungarianAssign_MoreRowsThanCols(t *testing.T) {
	cost := mat.NewDense(3, 2, []float64{
		1, 10,
		10, 1,
		5, 5,
	})
	result := HungarianAssign(cost)

	if len(result) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(result))
	}
	assigned := 0
	for _, j := range result {
		if j >= 0 {
			assigned++
		}
	}
	if assigned != 2 {
		t.Errorf("expected exactly 2 assigned rows, got %d (result: %v)", assigned, result)
	}
	if got := totalCost(t, cost, result); got != 2 {
		t.Errorf("expected optimal cost 2, got %v (assignments: %v)", got, result)
	}
	if result[2] != -1 {
		t.Errorf("expected row 2 unassigned, got %d", result[2])
	}
}

func TestHungarianAssign_MoreColsThanRows(t *testing.T) {
	cost := mat.NewDense(2, 3, []float64{
		10, 1, 5,
		5, 10, 1,
	})
	result := HungarianAssign(cost)

	if len(result) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(result))
	}
	for i, j := range result {
		if j < 0 {
			t.Errorf("row %d unassigned", i)
		}
	}
	if got := totalCost(t, cost, result); got != 2 {
		t.Errorf("expected optimal cost 2, got %v (assignments: %v)", got, result)
	}
}

func TestHungarianAssign_AllZeroCost(t *testing.T) {
	result := HungarianAssign(mat.NewDense(2, 2, nil))

	if len(result) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(result))
	}
	if result[0] == result[1] {
		t.Errorf("both rows assigned to same column: %v", result)
	}
}

func TestHungarianAssign_NoColumns(t *testing.T) {
	result := HungarianAssign(noCols(2))

	if len(result) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(result))
	}
	for i, j := range result {
		if j != -1 {
			t.Errorf("row %d should be -1 (no columns), got %d", i, j)
		}
	}
}

func TestHungarianAssign_LargerOptimality(t *testing.T) {
	// Optimal assignment: (0,3)=1, (1,2)=2, (2,1)=3, (3,0)=4 → total=10
	cost := mat.NewDense(4, 4, []float64{
		10, 5, 7, 1,
		8, 9, 2, 6,
		7, 3, 11, 5,
		4, 12, 8, 9,
	})
	result := HungarianAssign(cost)

	for i, j := range result {
		if j < 0 {
			t.Errorf("row %d unassigned in 4×4 problem", i)
		}
	}
	if got := totalCost(t, cost, result); got != 10 {
		t.Errorf("expected optimal cost 10, got %v (assignments: %v)", got, result)
	}
}

func TestHungarianAssign_SmallDistancesSurvivePadding(t *testing.T) {
	// A 1×3 problem whose real costs differ by far less than one.
	cost := mat.NewDense(1, 3, []float64{0.3, 1e-9, 0.2})
	result := HungarianAssign(cost)
	if len(result) != 1 || result[0] != 1 {
		t.Errorf("expected [1], got %v", result)
	}
}
