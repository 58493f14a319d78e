package froc

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ComputeAssignment matches detections to ground-truth points one-to-one so
// that the summed Euclidean distance is minimal, then counts a pair as a true
// positive only when its distance is strictly below allowedDistance.
//
// P is the number of ground-truth points, TP the number of accepted pairs and
// FP the remaining detections. With allowedDistance 0 no pair is ever
// accepted; use CountConfusion with a mask ground truth for exact overlap.
func ComputeAssignment(detections, groundTruth PointSet, allowedDistance float64) (ConfusionCount, error) {
	if err := checkDistance(allowedDistance); err != nil {
		return ConfusionCount{}, err
	}
	if _, err := pointDim(detections, groundTruth); err != nil {
		return ConfusionCount{}, err
	}

	n, m := len(groundTruth), len(detections)
	if n == 0 || m == 0 {
		return ConfusionCount{P: n, FP: m}, nil
	}

	cost := distanceMatrix(groundTruth, detections)
	assign := HungarianAssign(cost)

	tp := 0
	for i, j := range assign {
		if j >= 0 && cost.At(i, j) < allowedDistance {
			tp++
		}
	}
	return ConfusionCount{P: n, TP: tp, FP: m - tp}, nil
}

// distanceMatrix returns the len(rows)×len(cols) matrix of pairwise L2
// distances. Both sets must be non-empty.
func distanceMatrix(rows, cols PointSet) *mat.Dense {
	d := mat.NewDense(len(rows), len(cols), nil)
	for i, r := range rows {
		for j, c := range cols {
			d.Set(i, j, floats.Distance(r, c, 2))
		}
	}
	return d
}
