package froc

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInputType is returned when a ground truth is neither a mask nor a
	// point list, or when one dataset mixes both kinds.
	ErrInputType = errors.New("froc: ground truth must be a mask or a point list")

	// ErrShapeMismatch is returned when a detection map and its ground-truth
	// mask do not share the same shape.
	ErrShapeMismatch = errors.New("froc: shape mismatch")

	// ErrInvalidArgument is returned for parameters outside their domain.
	ErrInvalidArgument = errors.New("froc: invalid argument")
)

// Point is a coordinate in index order (row, column, ...).
type Point []float64

// PointSet is the ordered list of points belonging to one sample.
type PointSet []Point

// RankedDetections holds the detection entries of one sample ordered from
// least to most confident. At rank cutoff i the entry i positions from the
// end is evaluated.
type RankedDetections []PointSet

// SingletonRanks wraps every detection in its own entry, so that rank cutoff
// i evaluates the i-th most confident detection on its own. ps must be
// ordered least confident first.
func SingletonRanks(ps PointSet) RankedDetections {
	out := make(RankedDetections, len(ps))
	for i, p := range ps {
		out[i] = PointSet{p}
	}
	return out
}

// ConfusionCount is the outcome of matching one sample at one threshold.
type ConfusionCount struct {
	P  int // ground-truth targets
	TP int // matched detections
	FP int // unmatched detections
}

// Sensitivity returns TP/P. It is NaN when P is zero.
func (c ConfusionCount) Sensitivity() float64 {
	if c.P == 0 {
		return math.NaN()
	}
	return float64(c.TP) / float64(c.P)
}

// Detections returns the number of detections that were matched or not.
func (c ConfusionCount) Detections() int {
	return c.TP + c.FP
}

// pointDim checks that every point across sets has the same finite
// dimensionality and returns it, or -1 when all sets are empty.
func pointDim(sets ...PointSet) (int, error) {
	dim := -1
	for _, set := range sets {
		for i, p := range set {
			if len(p) == 0 {
				return 0, fmt.Errorf("%w: point %d has no coordinates", ErrInvalidArgument, i)
			}
			if dim == -1 {
				dim = len(p)
			} else if len(p) != dim {
				return 0, fmt.Errorf("%w: point %d has %d coordinates, want %d", ErrInvalidArgument, i, len(p), dim)
			}
			for _, v := range p {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return 0, fmt.Errorf("%w: point %d has non-finite coordinate", ErrInvalidArgument, i)
				}
			}
		}
	}
	return dim, nil
}

func checkDistance(allowedDistance float64) error {
	if math.IsNaN(allowedDistance) || allowedDistance < 0 {
		return fmt.Errorf("%w: allowed distance %v", ErrInvalidArgument, allowedDistance)
	}
	return nil
}
