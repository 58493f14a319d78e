package froc

import "fmt"

// TruthKind identifies which representation a GroundTruth carries.
type TruthKind int

const (
	// TruthUnset is the zero GroundTruth. It is rejected by every operation.
	TruthUnset TruthKind = iota
	TruthMask
	TruthPoints
)

func (k TruthKind) String() string {
	switch k {
	case TruthMask:
		return "mask"
	case TruthPoints:
		return "points"
	default:
		return "unset"
	}
}

// GroundTruth is the reference annotation for one sample: either a binary
// (or value-weighted) mask or an explicit list of target points.
type GroundTruth struct {
	kind   TruthKind
	mask   *Mask
	points PointSet
}

// MaskTruth returns a mask ground truth. A nil mask yields an unset value.
func MaskTruth(m *Mask) GroundTruth {
	if m == nil {
		return GroundTruth{}
	}
	return GroundTruth{kind: TruthMask, mask: m}
}

// PointTruth returns a point-list ground truth. An empty or nil list is a
// valid ground truth with no targets.
func PointTruth(ps PointSet) GroundTruth {
	return GroundTruth{kind: TruthPoints, points: ps}
}

// Kind reports the representation.
func (g GroundTruth) Kind() TruthKind { return g.kind }

// Mask returns the mask and true when g is a mask ground truth.
func (g GroundTruth) Mask() (*Mask, bool) { return g.mask, g.kind == TruthMask }

// Points returns the points and true when g is a point ground truth.
func (g GroundTruth) Points() (PointSet, bool) { return g.points, g.kind == TruthPoints }

// Empty reports whether the ground truth holds no targets.
func (g GroundTruth) Empty() bool {
	switch g.kind {
	case TruthMask:
		return !g.mask.AnyNonZero()
	case TruthPoints:
		return len(g.points) == 0
	default:
		return true
	}
}

// datasetKind resolves the ground-truth representation shared by every
// sample of a dataset.
func datasetKind(gt []GroundTruth) (TruthKind, error) {
	kind := TruthUnset
	for i, g := range gt {
		if g.kind == TruthUnset {
			return TruthUnset, fmt.Errorf("%w: sample %d", ErrInputType, i)
		}
		if kind == TruthUnset {
			kind = g.kind
		} else if g.kind != kind {
			return TruthUnset, fmt.Errorf("%w: sample %d is %s, dataset is %s", ErrInputType, i, g.kind, kind)
		}
	}
	return kind, nil
}

// datasetHasTargets reports whether any sample carries at least one target.
// Sensitivity is only recorded for datasets where this holds.
func datasetHasTargets(gt []GroundTruth) bool {
	for _, g := range gt {
		if !g.Empty() {
			return true
		}
	}
	return false
}
