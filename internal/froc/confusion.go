package froc

import "fmt"

// CountConfusion compares one binarised detection mask against its ground
// truth.
//
// When allowedDistance is 0 and the ground truth is a mask, cells are
// compared directly: P counts set ground-truth cells, TP cells set in both
// and FP detection cells outside the ground truth. Otherwise both sides are
// reduced to component centroids (point ground truth is used as is) and
// matched with ComputeAssignment.
func CountConfusion(detection *Mask, gt GroundTruth, allowedDistance float64, conn Connectivity) (ConfusionCount, error) {
	if detection == nil {
		return ConfusionCount{}, fmt.Errorf("%w: nil detection mask", ErrInvalidArgument)
	}
	if err := checkDistance(allowedDistance); err != nil {
		return ConfusionCount{}, err
	}

	switch gt.Kind() {
	case TruthMask:
		truth, _ := gt.Mask()
		if !truth.SameShape(detection) {
			return ConfusionCount{}, fmt.Errorf("%w: detection %v, ground truth %v",
				ErrShapeMismatch, detection.shape, truth.shape)
		}
		if allowedDistance == 0 {
			return overlapCount(detection, truth), nil
		}
		return ComputeAssignment(ExtractCentroids(detection, conn), ExtractCentroids(truth, conn), allowedDistance)

	case TruthPoints:
		points, _ := gt.Points()
		return ComputeAssignment(ExtractCentroids(detection, conn), points, allowedDistance)

	default:
		return ConfusionCount{}, ErrInputType
	}
}

// overlapCount counts cells directly. Both masks share a shape.
func overlapCount(detection, truth *Mask) ConfusionCount {
	var c ConfusionCount
	for i, t := range truth.data {
		d := detection.data[i]
		switch {
		case t != 0 && d != 0:
			c.P++
			c.TP++
		case t != 0:
			c.P++
		case d != 0:
			c.FP++
		}
	}
	return c
}
