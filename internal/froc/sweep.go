package froc

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fcalvet/froc/internal/monitoring"
)

// SweepParams configures Sweep.
type SweepParams struct {
	// AllowedDistance is the strict upper bound on the distance of a
	// matched pair. Zero with mask ground truth selects cell overlap.
	AllowedDistance float64
	// NumThresholds defaults to DefaultNumThresholds when zero.
	NumThresholds int
	// Range overrides the thresholds' span, which otherwise covers the
	// normalised probability values.
	Range *ThresholdRange
	// Connectivity used when reducing masks to centroids.
	Connectivity Connectivity
	// Workers bounds the number of thresholds evaluated concurrently.
	// Zero means GOMAXPROCS.
	Workers int
	// IDs names the samples in tables. Defaults to "0", "1", ...
	IDs []string
}

// ThresholdRecord is the outcome of the whole dataset at one threshold.
type ThresholdRecord struct {
	Threshold float64
	Aggregate
	Samples []SampleOutcome
}

// SweepResult holds one record per threshold in ascending threshold order.
type SweepResult struct {
	IDs     []string
	Records []ThresholdRecord
}

// Sweep evaluates probability maps against ground truth at a series of
// thresholds.
//
// All maps are rescaled together to [0, 1]; mask ground truth is rescaled
// the same way over its own values. For each threshold every map is
// binarised at value >= threshold and counted with CountConfusion. Every
// sample contributes its false positives. Sensitivity is recorded for every
// sample when the dataset holds at least one target and for none otherwise.
func Sweep(ctx context.Context, maps []*Mask, gt []GroundTruth, params SweepParams) (*SweepResult, error) {
	ids, err := validateDataset(len(maps), gt, params.AllowedDistance, params.Workers, params.IDs)
	if err != nil {
		return nil, err
	}
	if err := validateMaps(maps, gt); err != nil {
		return nil, err
	}
	n := params.NumThresholds
	if n < 0 {
		return nil, fmt.Errorf("%w: number of thresholds %d", ErrInvalidArgument, n)
	}
	if n == 0 {
		n = DefaultNumThresholds
	}
	if params.Range != nil {
		if err := params.Range.Validate(); err != nil {
			return nil, err
		}
	}

	norm := Normalize(maps)
	truth := normalizeTruth(gt)
	hasTargets := datasetHasTargets(truth)

	var thresholds []float64
	if params.Range != nil {
		thresholds = ThresholdList(n, params.Range.Low, params.Range.High)
	} else {
		lo, hi := valueBounds(norm)
		thresholds = ThresholdList(n, lo, hi)
	}

	log := monitoring.Logger()
	log.Debug().
		Int("samples", len(maps)).
		Int("thresholds", len(thresholds)).
		Float64("allowed_distance", params.AllowedDistance).
		Bool("has_targets", hasTargets).
		Msg("froc sweep started")
	start := time.Now()

	records := make([]ThresholdRecord, len(thresholds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(params.Workers))
	for ti, threshold := range thresholds {
		g.Go(func() error {
			samples := make([]SampleOutcome, len(norm))
			for si, m := range norm {
				if err := gctx.Err(); err != nil {
					return err
				}
				c, err := CountConfusion(m.Binarize(threshold), truth[si], params.AllowedDistance, params.Connectivity)
				if err != nil {
					return fmt.Errorf("sample %s at threshold %v: %w", ids[si], threshold, err)
				}
				samples[si] = SampleOutcome{ID: ids[si], Count: c, HasSensitivity: hasTargets, HasFP: true}
			}
			records[ti] = ThresholdRecord{Threshold: threshold, Aggregate: aggregate(samples), Samples: samples}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().Dur("elapsed", time.Since(start)).Msg("froc sweep finished")
	return &SweepResult{IDs: ids, Records: records}, nil
}

// Thresholds returns the threshold of each record.
func (r *SweepResult) Thresholds() []float64 {
	return r.curve().keys
}

// Sensitivities returns the mean sensitivity per threshold.
func (r *SweepResult) Sensitivities() []float64 { return r.curve().sensitivities() }

// FPAvgs returns the mean false positives per sample per threshold.
func (r *SweepResult) FPAvgs() []float64 { return r.curve().fpAvgs() }

// SensitivityStds returns the population standard deviation of sensitivity
// per threshold.
func (r *SweepResult) SensitivityStds() []float64 { return r.curve().sensitivityStds() }

// FPStds returns the population standard deviation of false positives per
// threshold.
func (r *SweepResult) FPStds() []float64 { return r.curve().fpStds() }

// SensitivityTable returns per-sample sensitivities keyed by threshold and
// sample ID.
func (r *SweepResult) SensitivityTable() *Table {
	return r.curve().table(SampleOutcome.SensitivityValue)
}

// FPTable returns per-sample false-positive counts keyed by threshold and
// sample ID.
func (r *SweepResult) FPTable() *Table {
	return r.curve().table(SampleOutcome.FPValue)
}

// Summary returns the aggregate of every threshold.
func (r *SweepResult) Summary() []SummaryRow { return r.curve().summary() }

func (r *SweepResult) curve() curve {
	c := newCurve(r.IDs, len(r.Records))
	for i, rec := range r.Records {
		c.keys[i] = rec.Threshold
		c.aggs[i] = rec.Aggregate
		c.samples[i] = rec.Samples
	}
	return c
}

func workerCount(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// validateDataset checks the arguments shared by Sweep and RankSweep and
// returns the sample IDs to use.
func validateDataset(samples int, gt []GroundTruth, allowedDistance float64, workers int, ids []string) ([]string, error) {
	if samples == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrInvalidArgument)
	}
	if len(gt) != samples {
		return nil, fmt.Errorf("%w: %d detection samples but %d ground truths", ErrInvalidArgument, samples, len(gt))
	}
	if err := checkDistance(allowedDistance); err != nil {
		return nil, err
	}
	if workers < 0 {
		return nil, fmt.Errorf("%w: workers %d", ErrInvalidArgument, workers)
	}
	if _, err := datasetKind(gt); err != nil {
		return nil, err
	}
	if ids == nil {
		return defaultIDs(samples), nil
	}
	if len(ids) != samples {
		return nil, fmt.Errorf("%w: %d ids for %d samples", ErrInvalidArgument, len(ids), samples)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate sample id %q", ErrInvalidArgument, id)
		}
		seen[id] = struct{}{}
	}
	return ids, nil
}

// validateMaps checks that every map is present, finite, of one
// dimensionality, and shaped like its mask ground truth.
func validateMaps(maps []*Mask, gt []GroundTruth) error {
	ndim := -1
	for i, m := range maps {
		if m == nil {
			return fmt.Errorf("%w: sample %d has no probability map", ErrInvalidArgument, i)
		}
		if ndim == -1 {
			ndim = m.NDim()
		} else if m.NDim() != ndim {
			return fmt.Errorf("%w: sample %d has %d dimensions, want %d", ErrInvalidArgument, i, m.NDim(), ndim)
		}
		for _, v := range m.data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: sample %d has a non-finite value", ErrInvalidArgument, i)
			}
		}
		switch gt[i].Kind() {
		case TruthMask:
			truth, _ := gt[i].Mask()
			if !truth.SameShape(m) {
				return fmt.Errorf("%w: sample %d map %v, ground truth %v", ErrShapeMismatch, i, m.shape, truth.shape)
			}
			for _, v := range truth.data {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("%w: sample %d ground truth has a non-finite value", ErrInvalidArgument, i)
				}
			}
		case TruthPoints:
			points, _ := gt[i].Points()
			dim, err := pointDim(points)
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			if dim != -1 && dim != ndim {
				return fmt.Errorf("%w: sample %d points have %d coordinates, map has %d dimensions", ErrInvalidArgument, i, dim, ndim)
			}
		}
	}
	return nil
}

// normalizeTruth rescales a mask ground-truth stack over its own value
// range. A constant stack keeps its set cells at 1. Point ground truth is
// returned unchanged.
func normalizeTruth(gt []GroundTruth) []GroundTruth {
	if len(gt) == 0 || gt[0].Kind() != TruthMask {
		return gt
	}
	masks := make([]*Mask, len(gt))
	for i, g := range gt {
		masks[i], _ = g.Mask()
	}

	out := make([]GroundTruth, len(gt))
	lo, hi := valueBounds(masks)
	if lo != hi {
		for i, m := range Normalize(masks) {
			out[i] = MaskTruth(m)
		}
		return out
	}
	for i, m := range masks {
		out[i] = MaskTruth(binarizeNonZero(m))
	}
	return out
}

func binarizeNonZero(m *Mask) *Mask {
	out := ZeroMask(m.shape...)
	for i, v := range m.data {
		if v != 0 {
			out.data[i] = 1
		}
	}
	return out
}
