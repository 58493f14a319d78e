package froc

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fcalvet/froc/internal/monitoring"
)

// RankParams configures RankSweep.
type RankParams struct {
	AllowedDistance float64
	// Connectivity used when reducing mask ground truth to centroids.
	Connectivity Connectivity
	// Workers bounds the number of cutoffs evaluated concurrently.
	Workers int
	// IDs names the samples in tables. Defaults to "0", "1", ...
	IDs []string
}

// RankRecord is the outcome of the whole dataset at one rank cutoff.
type RankRecord struct {
	Rank int
	Aggregate
	Samples []SampleOutcome
}

// RankResult holds one record per rank cutoff, starting at 1.
type RankResult struct {
	IDs     []string
	Records []RankRecord
}

// RankSweep evaluates ranked detections at every rank cutoff from 1 to the
// largest number of entries held by any sample.
//
// At cutoff i a sample with targets is matched using its entry i positions
// from the end and records both sensitivity and false positives; once its
// entries are exhausted it records P targets and no hits. A sample without
// targets records only the size of that entry as false positives, and
// nothing once its entries are exhausted.
func RankSweep(ctx context.Context, detections []RankedDetections, gt []GroundTruth, params RankParams) (*RankResult, error) {
	ids, err := validateDataset(len(detections), gt, params.AllowedDistance, params.Workers, params.IDs)
	if err != nil {
		return nil, err
	}

	truth := make([]PointSet, len(gt))
	for i, g := range normalizeTruth(gt) {
		if m, ok := g.Mask(); ok {
			truth[i] = ExtractCentroids(m, params.Connectivity)
		} else {
			truth[i], _ = g.Points()
		}
	}

	maxRank := 0
	all := make([]PointSet, len(detections))
	for i, entries := range detections {
		all[i] = flatten(entries, truth[i])
		maxRank = max(maxRank, len(entries))
	}
	if _, err := pointDim(all...); err != nil {
		return nil, err
	}

	log := monitoring.Logger()
	log.Debug().
		Int("samples", len(detections)).
		Int("max_rank", maxRank).
		Float64("allowed_distance", params.AllowedDistance).
		Msg("froc rank sweep started")
	start := time.Now()

	records := make([]RankRecord, maxRank)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(params.Workers))
	for rank := 1; rank <= maxRank; rank++ {
		g.Go(func() error {
			samples := make([]SampleOutcome, len(detections))
			for si, entries := range detections {
				if err := gctx.Err(); err != nil {
					return err
				}
				o, err := rankOutcome(entries, truth[si], rank, params.AllowedDistance)
				if err != nil {
					return fmt.Errorf("sample %s at rank %d: %w", ids[si], rank, err)
				}
				o.ID = ids[si]
				samples[si] = o
			}
			records[rank-1] = RankRecord{Rank: rank, Aggregate: aggregate(samples), Samples: samples}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().Dur("elapsed", time.Since(start)).Msg("froc rank sweep finished")
	return &RankResult{IDs: ids, Records: records}, nil
}

func rankOutcome(entries RankedDetections, truth PointSet, rank int, allowedDistance float64) (SampleOutcome, error) {
	available := rank <= len(entries)
	switch {
	case len(truth) > 0 && available:
		c, err := ComputeAssignment(entries[len(entries)-rank], truth, allowedDistance)
		if err != nil {
			return SampleOutcome{}, err
		}
		return SampleOutcome{Count: c, HasSensitivity: true, HasFP: true}, nil
	case len(truth) > 0:
		return SampleOutcome{Count: ConfusionCount{P: len(truth)}, HasSensitivity: true, HasFP: true}, nil
	case available:
		return SampleOutcome{Count: ConfusionCount{FP: len(entries[len(entries)-rank])}, HasFP: true}, nil
	default:
		return SampleOutcome{}, nil
	}
}

// flatten concatenates every entry and the ground truth of one sample.
func flatten(entries RankedDetections, truth PointSet) PointSet {
	var out PointSet
	for _, e := range entries {
		out = append(out, e...)
	}
	return append(out, truth...)
}

// Ranks returns the cutoff of each record as a float, for plotting and
// tables.
func (r *RankResult) Ranks() []float64 {
	return r.curve().keys
}

// Sensitivities returns the mean sensitivity per cutoff.
func (r *RankResult) Sensitivities() []float64 { return r.curve().sensitivities() }

// FPAvgs returns the mean false positives per sample per cutoff.
func (r *RankResult) FPAvgs() []float64 { return r.curve().fpAvgs() }

// SensitivityStds returns the population standard deviation of sensitivity
// per cutoff.
func (r *RankResult) SensitivityStds() []float64 { return r.curve().sensitivityStds() }

// FPStds returns the population standard deviation of false positives per
// cutoff.
func (r *RankResult) FPStds() []float64 { return r.curve().fpStds() }

// SensitivityTable returns per-sample sensitivities keyed by cutoff and
// sample ID. Samples without targets are NaN.
func (r *RankResult) SensitivityTable() *Table {
	return r.curve().table(SampleOutcome.SensitivityValue)
}

// FPTable returns per-sample false positives keyed by cutoff and sample ID.
func (r *RankResult) FPTable() *Table {
	return r.curve().table(SampleOutcome.FPValue)
}

// Summary returns the aggregate of every cutoff.
func (r *RankResult) Summary() []SummaryRow { return r.curve().summary() }

func (r *RankResult) curve() curve {
	c := newCurve(r.IDs, len(r.Records))
	for i, rec := range r.Records {
		c.keys[i] = float64(rec.Rank)
		c.aggs[i] = rec.Aggregate
		c.samples[i] = rec.Samples
	}
	return c
}
