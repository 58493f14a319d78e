package froc

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Aggregate summarises the per-sample outcomes at one threshold or rank
// cutoff. Standard deviations are population deviations. A value is NaN when
// nothing was recorded, and a NaN sensitivity from a sample without targets
// propagates into the mean.
type Aggregate struct {
	Sensitivity    float64
	FPAvg          float64
	SensitivityStd float64
	FPStd          float64
}

// SampleOutcome is the result for one sample at one threshold or rank
// cutoff.
type SampleOutcome struct {
	ID    string
	Count ConfusionCount
	// HasSensitivity is false when the sample did not contribute a
	// sensitivity value.
	HasSensitivity bool
	// HasFP is false when the sample did not contribute a false-positive
	// count.
	HasFP bool
}

// SensitivityValue returns TP/P, or NaN when not recorded.
func (o SampleOutcome) SensitivityValue() float64 {
	if !o.HasSensitivity {
		return math.NaN()
	}
	return o.Count.Sensitivity()
}

// FPValue returns the false-positive count, or NaN when not recorded.
func (o SampleOutcome) FPValue() float64 {
	if !o.HasFP {
		return math.NaN()
	}
	return float64(o.Count.FP)
}

func aggregate(samples []SampleOutcome) Aggregate {
	var sens, fps []float64
	for _, s := range samples {
		if s.HasSensitivity {
			sens = append(sens, s.Count.Sensitivity())
		}
		if s.HasFP {
			fps = append(fps, float64(s.Count.FP))
		}
	}
	var a Aggregate
	a.Sensitivity, a.SensitivityStd = meanStd(sens)
	a.FPAvg, a.FPStd = meanStd(fps)
	return a
}

// meanStd returns the mean and population standard deviation, or NaN for
// both when xs is empty.
func meanStd(xs []float64) (mean, std float64) {
	switch len(xs) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return xs[0], 0 * xs[0]
	}
	return stat.PopMeanStdDev(xs, nil)
}
