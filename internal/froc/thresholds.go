package froc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// DefaultNumThresholds is used when SweepParams.NumThresholds is zero.
const DefaultNumThresholds = 40

// ThresholdRange is an inclusive interval of decision thresholds.
type ThresholdRange struct {
	Low  float64
	High float64
}

// Validate checks that the bounds are numbers and ordered.
func (r ThresholdRange) Validate() error {
	if math.IsNaN(r.Low) || math.IsNaN(r.High) || math.IsInf(r.Low, 0) || math.IsInf(r.High, 0) {
		return fmt.Errorf("%w: threshold range %v:%v", ErrInvalidArgument, r.Low, r.High)
	}
	if r.Low > r.High {
		return fmt.Errorf("%w: threshold range low %v above high %v", ErrInvalidArgument, r.Low, r.High)
	}
	return nil
}

// ParseThresholdRange parses a "low:high" string.
func ParseThresholdRange(s string) (ThresholdRange, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return ThresholdRange{}, fmt.Errorf("%w: invalid range format %q: expected low:high", ErrInvalidArgument, s)
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return ThresholdRange{}, fmt.Errorf("%w: invalid low value %q: %v", ErrInvalidArgument, parts[0], err)
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return ThresholdRange{}, fmt.Errorf("%w: invalid high value %q: %v", ErrInvalidArgument, parts[1], err)
	}
	r := ThresholdRange{Low: low, High: high}
	return r, r.Validate()
}

// ThresholdList returns n evenly spaced thresholds from low to high
// inclusive, in ascending order. A single threshold is low.
func ThresholdList(n int, low, high float64) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{low}
	}
	return floats.Span(make([]float64, n), low, high)
}
