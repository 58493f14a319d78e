// Package report renders FROC results as CSV tables, PNG plots and
// interactive HTML charts.
package report

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/fcalvet/froc/internal/froc"
)

// Curve is one FROC curve: mean false positives per sample on x and mean
// sensitivity on y, optionally annotated with the threshold or rank cutoff
// that produced each point.
type Curve struct {
	Name        string
	FPAvg       []float64
	Sensitivity []float64
	// Labels holds one annotation value per point, or is nil.
	Labels []float64
	// LabelFormat formats Labels. Defaults to "%.2f".
	LabelFormat string
}

// CurveFromSweep builds a curve annotated with thresholds.
func CurveFromSweep(name string, res *froc.SweepResult) Curve {
	return Curve{
		Name:        name,
		FPAvg:       res.FPAvgs(),
		Sensitivity: res.Sensitivities(),
		Labels:      res.Thresholds(),
		LabelFormat: "%.2f",
	}
}

// CurveFromRank builds a curve annotated with rank cutoffs.
func CurveFromRank(name string, res *froc.RankResult) Curve {
	return Curve{
		Name:        name,
		FPAvg:       res.FPAvgs(),
		Sensitivity: res.Sensitivities(),
		Labels:      res.Ranks(),
		LabelFormat: "%.0f",
	}
}

func (c Curve) validate() error {
	if len(c.FPAvg) != len(c.Sensitivity) {
		return fmt.Errorf("curve %q: %d x values but %d y values", c.Name, len(c.FPAvg), len(c.Sensitivity))
	}
	if c.Labels != nil && len(c.Labels) != len(c.FPAvg) {
		return fmt.Errorf("curve %q: %d labels for %d points", c.Name, len(c.Labels), len(c.FPAvg))
	}
	return nil
}

// curvePoint is one drawable point of a curve.
type curvePoint struct {
	X, Y  float64
	Label string
}

// points drops points with a NaN coordinate and labels each point that
// differs from the one before it. Repeated points keep an empty label.
func (c Curve) points() []curvePoint {
	format := c.LabelFormat
	if format == "" {
		format = "%.2f"
	}

	out := make([]curvePoint, 0, len(c.FPAvg))
	for i, x := range c.FPAvg {
		y := c.Sensitivity[i]
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		p := curvePoint{X: x, Y: y}
		if c.Labels != nil {
			if n := len(out); n == 0 || out[n-1].X != x || out[n-1].Y != y {
				p.Label = fmt.Sprintf(format, c.Labels[i])
			}
		}
		out = append(out, p)
	}
	return out
}

// palette returns n evenly spaced hues at fixed saturation and lightness.
func palette(n int) []colorful.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]colorful.Color, n)
	for i := range colors {
		colors[i] = colorful.Hsl(360*float64(i)/float64(n), 0.7, 0.45).Clamped()
	}
	return colors
}

func toRGBA(c colorful.Color) color.Color {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
