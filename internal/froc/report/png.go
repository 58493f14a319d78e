package report

import (
	"fmt"
	"io"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/fcalvet/froc/internal/fsutil"
)

// PlotWidth and PlotHeight set the rendered size of PNG plots.
var (
	PlotWidth  = 8 * vg.Inch
	PlotHeight = 6 * vg.Inch
)

// NewPlot lays out one or more curves on FPavg/Sensitivity axes. Each
// distinct point is annotated with its label.
func NewPlot(title string, curves ...Curve) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "FPavg"
	p.Y.Label.Text = "Sensitivity"
	p.X.Min = 0
	p.Y.Min = 0
	p.Y.Max = 1

	colors := palette(len(curves))
	for i, c := range curves {
		if err := c.validate(); err != nil {
			return nil, err
		}
		pts := c.points()
		if len(pts) == 0 {
			continue
		}

		xys := make(plotter.XYs, len(pts))
		labels := make([]string, len(pts))
		for j, pt := range pts {
			xys[j] = plotter.XY{X: pt.X, Y: pt.Y}
			labels[j] = pt.Label
		}

		line, scatter, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("curve %q: %w", c.Name, err)
		}
		line.Color = toRGBA(colors[i])
		line.Width = vg.Points(1.5)
		scatter.Color = toRGBA(colors[i])
		p.Add(line, scatter)

		if c.Labels != nil {
			annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
			if err != nil {
				return nil, fmt.Errorf("curve %q labels: %w", c.Name, err)
			}
			p.Add(annotations)
		}
		if c.Name != "" {
			p.Legend.Add(c.Name, line, scatter)
		}
	}

	p.Legend.Top = false
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = 10
	return p, nil
}

// RenderPNG writes the plot of curves as PNG to w.
func RenderPNG(w io.Writer, title string, curves ...Curve) error {
	p, err := NewPlot(title, curves...)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(PlotWidth, PlotHeight, "png")
	if err != nil {
		return fmt.Errorf("prepare png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// SavePNG renders curves to path on fsys, creating the parent directory.
func SavePNG(fsys fsutil.FileSystem, path, title string, curves ...Curve) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := RenderPNG(f, title, curves...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
