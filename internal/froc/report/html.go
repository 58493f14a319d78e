package report

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/fcalvet/froc/internal/fsutil"
)

// HTMLOptions tunes the interactive chart.
type HTMLOptions struct {
	Title string
	// AssetsHost overrides where the echarts script is loaded from, for
	// example a locally served copy.
	AssetsHost string
	Width      string
	Height     string
}

// RenderHTML writes an interactive line chart of curves to w. Point names
// carry the threshold labels and show on hover and next to distinct points.
func RenderHTML(w io.Writer, o HTMLOptions, curves ...Curve) error {
	width, height := o.Width, o.Height
	if width == "" {
		width = "900px"
	}
	if height == "" {
		height = "600px"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: o.Title, Width: width, Height: height, AssetsHost: o.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "FPavg", NameLocation: "middle", NameGap: 25, Min: 0}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Sensitivity", NameLocation: "middle", NameGap: 35, Min: 0, Max: 1}),
	)

	colors := palette(len(curves))
	for i, c := range curves {
		if err := c.validate(); err != nil {
			return err
		}
		pts := c.points()
		data := make([]opts.LineData, len(pts))
		for j, pt := range pts {
			data[j] = opts.LineData{Name: pt.Label, Value: []interface{}{pt.X, pt.Y}}
		}
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("curve %d", i+1)
		}
		line.AddSeries(name, data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(c.Labels != nil), Position: "top", Formatter: "{b}"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colors[i].Hex()}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colors[i].Hex()}),
		)
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// SaveHTML renders curves to path on fsys, creating the parent directory.
func SaveHTML(fsys fsutil.FileSystem, path string, o HTMLOptions, curves ...Curve) error {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, o, curves...); err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return fsys.WriteFile(path, buf.Bytes(), 0o644)
}
