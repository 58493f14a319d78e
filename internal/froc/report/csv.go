package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fcalvet/froc/internal/froc"
)

// CSVWriter writes a FROC result as a summary file with one row per
// threshold or rank cutoff, and a raw file with one row per sample at each
// of them.
type CSVWriter struct {
	Summary *csv.Writer
	Raw     *csv.Writer
}

// NewCSVWriter creates a CSVWriter over the given summary and raw writers.
func NewCSVWriter(summary, raw io.Writer) *CSVWriter {
	return &CSVWriter{
		Summary: csv.NewWriter(summary),
		Raw:     csv.NewWriter(raw),
	}
}

// SummaryHeader returns the summary column names for the given key column.
func SummaryHeader(key string) []string {
	return []string{key, "sensitivity", "fp_avg", "sensitivity_std", "fp_std"}
}

// RawHeader returns the raw column names for the given key column.
func RawHeader(key string) []string {
	return []string{key, "sample_id", "p", "tp", "fp", "sensitivity", "false_positives"}
}

// WriteSweep writes a threshold sweep to both files.
func (c *CSVWriter) WriteSweep(res *froc.SweepResult) error {
	keys := res.Thresholds()
	rows := make([][]froc.SampleOutcome, len(res.Records))
	for i, rec := range res.Records {
		rows[i] = rec.Samples
	}
	return c.write("threshold", res.Summary(), keys, rows)
}

// WriteRank writes a rank sweep to both files.
func (c *CSVWriter) WriteRank(res *froc.RankResult) error {
	keys := res.Ranks()
	rows := make([][]froc.SampleOutcome, len(res.Records))
	for i, rec := range res.Records {
		rows[i] = rec.Samples
	}
	return c.write("rank", res.Summary(), keys, rows)
}

func (c *CSVWriter) write(key string, summary []froc.SummaryRow, keys []float64, rows [][]froc.SampleOutcome) error {
	if err := c.Summary.Write(SummaryHeader(key)); err != nil {
		return err
	}
	for _, s := range summary {
		row := []string{
			formatFloat(s.Key),
			formatFloat(s.Sensitivity),
			formatFloat(s.FPAvg),
			formatFloat(s.SensitivityStd),
			formatFloat(s.FPStd),
		}
		if err := c.Summary.Write(row); err != nil {
			return err
		}
	}

	if err := c.Raw.Write(RawHeader(key)); err != nil {
		return err
	}
	for i, samples := range rows {
		for _, o := range samples {
			row := []string{
				formatFloat(keys[i]),
				o.ID,
				strconv.Itoa(o.Count.P),
				strconv.Itoa(o.Count.TP),
				strconv.Itoa(o.Count.FP),
				formatFloat(o.SensitivityValue()),
				formatFloat(o.FPValue()),
			}
			if err := c.Raw.Write(row); err != nil {
				return err
			}
		}
	}
	return c.Flush()
}

// Flush flushes both writers and reports the first error.
func (c *CSVWriter) Flush() error {
	c.Summary.Flush()
	c.Raw.Flush()
	if err := c.Summary.Error(); err != nil {
		return fmt.Errorf("summary csv: %w", err)
	}
	if err := c.Raw.Error(); err != nil {
		return fmt.Errorf("raw csv: %w", err)
	}
	return nil
}

// WriteTable writes an identifier-keyed table: one row per key, one column
// per sample ID. Missing cells are left empty.
func WriteTable(w io.Writer, key string, t *froc.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{key}, t.IDs...)); err != nil {
		return err
	}
	for i, k := range t.Keys {
		row := make([]string, 0, len(t.IDs)+1)
		row = append(row, formatFloat(k))
		for _, v := range t.Values[i] {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatFloat renders v with six decimals, or an empty cell for NaN.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.6f", v)
}
