package froc

import (
	"math"
	"slices"
	"strconv"
)

// Table holds one value per (threshold or rank cutoff, sample). Rows follow
// Keys, columns follow IDs. Missing cells are NaN.
type Table struct {
	Keys   []float64
	IDs    []string
	Values [][]float64
}

// Column returns the values for one sample across all rows.
func (t *Table) Column(id string) ([]float64, bool) {
	j := slices.Index(t.IDs, id)
	if j < 0 {
		return nil, false
	}
	col := make([]float64, len(t.Values))
	for i, row := range t.Values {
		col[i] = row[j]
	}
	return col, true
}

// Row returns the values of row i, one per sample.
func (t *Table) Row(i int) []float64 {
	return slices.Clone(t.Values[i])
}

// SummaryRow pairs a threshold or rank cutoff with its aggregate.
type SummaryRow struct {
	Key float64
	Aggregate
}

// defaultIDs returns "0", "1", ... for n samples.
func defaultIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = strconv.Itoa(i)
	}
	return ids
}

func buildTable(keys []float64, ids []string, rows [][]SampleOutcome, pick func(SampleOutcome) float64) *Table {
	t := &Table{
		Keys:   slices.Clone(keys),
		IDs:    slices.Clone(ids),
		Values: make([][]float64, len(rows)),
	}
	for i, samples := range rows {
		row := make([]float64, len(ids))
		for j := range row {
			row[j] = math.NaN()
		}
		for j, s := range samples {
			row[j] = pick(s)
		}
		t.Values[i] = row
	}
	return t
}

// curve is the key-ordered view shared by SweepResult and RankResult.
type curve struct {
	keys    []float64
	ids     []string
	aggs    []Aggregate
	samples [][]SampleOutcome
}

func newCurve(ids []string, n int) curve {
	return curve{
		keys:    make([]float64, n),
		ids:     ids,
		aggs:    make([]Aggregate, n),
		samples: make([][]SampleOutcome, n),
	}
}

func (c curve) sensitivities() []float64 {
	return c.column(func(a Aggregate) float64 { return a.Sensitivity })
}

func (c curve) fpAvgs() []float64 {
	return c.column(func(a Aggregate) float64 { return a.FPAvg })
}

func (c curve) sensitivityStds() []float64 {
	return c.column(func(a Aggregate) float64 { return a.SensitivityStd })
}

func (c curve) fpStds() []float64 {
	return c.column(func(a Aggregate) float64 { return a.FPStd })
}

func (c curve) column(pick func(Aggregate) float64) []float64 {
	out := make([]float64, len(c.aggs))
	for i, a := range c.aggs {
		out[i] = pick(a)
	}
	return out
}

func (c curve) table(pick func(SampleOutcome) float64) *Table {
	return buildTable(c.keys, c.ids, c.samples, pick)
}

func (c curve) summary() []SummaryRow {
	out := make([]SummaryRow, len(c.aggs))
	for i, a := range c.aggs {
		out[i] = SummaryRow{Key: c.keys[i], Aggregate: a}
	}
	return out
}
