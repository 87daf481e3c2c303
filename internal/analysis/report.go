// Package analysis assembles everything a shell shows for one dataset: shape, schema,
// missing values, sample rows, the correlation matrix and the computed insights.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/insights-explorer/internal/clean"
	"github.com/KaramelBytes/insights-explorer/internal/insights"
	"github.com/KaramelBytes/insights-explorer/internal/table"
)

// Options controls report assembly.
type Options struct {
	// SampleRows determines how many head rows to include in the report.
	SampleRows int
	// DropMissing removes rows with any missing cell before computing insights.
	DropMissing bool
}

// DefaultOptions returns reasonable defaults for dataset reports.
func DefaultOptions() Options {
	return Options{SampleRows: 5}
}

// Report is a markdown-friendly analysis of a tabular dataset.
type Report struct {
	Name     string                  `json:"name"`
	Rows     int                     `json:"rows"`
	Dropped  int                     `json:"dropped_rows"`
	Cols     []ColumnSummary         `json:"columns"`
	Missing  []clean.ColumnMissing   `json:"missing"`
	Samples  [][]string              `json:"samples"`
	Warnings []string                `json:"warnings,omitempty"`
	Corr     *insights.CorrMatrix    `json:"correlations,omitempty"`
	Insights insights.Report         `json:"insights"`
}

// ColumnSummary captures kind and statistics per column.
type ColumnSummary struct {
	Name    string     `json:"name"`
	Kind    table.Kind `json:"kind"`
	Unit    string     `json:"unit,omitempty"`
	NonNull int        `json:"non_null"`
	Missing int        `json:"missing"`
	Unique  int        `json:"unique,omitempty"`
	// Numeric stats
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Mean float64 `json:"mean,omitempty"`
	Std  float64 `json:"std,omitempty"`
	// Categorical top values
	TopValues []CategoryCount `json:"top_values,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Run summarizes t. The missing-value section always describes t as loaded; with
// DropMissing, every later section describes the cleaned rows.
func Run(t *table.Table, opt Options) *Report {
	rep := &Report{Name: t.Name, Missing: clean.MissingCounts(t)}
	rep.Warnings = append(rep.Warnings, t.Warnings...)
	if opt.DropMissing && clean.HasMissing(t) {
		var dropped int
		t, dropped = clean.DropMissing(t)
		rep.Dropped = dropped
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("dropped %d rows with missing values", dropped))
	}
	rep.Rows = t.Rows()
	sampleRows := opt.SampleRows
	if sampleRows < 0 {
		sampleRows = 5
	}
	rep.Samples = t.Head(sampleRows)
	rep.Cols = make([]ColumnSummary, 0, len(t.Columns))
	for _, c := range t.Columns {
		rep.Cols = append(rep.Cols, summarize(c))
	}
	rep.Corr = insights.Correlations(t)
	rep.Insights = insights.Compute(t)
	return rep
}

func summarize(c *table.Column) ColumnSummary {
	s := ColumnSummary{Name: c.Name, Kind: c.Kind, Unit: c.Unit, Missing: c.MissingCount()}
	s.NonNull = c.Len() - s.Missing
	switch c.Kind {
	case table.Numeric:
		// Welford update
		var n int
		var mean, m2 float64
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, x := range c.Values() {
			n++
			if x < lo {
				lo = x
			}
			if x > hi {
				hi = x
			}
			delta := x - mean
			mean += delta / float64(n)
			m2 += delta * (x - mean)
		}
		if n > 0 {
			s.Min, s.Max, s.Mean = lo, hi, mean
		}
		if n > 1 {
			s.Std = math.Sqrt(m2 / float64(n-1))
		}
	case table.Categorical, table.Boolean:
		counts := map[string]int{}
		for i, v := range c.Raw {
			if !c.IsMissing(i) {
				counts[v]++
			}
		}
		tops := make([]CategoryCount, 0, len(counts))
		for k, v := range counts {
			tops = append(tops, CategoryCount{Value: k, Count: v})
		}
		sort.Slice(tops, func(i, j int) bool {
			if tops[i].Count == tops[j].Count {
				return tops[i].Value < tops[j].Value
			}
			return tops[i].Count > tops[j].Count
		})
		if len(tops) > 8 {
			tops = tops[:8]
		}
		s.TopValues = tops
		s.Unique = len(counts)
	}
	return s
}
