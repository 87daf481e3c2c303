// Package charts prepares chart data from tables and insights and renders PNG images.
package charts

import (
	"errors"
	"math"
	"sort"

	"github.com/KaramelBytes/insights-explorer/internal/table"
)

// DefaultBins is the histogram bin count used when none is given.
const DefaultBins = 30

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("no data to chart")

// Bin is one histogram bucket. Every bin is half-open [Lo, Hi) except the last, which is closed.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Histogram buckets values into equal-width bins over [min, max]. NaN values are ignored.
// A constant column gets a unit-wide range centred on its value.
func Histogram(values []float64, bins int) []Bin {
	if bins <= 0 {
		bins = DefaultBins
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		n++
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if n == 0 {
		return nil
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / float64(bins)
	if width == 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		// Too large to widen or split: one bin holds everything.
		return []Bin{{Lo: lo, Hi: hi, Count: n}}
	}
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lo = lo + float64(i)*width
		out[i].Hi = lo + float64(i+1)*width
	}
	out[bins-1].Hi = hi
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out
}

// Count is the frequency of one category value.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts tallies the non-missing values of c, most frequent first; equal counts sort by value.
func ValueCounts(c *table.Column) []Count {
	m := map[string]int{}
	for i, v := range c.Raw {
		if !c.IsMissing(i) {
			m[v]++
		}
	}
	out := make([]Count, 0, len(m))
	for v, n := range m {
		out = append(out, Count{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}
