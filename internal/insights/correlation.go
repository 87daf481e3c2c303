package insights

import (
	"encoding/json"
	"math"

	"github.com/KaramelBytes/insights-explorer/internal/table"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
// Pairs without enough joint observations or variance are NaN.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"` // row-major, Values[i][j]
}

// pearson computes r over rows where both columns have a value. It runs two passes,
// means first and centred co-moments second, so columns sharing a large offset (epoch
// seconds, ids) keep their precision. NaN when fewer than two joint rows or no variance.
func pearson(xs, ys []float64) float64 {
	var n, meanX, meanY float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		n++
		meanX += xs[i]
		meanY += ys[i]
	}
	if n < 2 {
		return math.NaN()
	}
	meanX /= n
	meanY /= n
	var sxx, syy, sxy float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		dx, dy := xs[i]-meanX, ys[i]-meanY
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	denom := math.Sqrt(sxx * syy)
	if denom == 0 || math.IsNaN(denom) || math.IsInf(denom, 0) {
		return math.NaN()
	}
	r := sxy / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// Correlations computes the Pearson matrix over the numeric columns of t using
// pairwise-complete observations. Returns nil with fewer than two numeric columns.
func Correlations(t *table.Table) *CorrMatrix {
	cols := t.NumericColumns()
	n := len(cols)
	if n < 2 {
		return nil
	}
	m := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for i, c := range cols {
		m.Columns[i] = c.Name
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			r := pearson(cols[a].Nums, cols[b].Nums)
			m.Values[a][b] = r
			m.Values[b][a] = r
		}
	}
	return m
}

// MarshalJSON writes undefined coefficients as null; encoding/json rejects NaN.
func (m *CorrMatrix) MarshalJSON() ([]byte, error) {
	vals := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		vals[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				vals[i][j] = &row[j]
			}
		}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}{m.Columns, vals})
}

// At returns the coefficient for the named pair.
func (m *CorrMatrix) At(a, b string) (float64, bool) {
	ia, ib := -1, -1
	for i, name := range m.Columns {
		if name == a {
			ia = i
		}
		if name == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return m.Values[ia][ib], true
}

// CorrelatedPair is the strongest off-diagonal correlation.
type CorrelatedPair struct {
	A    string  `json:"a"`
	B    string  `json:"b"`
	AbsR float64 `json:"abs_r"`
}

func mostCorrelated(t *table.Table) (CorrelatedPair, error) {
	m := Correlations(t)
	if m == nil {
		return CorrelatedPair{}, errorf(ErrPreconditionNotMet, "need at least 2 numeric columns, have %d", len(t.NumericColumns()))
	}
	best := CorrelatedPair{AbsR: -1}
	for i := range m.Columns {
		for j := range m.Columns {
			if i == j {
				continue
			}
			v := math.Abs(m.Values[i][j])
			// NaN fails both comparisons; |r| == 1 is dropped along with the diagonal.
			if !(v < 1) {
				continue
			}
			if v > best.AbsR {
				best = CorrelatedPair{A: m.Columns[i], B: m.Columns[j], AbsR: v}
			}
		}
	}
	if best.AbsR < 0 {
		return CorrelatedPair{}, errorf(ErrEmptyInput, "no defined correlation below 1 between distinct columns")
	}
	return best, nil
}
