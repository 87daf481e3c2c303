package insights

import (
	"math"
	"sort"

	"github.com/KaramelBytes/insights-explorer/internal/table"
)

// IQRMultiplier is the Tukey fence factor.
const IQRMultiplier = 1.5

// OutlierColumn names the numeric column with the most values outside the Tukey fences.
type OutlierColumn struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
	IQR    float64 `json:"iqr"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// Fences are the IQR statistics of one column.
type Fences struct {
	Q1, Q3, IQR, Lower, Upper float64
}

// IQRBounds computes quartiles by linear interpolation and the 1.5·IQR fences.
// ok is false when vals is empty.
func IQRBounds(vals []float64) (f Fences, ok bool) {
	if len(vals) == 0 {
		return Fences{}, false
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	f.Q1 = Quantile(cp, 0.25)
	f.Q3 = Quantile(cp, 0.75)
	f.IQR = f.Q3 - f.Q1
	f.Lower = f.Q1 - IQRMultiplier*f.IQR
	f.Upper = f.Q3 + IQRMultiplier*f.IQR
	return f, true
}

// CountOutliers counts values strictly outside the fences.
func (f Fences) CountOutliers(vals []float64) int {
	n := 0
	for _, v := range vals {
		if v < f.Lower || v > f.Upper {
			n++
		}
	}
	return n
}

// Quantile interpolates linearly between the closest ranks of sorted.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func mostOutliers(t *table.Table) (OutlierColumn, error) {
	cols := t.NumericColumns()
	if len(cols) == 0 {
		return OutlierColumn{}, errorf(ErrPreconditionNotMet, "no numeric columns")
	}
	best := OutlierColumn{Count: -1}
	for _, c := range cols {
		vals := c.Values()
		// A column without values keeps zero fences and counts no outliers.
		cand := OutlierColumn{Column: c.Name}
		if f, ok := IQRBounds(vals); ok {
			cand.Count = f.CountOutliers(vals)
			cand.Q1, cand.Q3, cand.IQR, cand.Lower, cand.Upper = f.Q1, f.Q3, f.IQR, f.Lower, f.Upper
		}
		if cand.Count > best.Count {
			best = cand
		}
	}
	return best, nil
}
