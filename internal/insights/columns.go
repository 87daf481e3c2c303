package insights

import (
	"math"

	"github.com/KaramelBytes/insights-explorer/internal/table"
)

// MissingColumn names the column with the most missing cells.
type MissingColumn struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

func mostMissing(t *table.Table) (MissingColumn, error) {
	if len(t.Columns) == 0 {
		return MissingColumn{}, errorf(ErrEmptyInput, "table has no columns")
	}
	var best MissingColumn
	for _, c := range t.Columns {
		if n := c.MissingCount(); n > best.Count {
			best = MissingColumn{Column: c.Name, Count: n}
		}
	}
	if best.Count == 0 {
		return MissingColumn{}, errorf(ErrPreconditionNotMet, "no missing values")
	}
	return best, nil
}

// ImbalancedColumn names the categorical column whose most frequent value dominates most.
type ImbalancedColumn struct {
	Column       string  `json:"column"`
	TopValue     string  `json:"top_value"`
	Dominance    float64 `json:"dominance"`     // fraction of non-missing rows
	DominancePct float64 `json:"dominance_pct"` // percent, one decimal
}

// DominantValue returns the most frequent non-missing value of c and its relative
// frequency. Equal counts resolve to the lexicographically smallest value.
func DominantValue(c *table.Column) (value string, freq float64, ok bool) {
	counts := make(map[string]int)
	total := 0
	for i, v := range c.Raw {
		if c.IsMissing(i) {
			continue
		}
		counts[v]++
		total++
	}
	if total == 0 {
		return "", 0, false
	}
	best := -1
	for v, n := range counts {
		if n > best || (n == best && v < value) {
			value, best = v, n
		}
	}
	return value, float64(best) / float64(total), true
}

func mostImbalanced(t *table.Table) (ImbalancedColumn, error) {
	cols := t.CategoricalColumns()
	if len(cols) == 0 {
		return ImbalancedColumn{}, errorf(ErrPreconditionNotMet, "no categorical columns")
	}
	var best ImbalancedColumn
	found := false
	for _, c := range cols {
		v, f, ok := DominantValue(c)
		if !ok {
			continue
		}
		if !found || f > best.Dominance {
			best = ImbalancedColumn{Column: c.Name, TopValue: v, Dominance: f}
			found = true
		}
	}
	if !found {
		return ImbalancedColumn{}, errorf(ErrEmptyInput, "categorical columns hold no values")
	}
	best.DominancePct = math.Round(best.Dominance*1000) / 10
	return best, nil
}
