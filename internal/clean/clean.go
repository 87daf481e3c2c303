// Package clean reports missing values and drops incomplete rows.
package clean

import "github.com/KaramelBytes/insights-explorer/internal/table"

// ColumnMissing is the missing-value count of one column.
type ColumnMissing struct {
	Column  string  `json:"column"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// MissingCounts lists every column in declaration order.
func MissingCounts(t *table.Table) []ColumnMissing {
	rows := t.Rows()
	out := make([]ColumnMissing, 0, len(t.Columns))
	for _, c := range t.Columns {
		m := ColumnMissing{Column: c.Name, Count: c.MissingCount()}
		if rows > 0 {
			m.Percent = float64(m.Count) * 100.0 / float64(rows)
		}
		out = append(out, m)
	}
	return out
}

// HasMissing reports whether any cell is missing.
func HasMissing(t *table.Table) bool {
	for _, c := range t.Columns {
		if c.MissingCount() > 0 {
			return true
		}
	}
	return false
}

// DropMissing returns a copy of t without rows that have a missing cell, and how many
// rows were dropped. t itself is not modified.
func DropMissing(t *table.Table) (*table.Table, int) {
	rows := t.Rows()
	keep := make([]bool, rows)
	dropped := 0
	for i := range keep {
		keep[i] = true
		for _, c := range t.Columns {
			if c.IsMissing(i) {
				keep[i] = false
				dropped++
				break
			}
		}
	}
	return t.SelectRows(keep), dropped
}
