package insights

import (
	"math"
	"sort"
	"time"

	"github.com/KaramelBytes/insights-explorer/internal/table"
)

// TrendPoint is the mean of the metric column over all rows sharing one date.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Mean  float64   `json:"mean"`
	Count int       `json:"count"`
}

// TimeTrend is the per-date mean of the first numeric column.
type TimeTrend struct {
	DateColumn  string       `json:"date_column"`
	ValueColumn string       `json:"value_column"`
	Points      []TrendPoint `json:"points"`
}

// FindDateColumn returns the first column, in declaration order, that is datetime-typed or
// categorical with every non-missing value parsing as a date under one layout. Times holds
// the parsed values; use the column's IsMissing to tell gaps apart.
func FindDateColumn(t *table.Table) (name string, times []time.Time, err error) {
	var skipped []string
	for _, c := range t.Columns {
		switch c.Kind {
		case table.Datetime:
			return c.Name, c.Times, nil
		case table.Categorical:
			ts, perr := parseAllTimes(c)
			if perr != nil {
				skipped = append(skipped, c.Name)
				continue
			}
			return c.Name, ts, nil
		}
	}
	if len(skipped) > 0 {
		return "", nil, errorf(ErrParseFailure, "no column parses fully as dates (tried %v)", skipped)
	}
	return "", nil, errorf(ErrPreconditionNotMet, "no datetime or text columns")
}

// parseAllTimes is all-or-nothing: the column must read with a single date layout.
func parseAllTimes(c *table.Column) ([]time.Time, error) {
	if c.MissingCount() == c.Len() {
		return nil, errorf(ErrEmptyInput, "%s has no values", c.Name)
	}
	out, ok := table.ParseTimes(c.Raw)
	if !ok {
		return nil, errorf(ErrParseFailure, "%s: no single date layout fits every value", c.Name)
	}
	return out, nil
}

func timeTrend(t *table.Table) (TimeTrend, error) {
	nums := t.NumericColumns()
	if len(nums) == 0 {
		return TimeTrend{}, errorf(ErrPreconditionNotMet, "no numeric column to trend")
	}
	dateCol, times, err := FindDateColumn(t)
	if err != nil {
		return TimeTrend{}, err
	}
	metric := nums[0]
	dc, _ := t.Column(dateCol)

	type acc struct {
		date time.Time
		sum  float64
		n    int
	}
	// UnixNano overflows outside 1678..2262, so instants are keyed by seconds and nanoseconds.
	type instant struct {
		sec  int64
		nsec int
	}
	groups := map[instant]*acc{}
	for i, ts := range times {
		v := metric.Nums[i]
		if dc.IsMissing(i) || math.IsNaN(v) {
			continue
		}
		key := instant{ts.Unix(), ts.Nanosecond()}
		g := groups[key]
		if g == nil {
			g = &acc{date: ts}
			groups[key] = g
		}
		g.sum += v
		g.n++
	}
	if len(groups) == 0 {
		return TimeTrend{}, errorf(ErrEmptyInput, "no rows with both %s and %s", dateCol, metric.Name)
	}
	tr := TimeTrend{DateColumn: dateCol, ValueColumn: metric.Name, Points: make([]TrendPoint, 0, len(groups))}
	for _, g := range groups {
		tr.Points = append(tr.Points, TrendPoint{Date: g.date, Mean: g.sum / float64(g.n), Count: g.n})
	}
	sort.Slice(tr.Points, func(i, j int) bool { return tr.Points[i].Date.Before(tr.Points[j].Date) })
	return tr, nil
}
