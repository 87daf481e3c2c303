package insights

import "fmt"

// Line is one rendered insight: a heading and a sentence.
type Line struct {
	Title      string
	Text       string
	Applicable bool
}

// Lines renders the report in a fixed order for text and HTML shells.
func (r Report) Lines() []Line {
	out := make([]Line, 0, 5)

	l := Line{Title: "Most Correlated Feature Pair"}
	if v, ok := r.Correlation.Get(); ok {
		l.Text = fmt.Sprintf("%s and %s (correlation: %.2f)", v.A, v.B, v.AbsR)
		l.Applicable = true
	} else {
		l.Text = "n/a: " + r.Correlation.Reason
	}
	out = append(out, l)

	l = Line{Title: "Column with Most Missing Data"}
	if v, ok := r.Missing.Get(); ok {
		l.Text = fmt.Sprintf("%s (missing: %d rows)", v.Column, v.Count)
		l.Applicable = true
	} else {
		l.Text = "n/a: " + r.Missing.Reason
	}
	out = append(out, l)

	l = Line{Title: "Most Imbalanced Category"}
	if v, ok := r.Imbalance.Get(); ok {
		l.Text = fmt.Sprintf("%s (dominance: %.1f%%, top value %q)", v.Column, v.DominancePct, v.TopValue)
		l.Applicable = true
	} else {
		l.Text = "n/a: " + r.Imbalance.Reason
	}
	out = append(out, l)

	l = Line{Title: "Outlier Detection (IQR Method)"}
	if v, ok := r.Outliers.Get(); ok {
		l.Text = fmt.Sprintf("%s (%d potential outliers outside [%.4g, %.4g])", v.Column, v.Count, v.Lower, v.Upper)
		l.Applicable = true
	} else {
		l.Text = "n/a: " + r.Outliers.Reason
	}
	out = append(out, l)

	l = Line{Title: "Time Trend"}
	if v, ok := r.Trend.Get(); ok {
		first, last := v.Points[0], v.Points[len(v.Points)-1]
		l.Text = fmt.Sprintf("%s over time (%s): %d dates from %s (mean %.4g) to %s (mean %.4g)",
			v.ValueColumn, v.DateColumn, len(v.Points),
			first.Date.Format("2006-01-02"), first.Mean, last.Date.Format("2006-01-02"), last.Mean)
		l.Applicable = true
	} else {
		l.Text = "n/a: " + r.Trend.Reason
	}
	out = append(out, l)
	return out
}
