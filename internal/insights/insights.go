// Package insights derives a fixed set of facts from a cleaned table: the most correlated
// numeric pair, the column with most missing data, the most imbalanced category, the
// column with most IQR outliers, and a per-date trend of the first numeric column.
//
// Every insight is computed independently. An insight whose inputs are absent is reported
// as not applicable and never stops the others.
package insights

import (
	"fmt"

	"github.com/KaramelBytes/insights-explorer/internal/table"
)

// Outcome is either an applicable value or the reason the insight does not apply.
type Outcome[T any] struct {
	Value  *T     `json:"value,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Applicable reports whether the outcome carries a value.
func (o Outcome[T]) Applicable() bool { return o.Value != nil }

// Get returns the value and whether it is present.
func (o Outcome[T]) Get() (T, bool) {
	if o.Value == nil {
		var zero T
		return zero, false
	}
	return *o.Value, true
}

// applicable wraps v.
func applicable[T any](v T) Outcome[T] { return Outcome[T]{Value: &v} }

// NotApplicable records why an insight was skipped.
func NotApplicable[T any](reason string) Outcome[T] { return Outcome[T]{Reason: reason} }

// Report holds the five insights for one table snapshot.
type Report struct {
	Table       string                   `json:"table"`
	Rows        int                      `json:"rows"`
	Correlation Outcome[CorrelatedPair]   `json:"correlation"`
	Missing     Outcome[MissingColumn]    `json:"missing"`
	Imbalance   Outcome[ImbalancedColumn] `json:"imbalance"`
	Outliers    Outcome[OutlierColumn]    `json:"outliers"`
	Trend       Outcome[TimeTrend]        `json:"trend"`
}

// Compute runs all insights over t. It never fails; see Outcome.Reason for skipped ones.
func Compute(t *table.Table) Report {
	if t == nil {
		t = &table.Table{}
	}
	return Report{
		Table:       t.Name,
		Rows:        t.Rows(),
		Correlation: guard(t, mostCorrelated),
		Missing:     guard(t, mostMissing),
		Imbalance:   guard(t, mostImbalanced),
		Outliers:    guard(t, mostOutliers),
		Trend:       guard(t, timeTrend),
	}
}

// guard turns errors and panics of one insight into NotApplicable.
func guard[T any](t *table.Table, fn func(*table.Table) (T, error)) (out Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = NotApplicable[T](fmt.Sprintf("internal error: %v", r))
		}
	}()
	v, err := fn(t)
	if err != nil {
		return NotApplicable[T](err.Error())
	}
	return applicable(v)
}

func errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
