package table

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Kind is the inferred scalar kind of a column.
type Kind int

const (
	Numeric Kind = iota
	Categorical
	Datetime
	Boolean
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Datetime:
		return "datetime"
	case Boolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// MarshalText lets kinds appear by name in JSON reports.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

var (
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrRaggedColumns   = errors.New("columns have different lengths")
)

// Column holds one named column. Raw always carries the trimmed cell text ("" for missing);
// the typed slice matching Kind carries parsed values.
type Column struct {
	Name string
	Kind Kind
	Unit string // unit taken from the header, e.g. "mg/L" for "Mass [mg/L]"
	Raw  []string

	Nums  []float64   // Numeric; NaN marks missing
	Times []time.Time // Datetime; zero marks missing
	Bools []bool      // Boolean
}

// Len returns the number of rows in the column.
func (c *Column) Len() int { return len(c.Raw) }

// IsMissing reports whether row i has no value.
func (c *Column) IsMissing(i int) bool { return c.Raw[i] == "" }

// MissingCount counts rows without a value.
func (c *Column) MissingCount() int {
	n := 0
	for i := range c.Raw {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Values returns the non-missing numeric values in row order. Nil for non-numeric columns.
func (c *Column) Values() []float64 {
	if c.Kind != Numeric {
		return nil
	}
	out := make([]float64, 0, len(c.Nums))
	for _, v := range c.Nums {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Table is an ordered set of equally long, uniquely named columns.
type Table struct {
	Name     string
	Columns  []*Column
	Warnings []string
}

// New builds a table and checks the unique-name and equal-length invariants.
func New(name string, cols ...*Column) (*Table, error) {
	seen := make(map[string]struct{}, len(cols))
	for i, c := range cols {
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		seen[c.Name] = struct{}{}
		if i > 0 && c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("%w: %q has %d rows, %q has %d", ErrRaggedColumns, c.Name, c.Len(), cols[0].Name, cols[0].Len())
		}
	}
	return &Table{Name: name, Columns: cols}, nil
}

// Rows returns the row count.
func (t *Table) Rows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Shape returns (rows, columns).
func (t *Table) Shape() (int, int) { return t.Rows(), len(t.Columns) }

// Names returns column names in declaration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ColumnsOfKind returns the columns of kind k in declaration order.
func (t *Table) ColumnsOfKind(k Kind) []*Column {
	var out []*Column
	for _, c := range t.Columns {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

func (t *Table) NumericColumns() []*Column     { return t.ColumnsOfKind(Numeric) }
func (t *Table) CategoricalColumns() []*Column { return t.ColumnsOfKind(Categorical) }

// Head returns up to n rows of raw cell text.
func (t *Table) Head(n int) [][]string {
	rows := t.Rows()
	if n > rows {
		n = rows
	}
	out := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = c.Raw[i]
		}
		out = append(out, row)
	}
	return out
}

// SelectRows returns a new table holding the rows where keep[i] is true.
// The receiver is left untouched.
func (t *Table) SelectRows(keep []bool) *Table {
	out := &Table{Name: t.Name, Columns: make([]*Column, len(t.Columns))}
	out.Warnings = append(out.Warnings, t.Warnings...)
	for j, c := range t.Columns {
		nc := &Column{Name: c.Name, Kind: c.Kind, Unit: c.Unit}
		for i, k := range keep {
			if !k {
				continue
			}
			nc.Raw = append(nc.Raw, c.Raw[i])
			switch c.Kind {
			case Numeric:
				nc.Nums = append(nc.Nums, c.Nums[i])
			case Datetime:
				nc.Times = append(nc.Times, c.Times[i])
			case Boolean:
				nc.Bools = append(nc.Bools, c.Bools[i])
			}
		}
		out.Columns[j] = nc
	}
	return out
}

// NumericColumn builds a numeric column; NaN values become missing.
func NumericColumn(name string, vals ...float64) *Column {
	c := &Column{Name: name, Kind: Numeric, Raw: make([]string, len(vals)), Nums: make([]float64, len(vals))}
	for i, v := range vals {
		c.Nums[i] = v
		if !math.IsNaN(v) {
			c.Raw[i] = formatFloat(v)
		}
	}
	return c
}

// TextColumn builds a categorical column; empty strings become missing.
func TextColumn(name string, vals ...string) *Column {
	c := &Column{Name: name, Kind: Categorical, Raw: make([]string, len(vals))}
	for i, v := range vals {
		c.Raw[i] = strings.TrimSpace(v)
	}
	return c
}

// DateColumn builds a datetime column; zero times become missing.
func DateColumn(name string, vals ...time.Time) *Column {
	c := &Column{Name: name, Kind: Datetime, Raw: make([]string, len(vals)), Times: make([]time.Time, len(vals))}
	for i, v := range vals {
		c.Times[i] = v
		if !v.IsZero() {
			c.Raw[i] = v.Format(time.RFC3339)
		}
	}
	return c
}
