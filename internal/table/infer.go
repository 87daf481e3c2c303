package table

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Options controls how raw tabular data is turned into a Table.
type Options struct {
	// MaxRows limits rows kept; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, sniffs among ',', ';', '\t' from the header line.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, it is detected once per column.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, follows the decimal separator (',' '.' space)
	// ParseDates infers the datetime kind for columns whose values all parse as dates.
	ParseDates bool
	// NAValues are cell texts treated as missing (after trimming).
	NAValues []string
}

// DefaultNAValues mirrors the usual spreadsheet and dataframe spellings of "no value".
var DefaultNAValues = []string{"NA", "N/A", "n/a", "NaN", "nan", "-NaN", "null", "NULL", "None", "#N/A", "<NA>"}

// DefaultOptions returns reasonable defaults for loading a dataset.
func DefaultOptions() Options {
	return Options{
		ParseDates: true,
		NAValues:   DefaultNAValues,
	}
}

// builder accumulates raw cells column by column before kinds are inferred.
type builder struct {
	name   string
	header []string
	units  []string
	cells  [][]string
	na     map[string]struct{}
	opt    Options
	rows   int
	kept   int
	warn   []string
	extras int
}

func newBuilder(name string, header []string, opt Options) *builder {
	b := &builder{name: name, opt: opt, na: make(map[string]struct{}, len(opt.NAValues))}
	for _, s := range opt.NAValues {
		b.na[s] = struct{}{}
	}
	b.header, b.units = normalizeHeader(header)
	b.cells = make([][]string, len(b.header))
	return b
}

func (b *builder) add(rec []string) {
	b.rows++
	if b.opt.MaxRows > 0 && b.kept >= b.opt.MaxRows {
		return
	}
	b.kept++
	if len(rec) > len(b.header) {
		b.extras++
	}
	for j := range b.header {
		v := ""
		if j < len(rec) {
			v = strings.TrimSpace(rec[j])
		}
		if _, isNA := b.na[v]; isNA {
			v = ""
		}
		b.cells[j] = append(b.cells[j], v)
	}
}

func (b *builder) build() *Table {
	t := &Table{Name: b.name, Columns: make([]*Column, len(b.header))}
	for j, name := range b.header {
		t.Columns[j] = inferColumn(name, b.units[j], b.cells[j], b.opt)
	}
	if b.extras > 0 {
		b.warn = append(b.warn, fmt.Sprintf("%d rows had more fields than the header; extra fields ignored", b.extras))
	}
	if b.kept < b.rows {
		b.warn = append(b.warn, fmt.Sprintf("kept only %d/%d rows due to MaxRows", b.kept, b.rows))
	}
	t.Warnings = b.warn
	return t
}

// normalizeHeader names blank headers "Unnamed: i" and suffixes duplicates with ".1", ".2", ...
func normalizeHeader(header []string) (names, units []string) {
	names = make([]string, len(header))
	units = make([]string, len(header))
	used := make(map[string]struct{}, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		_, units[i] = splitUnits(h)
		name := h
		for n := 1; ; n++ {
			if _, taken := used[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s.%d", h, n)
		}
		used[name] = struct{}{}
		names[i] = name
	}
	return names, units
}

// inferColumn picks the narrowest kind every non-missing value satisfies.
func inferColumn(name, unit string, raw []string, opt Options) *Column {
	c := &Column{Name: name, Unit: unit, Raw: raw}
	if nums, ok := allNumeric(raw, opt); ok {
		c.Kind = Numeric
		c.Nums = nums
		if c.Unit == "" && anyPercent(raw) {
			c.Unit = "%"
		}
		return c
	}
	if bools, ok := allBool(raw); ok {
		c.Kind = Boolean
		c.Bools = bools
		return c
	}
	if opt.ParseDates {
		if times, ok := ParseTimes(raw); ok {
			c.Kind = Datetime
			c.Times = times
			return c
		}
	}
	c.Kind = Categorical
	return c
}

// allNumeric also accepts a column with no values at all, which loads as numeric.
func allNumeric(raw []string, opt Options) ([]float64, bool) {
	switch {
	case opt.DecimalSeparator == 0 && opt.ThousandsSeparator == 0:
		dec, thou, ok := detectSeparators(raw)
		if !ok {
			return nil, false
		}
		opt.DecimalSeparator, opt.ThousandsSeparator = dec, thou
	case opt.DecimalSeparator == 0:
		opt.DecimalSeparator = '.'
		if opt.ThousandsSeparator == '.' {
			opt.DecimalSeparator = ','
		}
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		if v == "" {
			out[i] = math.NaN()
			continue
		}
		x, ok := parseNumeric(v, opt)
		if !ok {
			return nil, false
		}
		out[i] = x
	}
	return out, true
}

func allBool(raw []string) ([]bool, bool) {
	out := make([]bool, len(raw))
	seen := false
	for i, v := range raw {
		if v == "" {
			continue
		}
		switch v {
		case "true", "True", "TRUE":
			out[i] = true
		case "false", "False", "FALSE":
		default:
			return nil, false
		}
		seen = true
	}
	return out, seen
}

func anyPercent(raw []string) bool {
	for _, v := range raw {
		if strings.HasSuffix(v, "%") {
			return true
		}
	}
	return false
}

var timeLayouts = []string{
	time.RFC3339, time.RFC3339Nano, "2006-01-02", "2006/01/02", "01/02/2006", "02/01/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05", "1/2/2006", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"Jan 2, 2006", "2 Jan 2006", "02-Jan-2006",
}

// ParseTime parses a single value with the first supported layout that fits. Month-first
// wins over day-first when both would match.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTimes reads a whole column with one layout: the first supported layout that fits
// every non-empty value. Empty values stay zero. ok is false when no single layout fits
// or the column holds no values.
func ParseTimes(raw []string) ([]time.Time, bool) {
	out := make([]time.Time, len(raw))
	for _, l := range timeLayouts {
		seen, fits := 0, true
		for i, v := range raw {
			if v == "" {
				continue
			}
			t, err := time.Parse(l, strings.TrimSpace(v))
			if err != nil {
				fits = false
				break
			}
			out[i] = t
			seen++
		}
		if fits {
			return out, seen > 0
		}
	}
	return nil, false
}

var (
	commaGrouped = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+$`)
	dotGrouped   = regexp.MustCompile(`^[+-]?\d{1,3}(\.\d{3})+$`)
)

// detectSeparators settles the decimal and thousands separators once per column.
// A value holding both marks, several of one mark, or a lone mark not followed by exactly
// three digits decides the decimal separator. A lone mark followed by three digits
// ("1,000", "2.500") is ambiguous and follows the decided values; when nothing decides,
// a comma is read as grouping and a dot as decimal. ok is false when values disagree.
func detectSeparators(raw []string) (dec, thou rune, ok bool) {
	var commaDec, dotDec, commaAmbig, dotAmbig bool
	for _, v := range raw {
		v = strings.NewReplacer("%", "", "\u00A0", "", " ", "").Replace(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		c, d := strings.Count(v, ","), strings.Count(v, ".")
		switch {
		case c > 0 && d > 0:
			if strings.LastIndex(v, ",") > strings.LastIndex(v, ".") {
				commaDec = true
			} else {
				dotDec = true
			}
		case c > 1:
			if !commaGrouped.MatchString(v) {
				return 0, 0, false
			}
			dotDec = true
		case d > 1:
			if !dotGrouped.MatchString(v) {
				return 0, 0, false
			}
			commaDec = true
		case c == 1:
			if commaGrouped.MatchString(v) {
				commaAmbig = true
			} else {
				commaDec = true
			}
		case d == 1:
			if dotGrouped.MatchString(v) {
				dotAmbig = true
			} else {
				dotDec = true
			}
		}
	}
	switch {
	case commaDec && dotDec:
		return 0, 0, false
	case commaDec:
		return ',', '.', true
	case dotDec:
		return '.', ',', true
	case commaAmbig && dotAmbig:
		return 0, 0, false
	default:
		return '.', ',', true
	}
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	// Normalize spaces
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	// allNumeric settles the decimal separator per column before calling in.
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		dec = '.'
	}
	// Remove thousands separators (common: ',', '.', space) if they differ from decimal
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
		if dec != ' ' {
			raw = strings.ReplaceAll(raw, " ", "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Alpha (%)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Mass [mg/L]
	{regexp.MustCompile(`^(.*?)[_\s-]+(mg/L|g/L|ug/L|°[CF]|Brix|%|ppm|ppb)$`), 2},
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
