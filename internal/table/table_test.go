package table

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

var csvRows = []string{
	"Group;Concentration (g/L);Score;LocaleNumber;Category;Sampled;Active",
	"A;0,5;10,0;1.000,0;alpha;2024-08-10;true",
	"A;0,6;11,0;1.100,0;alpha;2024-08-12;false",
	"B;;9,5;0.900,0;beta;2024-08-15;True",
	"B;0,7;NA;1.050,0;;2024-08-15;FALSE",
}

func TestReadCSVInfersKindsAndLocale(t *testing.T) {
	opt := DefaultOptions()
	opt.DecimalSeparator = ','
	opt.ThousandsSeparator = '.'
	tbl, err := ReadCSV(strings.NewReader(strings.Join(csvRows, "\n")), "metrics.csv", opt)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	rows, cols := tbl.Shape()
	if rows != 4 || cols != 7 {
		t.Fatalf("shape = (%d, %d), want (4, 7)", rows, cols)
	}
	wantKinds := map[string]Kind{
		"Group":               Categorical,
		"Concentration (g/L)": Numeric,
		"Score":               Numeric,
		"LocaleNumber":        Numeric,
		"Category":            Categorical,
		"Sampled":             Datetime,
		"Active":              Boolean,
	}
	for name, want := range wantKinds {
		c, ok := tbl.Column(name)
		if !ok {
			t.Fatalf("missing column %q in %v", name, tbl.Names())
		}
		if c.Kind != want {
			t.Fatalf("%s kind = %s, want %s", name, c.Kind, want)
		}
	}
	conc, _ := tbl.Column("Concentration (g/L)")
	if conc.Unit != "g/L" {
		t.Fatalf("unit = %q, want g/L", conc.Unit)
	}
	if !math.IsNaN(conc.Nums[2]) || conc.MissingCount() != 1 {
		t.Fatalf("expected one missing concentration, got %v", conc.Nums)
	}
	loc, _ := tbl.Column("LocaleNumber")
	if loc.Nums[1] != 1100 {
		t.Fatalf("locale number = %v, want 1100", loc.Nums[1])
	}
	score, _ := tbl.Column("Score")
	if !score.IsMissing(3) {
		t.Fatalf("NA should load as missing")
	}
	sampled, _ := tbl.Column("Sampled")
	if !sampled.Times[0].Equal(time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("sampled[0] = %v", sampled.Times[0])
	}
}

func TestReadCSVSniffsDelimiterAndMangling(t *testing.T) {
	in := "a;a;;b\n1;2;3;x\n4;5\n6;7;8;y;extra\n"
	tbl, err := ReadCSV(strings.NewReader(in), "data.csv", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	want := []string{"a", "a.1", "Unnamed: 2", "b"}
	got := tbl.Names()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("names = %v, want %v", got, want)
	}
	if tbl.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", tbl.Rows())
	}
	b, _ := tbl.Column("b")
	if !b.IsMissing(1) {
		t.Fatalf("short row should pad with missing")
	}
	if len(tbl.Warnings) != 1 || !strings.Contains(tbl.Warnings[0], "extra fields ignored") {
		t.Fatalf("warnings = %#v", tbl.Warnings)
	}
}

func TestReadCSVStrictInference(t *testing.T) {
	in := "mixed,empty,pct\n1,,10%\nabc,,12.5%\n3,,\n"
	tbl, err := ReadCSV(strings.NewReader(in), "data.csv", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	mixed, _ := tbl.Column("mixed")
	if mixed.Kind != Categorical {
		t.Fatalf("mixed kind = %s, want categorical", mixed.Kind)
	}
	empty, _ := tbl.Column("empty")
	if empty.Kind != Numeric || empty.MissingCount() != 3 {
		t.Fatalf("empty column kind = %s missing = %d", empty.Kind, empty.MissingCount())
	}
	pct, _ := tbl.Column("pct")
	if pct.Kind != Numeric || pct.Unit != "%" || pct.Nums[1] != 12.5 {
		t.Fatalf("pct = %+v", pct)
	}
}

func TestReadCSVMaxRowsAndEmpty(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxRows = 2
	tbl, err := ReadCSV(strings.NewReader("x\n1\n2\n3\n"), "x.csv", opt)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.Rows())
	}
	if len(tbl.Warnings) != 1 || tbl.Warnings[0] != "kept only 2/3 rows due to MaxRows" {
		t.Fatalf("warnings = %#v", tbl.Warnings)
	}

	empty, err := ReadCSV(strings.NewReader(""), "empty.csv", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSV empty: %v", err)
	}
	if r, c := empty.Shape(); r != 0 || c != 0 {
		t.Fatalf("empty shape = (%d, %d)", r, c)
	}
}

func TestReadCSVTabByName(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a\tb\n1\t2\n"), "data.tsv", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(tbl.Columns) != 2 {
		t.Fatalf("columns = %v", tbl.Names())
	}
}

func TestNewValidatesInvariants(t *testing.T) {
	if _, err := New("t", NumericColumn("a", 1), NumericColumn("a", 2)); !errors.Is(err, ErrDuplicateColumn) {
		t.Fatalf("err = %v, want ErrDuplicateColumn", err)
	}
	if _, err := New("t", NumericColumn("a", 1, 2), NumericColumn("b", 2)); !errors.Is(err, ErrRaggedColumns) {
		t.Fatalf("err = %v, want ErrRaggedColumns", err)
	}
}

func TestSelectRowsLeavesSourceUntouched(t *testing.T) {
	tbl, err := New("t",
		NumericColumn("n", 1, math.NaN(), 3),
		TextColumn("s", "a", "b", ""),
		DateColumn("d", time.Unix(0, 0).UTC(), time.Time{}, time.Unix(86400, 0).UTC()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := tbl.SelectRows([]bool{true, false, true})
	if out.Rows() != 2 || tbl.Rows() != 3 {
		t.Fatalf("rows out=%d src=%d", out.Rows(), tbl.Rows())
	}
	d, _ := out.Column("d")
	if !d.Times[1].Equal(time.Unix(86400, 0)) {
		t.Fatalf("d[1] = %v", d.Times[1])
	}
	head := tbl.Head(10)
	if len(head) != 3 || head[1][0] != "" || head[0][1] != "a" {
		t.Fatalf("head = %#v", head)
	}
}

func TestReadCSVSeparatorsPerColumn(t *testing.T) {
	in := "amount,rate,big,mixed\n" +
		"\"1,000\",\"1,5\",\"1,000,000\",\"1,5\"\n" +
		"\"2,500\",\"2,500\",\"2,000.5\",2.5\n"
	tbl, err := ReadCSV(strings.NewReader(in), "money.csv", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	for _, tc := range []struct {
		name string
		want []float64
	}{
		{"amount", []float64{1000, 2500}},
		{"rate", []float64{1.5, 2.5}},
		{"big", []float64{1e6, 2000.5}},
	} {
		c, _ := tbl.Column(tc.name)
		if c.Kind != Numeric {
			t.Fatalf("%s kind = %s, want numeric", tc.name, c.Kind)
		}
		for i, w := range tc.want {
			if c.Nums[i] != w {
				t.Fatalf("%s = %v, want %v", tc.name, c.Nums, tc.want)
			}
		}
	}
	mixed, _ := tbl.Column("mixed")
	if mixed.Kind != Categorical {
		t.Fatalf("mixed separators kind = %s, want categorical", mixed.Kind)
	}
}

func TestReadCSVDatesUseOneLayout(t *testing.T) {
	in := "d,iso_or_slash\n01/02/2020,2020-01-02\n13/02/2020,01/03/2020\n"
	tbl, err := ReadCSV(strings.NewReader(in), "dates.csv", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	d, _ := tbl.Column("d")
	if d.Kind != Datetime {
		t.Fatalf("d kind = %s, want datetime", d.Kind)
	}
	want := []time.Time{time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 2, 13, 0, 0, 0, 0, time.UTC)}
	for i := range want {
		if !d.Times[i].Equal(want[i]) {
			t.Fatalf("d = %v, want %v", d.Times, want)
		}
	}
	mixed, _ := tbl.Column("iso_or_slash")
	if mixed.Kind != Categorical {
		t.Fatalf("mixed layouts kind = %s, want categorical", mixed.Kind)
	}
	if _, ok := ParseTimes([]string{"", ""}); ok {
		t.Fatalf("ParseTimes accepted a column without values")
	}
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2020-01-01", "2020-01-01T10:00:00Z", "01/31/2020", "31/01/2020", "Jan 2, 2021"} {
		if _, ok := ParseTime(s); !ok {
			t.Fatalf("ParseTime(%q) failed", s)
		}
	}
	if _, ok := ParseTime("not a date"); ok {
		t.Fatalf("ParseTime accepted garbage")
	}
}
