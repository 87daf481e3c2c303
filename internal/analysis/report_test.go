package analysis

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/insights-explorer/internal/table"
)

var csvRows = []string{
	"when;Group;Concentration (g/L);Score;Note",
	"2024-01-01;A;0,5;10,0;first",
	"2024-01-01;A;0,6;11,0;",
	"2024-01-02;A;0,55;9,5;third",
	"2024-01-02;B;0,7;10,5;fourth",
	"2024-01-03;A;;9,8;fifth",
	"2024-01-03;A;0,68;10,2;sixth",
	"2024-01-04;A;3,0;50,0;seventh",
}

func loadFixture(t *testing.T) *table.Table {
	t.Helper()
	opt := table.DefaultOptions()
	opt.DecimalSeparator = ','
	tbl, err := table.ReadCSV(strings.NewReader(strings.Join(csvRows, "\n")), "fixture.csv", opt)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return tbl
}

func TestRunSummarizesColumns(t *testing.T) {
	rep := Run(loadFixture(t), DefaultOptions())
	if rep.Rows != 7 || len(rep.Cols) != 5 {
		t.Fatalf("shape = %dx%d, want 7x5", rep.Rows, len(rep.Cols))
	}
	if len(rep.Samples) != 5 {
		t.Fatalf("samples = %d, want 5", len(rep.Samples))
	}
	var conc *ColumnSummary
	for i := range rep.Cols {
		if rep.Cols[i].Name == "Concentration (g/L)" {
			conc = &rep.Cols[i]
		}
	}
	if conc == nil {
		t.Fatalf("Concentration column missing: %+v", rep.Cols)
	}
	if conc.Kind != table.Numeric || conc.Unit != "g/L" {
		t.Fatalf("conc kind/unit = %v/%q", conc.Kind, conc.Unit)
	}
	if conc.NonNull != 6 || conc.Missing != 1 {
		t.Fatalf("conc counts = %d/%d", conc.NonNull, conc.Missing)
	}
	if conc.Min != 0.5 || conc.Max != 3.0 {
		t.Fatalf("conc range = %v..%v", conc.Min, conc.Max)
	}
	if math.Abs(conc.Mean-(0.5+0.6+0.55+0.7+0.68+3.0)/6) > 1e-12 {
		t.Fatalf("conc mean = %v", conc.Mean)
	}
	group := rep.Cols[1]
	if group.Kind != table.Categorical || group.Unique != 2 || group.TopValues[0].Value != "A" || group.TopValues[0].Count != 6 {
		t.Fatalf("group summary = %+v", group)
	}
	if rep.Corr == nil || len(rep.Corr.Columns) != 2 {
		t.Fatalf("corr = %+v", rep.Corr)
	}
	if !rep.Insights.Missing.Applicable() {
		t.Fatalf("missing insight should apply: %s", rep.Insights.Missing.Reason)
	}
}

func TestRunDropMissing(t *testing.T) {
	tbl := loadFixture(t)
	rep := Run(tbl, Options{SampleRows: 2, DropMissing: true})
	if rep.Rows != 5 || rep.Dropped != 2 {
		t.Fatalf("rows/dropped = %d/%d, want 5/2", rep.Rows, rep.Dropped)
	}
	// missing section still reflects the loaded table
	var noteMissing int
	for _, m := range rep.Missing {
		if m.Column == "Note" {
			noteMissing = m.Count
		}
	}
	if noteMissing != 1 {
		t.Fatalf("Note missing = %d, want 1", noteMissing)
	}
	if rep.Insights.Missing.Applicable() {
		t.Fatalf("cleaned table should have no missing values")
	}
	if tbl.Rows() != 7 {
		t.Fatalf("input table mutated: %d rows", tbl.Rows())
	}
}

func TestMarkdownSections(t *testing.T) {
	md := Run(loadFixture(t), DefaultOptions()).Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]", "[SCHEMA]", "[MISSING VALUES]", "[CORRELATIONS]",
		"[KEY INSIGHTS]", "[HEAD AND SAMPLE ROWS]",
		"Concentration (g/L): numeric", "Most Correlated Feature Pair", "Time Trend",
		"Note: 1 (14.3%)",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestReportJSON(t *testing.T) {
	rep := Run(loadFixture(t), DefaultOptions())
	b, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back["name"] != "fixture.csv" {
		t.Fatalf("name = %v", back["name"])
	}
	if _, ok := back["insights"].(map[string]any); !ok {
		t.Fatalf("insights missing in %s", b)
	}
}
