package clean_test

import (
	"math"
	"testing"

	"github.com/KaramelBytes/insights-explorer/internal/clean"
	"github.com/KaramelBytes/insights-explorer/internal/table"
)

func TestMissingCountsAndDrop(t *testing.T) {
	tbl, err := table.New("t",
		table.NumericColumn("n", 1, math.NaN(), 3, 4),
		table.TextColumn("s", "a", "b", "", "d"),
	)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	if !clean.HasMissing(tbl) {
		t.Fatalf("expected missing values")
	}
	counts := clean.MissingCounts(tbl)
	if len(counts) != 2 || counts[0].Count != 1 || counts[1].Count != 1 || counts[0].Percent != 25 {
		t.Fatalf("counts = %+v", counts)
	}

	out, dropped := clean.DropMissing(tbl)
	if dropped != 2 || out.Rows() != 2 {
		t.Fatalf("dropped = %d rows = %d, want 2/2", dropped, out.Rows())
	}
	if tbl.Rows() != 4 || !clean.HasMissing(tbl) {
		t.Fatalf("input table was modified")
	}
	if clean.HasMissing(out) {
		t.Fatalf("output still has missing values")
	}
	n, _ := out.Column("n")
	if n.Nums[0] != 1 || n.Nums[1] != 4 {
		t.Fatalf("kept values = %v", n.Nums)
	}
}

func TestDropMissingOnCompleteTable(t *testing.T) {
	tbl, _ := table.New("t", table.NumericColumn("n", 1, 2))
	out, dropped := clean.DropMissing(tbl)
	if dropped != 0 || out.Rows() != 2 {
		t.Fatalf("dropped = %d rows = %d", dropped, out.Rows())
	}
}
