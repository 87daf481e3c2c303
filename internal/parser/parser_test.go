package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/insights-explorer/internal/parser"
	"github.com/KaramelBytes/insights-explorer/internal/table"
)

func TestLoadFileCSV(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "hop_harvest.csv")
	content := "date,plot,alpha_acids,moisture\n" +
		"2024-08-10,A1,12.5%,74\n" +
		"2024-08-12,A1,11.8%,71\n" +
		"2024-08-15,B3,10.2%,68\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := parser.LoadFile(p, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Name != "hop_harvest.csv" {
		t.Fatalf("name = %q", tbl.Name)
	}
	alpha, _ := tbl.Column("alpha_acids")
	if alpha.Kind != table.Numeric || alpha.Unit != "%" {
		t.Fatalf("alpha_acids = %v [%s], want numeric [%%]", alpha.Kind, alpha.Unit)
	}
	if d, _ := tbl.Column("date"); d.Kind != table.Datetime {
		t.Fatalf("date kind = %v", d.Kind)
	}
}

func TestLoadTXTAsDelimited(t *testing.T) {
	tbl, err := parser.Load("export.txt", strings.NewReader("a;b\n1;x\n2;y\n"), parser.DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rows, cols := tbl.Shape(); rows != 2 || cols != 2 {
		t.Fatalf("shape = (%d, %d)", rows, cols)
	}
}

func TestLoadXLSXSheet(t *testing.T) {
	f := excelize.NewFile()
	if _, err := f.NewSheet("Second"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	_ = f.SetCellValue("Second", "A1", "v")
	_ = f.SetCellValue("Second", "A2", 3)
	p := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = f.Close()

	opt := parser.DefaultOptions()
	opt.Sheet = "second"
	tbl, err := parser.LoadFile(p, opt)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Name != "book.xlsx (sheet: second)" || tbl.Rows() != 1 {
		t.Fatalf("table = %q rows=%d", tbl.Name, tbl.Rows())
	}
}

func TestLoadUnsupported(t *testing.T) {
	_, err := parser.Load("notes.docx", strings.NewReader(""), parser.DefaultOptions())
	if !errors.Is(err, parser.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if parser.Supported("a.parquet") {
		t.Fatalf("parquet should not be supported")
	}
}
