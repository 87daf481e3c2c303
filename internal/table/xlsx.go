package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads one worksheet of an .xlsx workbook into a Table. An empty sheet name selects
// the first sheet. The first row is the header.
func ReadXLSX(r io.Reader, name string, opt Options, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	target := f.GetSheetName(0)
	if sheet != "" {
		target = ""
		for _, s := range f.GetSheetList() {
			if strings.EqualFold(s, sheet) {
				target = s
				break
			}
		}
		if target == "" {
			return nil, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
				sheet, name, strings.Join(f.GetSheetList(), ", "))
		}
	}

	rows, err := f.Rows(target)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", target, err)
	}
	defer rows.Close()

	var b *builder
	for rows.Next() {
		rec, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if b == nil {
			if len(rec) == 0 {
				continue
			}
			b = newBuilder(name, rec, opt)
			continue
		}
		b.add(rec)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", target, err)
	}
	if b == nil {
		return &Table{Name: name}, nil
	}
	return b.build(), nil
}
