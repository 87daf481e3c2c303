package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/insights-explorer/internal/table"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxLoader) Load(r io.Reader, name string, opt Options) (*table.Table, error) {
	t, err := table.ReadXLSX(r, name, opt.Options, opt.Sheet)
	if err != nil {
		return nil, err
	}
	if opt.Sheet != "" {
		t.Name = fmt.Sprintf("%s (sheet: %s)", name, opt.Sheet)
	}
	return t, nil
}
