package parser

import (
	"io"
	"strings"

	"github.com/KaramelBytes/insights-explorer/internal/table"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvLoader) Load(r io.Reader, name string, opt Options) (*table.Table, error) {
	return table.ReadCSV(r, name, opt.Options)
}
