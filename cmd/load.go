package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insights-explorer/internal/parser"
	"github.com/KaramelBytes/insights-explorer/internal/table"
)

// loadFlags are the table-loading flags shared by analyze, analyze-batch, charts and serve.
type loadFlags struct {
	delimiter string
	decimal   string
	thousands string
	maxRows   int
	sheet     string
	noDates   bool
}

func (lf *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&lf.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	cmd.Flags().StringVar(&lf.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	cmd.Flags().StringVar(&lf.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	cmd.Flags().IntVar(&lf.maxRows, "max-rows", -1, "maximum rows to load (0 = unlimited; default from config)")
	cmd.Flags().StringVar(&lf.sheet, "sheet", "", "XLSX: sheet name to load (first sheet if omitted)")
	cmd.Flags().BoolVar(&lf.noDates, "no-dates", false, "do not infer datetime columns while loading")
}

// options turns the flags into parser options.
func (lf *loadFlags) options() (parser.Options, error) {
	opt := parser.DefaultOptions()
	opt.MaxRows = currentConfig().MaxRows
	if lf.maxRows >= 0 {
		opt.MaxRows = lf.maxRows
	}
	opt.Sheet = lf.sheet
	opt.ParseDates = !lf.noDates
	if lf.delimiter != "" {
		switch lf.delimiter {
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		default:
			return opt, fmt.Errorf("unsupported --delimiter: %s", lf.delimiter)
		}
	}
	// Locale separators
	switch strings.ToLower(strings.TrimSpace(lf.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", lf.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(lf.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", lf.thousands)
	}
	return opt, nil
}

// loadTable loads path and logs how long it took.
func loadTable(path string, opt parser.Options) (*table.Table, error) {
	start := time.Now()
	t, err := parser.LoadFile(path, opt)
	if err != nil {
		return nil, err
	}
	rows, cols := t.Shape()
	logger.Debug().Str("file", path).Int("rows", rows).Int("cols", cols).Dur("took", time.Since(start)).Msg("table loaded")
	return t, nil
}
