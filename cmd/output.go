package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/KaramelBytes/insights-explorer/internal/analysis"
	"github.com/KaramelBytes/insights-explorer/internal/table"
	"github.com/KaramelBytes/insights-explorer/internal/utils"
)

// outputOptions controls how an analysis report is written.
type outputOptions struct {
	Format     string // markdown | json | table
	OutputPath string
	Quiet      bool
	Writer     io.Writer
}

// renderReport encodes rep in the requested format.
func renderReport(rep *analysis.Report, format string) ([]byte, error) {
	switch format {
	case "", "markdown", "md":
		return []byte(rep.Markdown()), nil
	case "json":
		b, err := utils.PrettyJSON(rep)
		if err != nil {
			return nil, fmt.Errorf("marshal output: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported --format: %s (use markdown|json|table)", format)
	}
}

// formatAndWriteOutput prints rep, or writes it to opts.OutputPath when set.
func formatAndWriteOutput(rep *analysis.Report, opts outputOptions) error {
	w := opts.Writer
	if w == nil {
		w = io.Discard
	}
	if opts.Format == "table" {
		if opts.OutputPath != "" {
			return fmt.Errorf("--format table prints to the terminal; use markdown or json with --output")
		}
		writeTable(w, rep)
		return nil
	}
	b, err := renderReport(rep, opts.Format)
	if err != nil {
		return err
	}
	if opts.OutputPath == "" {
		fmt.Fprintln(w, string(b))
		return nil
	}
	if err := utils.EnsureDir(filepath.Dir(opts.OutputPath)); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := utils.SafeWriteFile(opts.OutputPath, b); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if !opts.Quiet {
		fmt.Fprintf(w, "✓ Wrote analysis to %s\n", opts.OutputPath)
	}
	return nil
}

// writeTable renders the column summary and insights as terminal tables.
func writeTable(w io.Writer, rep *analysis.Report) {
	heading := color.New(color.FgYellow, color.Bold)
	heading.Fprintf(w, "%s: %d rows × %d columns\n", rep.Name, rep.Rows, len(rep.Cols))
	if rep.Dropped > 0 {
		fmt.Fprintf(w, "(%d rows with missing values dropped)\n", rep.Dropped)
	}

	heading.Fprintln(w, "\nColumns")
	cols := tablewriter.NewWriter(w)
	cols.SetHeader([]string{"Column", "Kind", "Unit", "Non-null", "Missing", "Unique", "Min", "Max", "Mean"})
	cols.SetAutoWrapText(false)
	for _, c := range rep.Cols {
		row := []string{c.Name, c.Kind.String(), c.Unit, strconv.Itoa(c.NonNull), strconv.Itoa(c.Missing), strconv.Itoa(c.Unique), "", "", ""}
		if c.NonNull > 0 && c.Kind == table.Numeric {
			row[6] = strconv.FormatFloat(c.Min, 'g', 6, 64)
			row[7] = strconv.FormatFloat(c.Max, 'g', 6, 64)
			row[8] = strconv.FormatFloat(c.Mean, 'g', 6, 64)
		}
		cols.Append(row)
	}
	cols.Render()

	heading.Fprintln(w, "\nKey Insights")
	ins := tablewriter.NewWriter(w)
	ins.SetHeader([]string{"Insight", "Result"})
	ins.SetAutoWrapText(false)
	muted := color.New(color.Faint)
	for _, l := range rep.Insights.Lines() {
		text := l.Text
		if !l.Applicable {
			text = muted.Sprint(text)
		}
		ins.Append([]string{l.Title, text})
	}
	ins.Render()
}
