package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insights-explorer/internal/charts"
	"github.com/KaramelBytes/insights-explorer/internal/clean"
	"github.com/KaramelBytes/insights-explorer/internal/insights"
	"github.com/KaramelBytes/insights-explorer/internal/table"
	"github.com/KaramelBytes/insights-explorer/internal/utils"
)

var (
	chLoad   loadFlags
	chOutDir string
	chColumn string
	chBins   int
	chDropNA bool
)

var chartsCmd = &cobra.Command{
	Use:   "charts <file>",
	Short: "Render histogram, category, correlation and trend charts as PNG files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lopt, err := chLoad.options()
		if err != nil {
			return err
		}
		t, err := loadTable(args[0], lopt)
		if err != nil {
			return err
		}
		if chDropNA {
			var dropped int
			t, dropped = clean.DropMissing(t)
			logger.Debug().Int("dropped", dropped).Msg("dropped incomplete rows")
		}
		c := currentConfig()
		size := charts.Size{Width: c.ChartWidth, Height: c.ChartHeight}
		bins := c.HistogramBins
		if cmd.Flags().Changed("bins") {
			if chBins <= 0 {
				return fmt.Errorf("--bins must be positive, got %d", chBins)
			}
			bins = chBins
		}
		if err := utils.EnsureDir(chOutDir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		nums, cats := t.NumericColumns(), t.CategoricalColumns()
		if chColumn != "" {
			col, ok := t.Column(chColumn)
			if !ok {
				return fmt.Errorf("unknown column: %s", chColumn)
			}
			nums, cats = nil, nil
			switch col.Kind {
			case table.Numeric:
				nums = []*table.Column{col}
			case table.Categorical:
				cats = []*table.Column{col}
			default:
				return fmt.Errorf("column %s is %s; charts need numeric or categorical", col.Name, col.Kind)
			}
		}

		out := cmd.OutOrStdout()
		written := 0
		emit := func(name string, render func(io.Writer) error) error {
			var buf bytes.Buffer
			if err := render(&buf); err != nil {
				if errors.Is(err, charts.ErrNoData) {
					fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: skipped %s: %v\n", name, err)
					return nil
				}
				return err
			}
			path := filepath.Join(chOutDir, name)
			if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote %s\n", path)
			written++
			return nil
		}

		for _, col := range nums {
			err := emit("histogram_"+chartSlug(col.Name)+".png", func(w io.Writer) error {
				return charts.RenderHistogram(w, col.Name, charts.Histogram(col.Nums, bins), size)
			})
			if err != nil {
				return err
			}
		}
		for _, col := range cats {
			err := emit("categories_"+chartSlug(col.Name)+".png", func(w io.Writer) error {
				return charts.RenderCategoryBars(w, col.Name, charts.ValueCounts(col), size)
			})
			if err != nil {
				return err
			}
		}
		if chColumn == "" {
			err := emit("correlation.png", func(w io.Writer) error {
				return charts.RenderHeatmap(w, insights.Correlations(t), size)
			})
			if err != nil {
				return err
			}
			if tr, ok := insights.Compute(t).Trend.Get(); ok {
				err := emit("trend.png", func(w io.Writer) error {
					return charts.RenderTrend(w, tr, size)
				})
				if err != nil {
					return err
				}
			}
		}
		if written == 0 {
			return fmt.Errorf("no charts could be rendered for %s", filepath.Base(args[0]))
		}
		return nil
	},
}

func chartSlug(name string) string {
	if s := utils.Slug(name); s != "" {
		return s
	}
	return "column"
}

func init() {
	rootCmd.AddCommand(chartsCmd)
	chLoad.register(chartsCmd)
	chartsCmd.Flags().StringVar(&chOutDir, "out-dir", "charts", "directory to write PNG files into")
	chartsCmd.Flags().StringVar(&chColumn, "column", "", "render only this column's distribution")
	chartsCmd.Flags().IntVar(&chBins, "bins", charts.DefaultBins, "histogram bins (default from config)")
	chartsCmd.Flags().BoolVar(&chDropNA, "drop-na", false, "drop rows with any missing value before charting")
}
