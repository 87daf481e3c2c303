package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insights-explorer/internal/analysis"
	"github.com/KaramelBytes/insights-explorer/internal/parser"
	"github.com/KaramelBytes/insights-explorer/internal/utils"
)

var (
	abLoad       loadFlags
	abOutDir     string
	abFormat     string
	abSampleRows int
	abDropNA     bool
	abQuiet      bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX files with progress and optional output directory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := utils.ExpandGlobs(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		lopt, err := abLoad.options()
		if err != nil {
			return err
		}
		aopt := analysis.DefaultOptions()
		aopt.SampleRows = currentConfig().PreviewRows
		if cmd.Flags().Changed("sample-rows") {
			aopt.SampleRows = abSampleRows
		}
		aopt.DropMissing = abDropNA

		var ext string
		switch abFormat {
		case "", "markdown", "md":
			ext = ".insights.md"
		case "json":
			ext = ".insights.json"
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|json)", abFormat)
		}
		if abOutDir != "" {
			if err := utils.EnsureDir(abOutDir); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		total, failed := len(files), 0
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			if err := analyzeOne(cmd, path, lopt, aopt, ext); err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %s: %v\n", filepath.Base(path), err)
				logger.Debug().Err(err).Str("file", path).Msg("batch item failed")
			}
		}
		if !abQuiet {
			fmt.Fprintf(out, "✓ Analyzed %d of %d files\n", total-failed, total)
		}
		if failed == total {
			return fmt.Errorf("all %d files failed", total)
		}
		return nil
	},
}

func analyzeOne(cmd *cobra.Command, path string, lopt parser.Options, aopt analysis.Options, ext string) error {
	t, err := loadTable(path, lopt)
	if err != nil {
		return err
	}
	rep := analysis.Run(t, aopt)
	if abOutDir == "" {
		if abQuiet {
			return nil
		}
		return formatAndWriteOutput(rep, outputOptions{Format: abFormat, Writer: cmd.OutOrStdout()})
	}
	base := filepath.Base(path)
	safe := utils.Slug(strings.TrimSuffix(base, filepath.Ext(base)))
	if safe == "" {
		safe = "dataset"
	}
	if abLoad.sheet != "" {
		if ss := utils.Slug(abLoad.sheet); ss != "" {
			safe += "__sheet-" + ss
		}
	}
	outFile := utils.UniquePath(abOutDir, safe, ext)
	return formatAndWriteOutput(rep, outputOptions{
		Format:     abFormat,
		OutputPath: outFile,
		Quiet:      abQuiet,
		Writer:     cmd.OutOrStdout(),
	})
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abLoad.register(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory to write one report per file (prints to stdout if omitted)")
	analyzeBatchCmd.Flags().StringVar(&abFormat, "format", "markdown", "report format: markdown|json")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 5, "number of sample rows to include (default from config)")
	analyzeBatchCmd.Flags().BoolVar(&abDropNA, "drop-na", false, "drop rows with any missing value before computing insights")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
