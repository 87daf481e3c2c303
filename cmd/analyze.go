package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insights-explorer/internal/analysis"
)

var (
	anaLoad       loadFlags
	anaOutputPath string
	anaFormat     string
	anaSampleRows int
	anaDropNA     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a CSV/TSV/XLSX file and report its key insights",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		lopt, err := anaLoad.options()
		if err != nil {
			return err
		}
		aopt := analysis.DefaultOptions()
		aopt.SampleRows = currentConfig().PreviewRows
		if cmd.Flags().Changed("sample-rows") {
			aopt.SampleRows = anaSampleRows
		}
		aopt.DropMissing = anaDropNA

		t, err := loadTable(path, lopt)
		if err != nil {
			return err
		}
		start := time.Now()
		rep := analysis.Run(t, aopt)
		logger.Debug().Str("file", path).Dur("took", time.Since(start)).Msg("analysis complete")

		return formatAndWriteOutput(rep, outputOptions{
			Format:     anaFormat,
			OutputPath: anaOutputPath,
			Writer:     cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaLoad.register(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write analysis")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "markdown", "output format: markdown|json|table")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include (default from config)")
	analyzeCmd.Flags().BoolVar(&anaDropNA, "drop-na", false, "drop rows with any missing value before computing insights")
}
