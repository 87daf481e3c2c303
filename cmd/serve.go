package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insights-explorer/internal/charts"
	"github.com/KaramelBytes/insights-explorer/internal/dashboard"
	"github.com/KaramelBytes/insights-explorer/internal/utils"
)

var (
	srvLoad loadFlags
	srvAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve [files...]",
	Short: "Start the web dashboard, optionally preloading datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := dashboardOptions()
		if err != nil {
			return err
		}
		srv, err := dashboard.New(opt, logger)
		if err != nil {
			return err
		}
		files, err := utils.ExpandGlobs(args)
		if err != nil {
			return err
		}
		for _, path := range files {
			t, err := loadTable(path, opt.Load)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %s: %v\n", filepath.Base(path), err)
				continue
			}
			ds, _ := srv.Store().Put(t.Name, t)
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Loaded %s as /datasets/%s\n", filepath.Base(path), ds.ID)
		}

		addr := currentConfig().ListenAddr
		if cmd.Flags().Changed("addr") {
			addr = srvAddr
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "Dashboard at http://%s (Ctrl+C to stop)\n", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

// dashboardOptions maps configuration and loading flags onto dashboard options.
func dashboardOptions() (dashboard.Options, error) {
	c := currentConfig()
	lopt, err := srvLoad.options()
	if err != nil {
		return dashboard.Options{}, err
	}
	opt := dashboard.DefaultOptions()
	opt.MaxUploadBytes = int64(c.MaxUploadMB) << 20
	opt.MaxDatasets = c.MaxDatasets
	opt.PreviewRows = c.PreviewRows
	opt.HistogramBins = c.HistogramBins
	opt.ChartSize = charts.Size{Width: c.ChartWidth, Height: c.ChartHeight}
	opt.Load = lopt
	return opt, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	srvLoad.register(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
}
