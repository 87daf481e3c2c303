package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/insights-explorer/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Insights Explorer configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cfg
		if c == nil {
			loaded, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			c = loaded
		}
		w := cmd.OutOrStdout()
		for _, key := range cfgpkg.Keys {
			v, _ := configValue(c, key)
			fmt.Fprintf(w, "%s: %s\n", key, v)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Start from the file on disk so flag overrides are not persisted.
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func configValue(c *cfgpkg.Global, key string) (string, bool) {
	switch key {
	case "log_level":
		return c.LogLevel, true
	case "log_format":
		return c.LogFormat, true
	case "listen_addr":
		return c.ListenAddr, true
	case "max_upload_mb":
		return strconv.Itoa(c.MaxUploadMB), true
	case "max_datasets":
		return strconv.Itoa(c.MaxDatasets), true
	case "preview_rows":
		return strconv.Itoa(c.PreviewRows), true
	case "histogram_bins":
		return strconv.Itoa(c.HistogramBins), true
	case "max_rows":
		return strconv.Itoa(c.MaxRows), true
	case "chart_width":
		return strconv.Itoa(c.ChartWidth), true
	case "chart_height":
		return strconv.Itoa(c.ChartHeight), true
	}
	return "", false
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	var target *int
	switch key {
	case "log_level":
		c.LogLevel = val
		return nil
	case "log_format":
		c.LogFormat = val
		return nil
	case "listen_addr":
		c.ListenAddr = val
		return nil
	case "max_upload_mb":
		target = &c.MaxUploadMB
	case "max_datasets":
		target = &c.MaxDatasets
	case "preview_rows":
		target = &c.PreviewRows
	case "histogram_bins":
		target = &c.HistogramBins
	case "max_rows":
		target = &c.MaxRows
	case "chart_width":
		target = &c.ChartWidth
	case "chart_height":
		target = &c.ChartHeight
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("invalid int for %s: %v", key, val)
	}
	*target = i
	return nil
}
