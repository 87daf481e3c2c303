package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const salesCSV = `day,region,amount,units
2024-01-01,north,10.5,3
2024-01-01,south,12,4
2024-01-02,north,9,2
2024-01-03,north,,5
2024-01-03,east,30,9
2024-01-04,north,11,3
`

// resetFlags restores every flag to its default so invocations do not leak state.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns stdout, stderr and the error.
func execCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// runCmd is a helper to execute the root command with args, failing the test on error.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestCLI_AnalyzeJSON(t *testing.T) {
	dir := isolateHome(t)
	csv := writeFile(t, dir, "sales.csv", salesCSV)

	out := runCmd(t, "analyze", csv, "--format", "json")
	var rep map[string]any
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("analyze output is not JSON: %v\n%s", err, out)
	}
	ins, ok := rep["insights"].(map[string]any)
	if !ok {
		t.Fatalf("missing insights object: %v", rep)
	}
	for _, k := range []string{"correlation", "missing", "imbalance", "outliers", "trend"} {
		if _, ok := ins[k]; !ok {
			t.Fatalf("insights JSON missing %q: %v", k, ins)
		}
	}
	if got := rep["rows"].(float64); got != 6 {
		t.Fatalf("rows = %v, want 6", got)
	}
}

func TestCLI_AnalyzeDropNAWritesMarkdown(t *testing.T) {
	dir := isolateHome(t)
	csv := writeFile(t, dir, "sales.csv", salesCSV)
	outPath := filepath.Join(dir, "out", "sales.md")

	out := runCmd(t, "analyze", csv, "--drop-na", "-o", outPath)
	if !strings.Contains(out, "✓ Wrote analysis to") {
		t.Fatalf("expected confirmation, got %q", out)
	}
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	md := string(b)
	for _, want := range []string{"[KEY INSIGHTS]", "Most Correlated Feature Pair", "dropped 1 rows"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestCLI_AnalyzeTableFormat(t *testing.T) {
	dir := isolateHome(t)
	csv := writeFile(t, dir, "sales.csv", salesCSV)
	out := runCmd(t, "analyze", csv, "--format", "table")
	for _, want := range []string{"Key Insights", "Time Trend", "amount"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_AnalyzeRejectsBadFlags(t *testing.T) {
	dir := isolateHome(t)
	csv := writeFile(t, dir, "sales.csv", salesCSV)
	if _, _, err := execCmd(t, "analyze", csv, "--delimiter", "|"); err == nil {
		t.Fatalf("expected error for unsupported delimiter")
	}
	if _, _, err := execCmd(t, "analyze", csv, "--format", "yaml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestCLI_AnalyzeBatchContinuesPastFailures(t *testing.T) {
	home := isolateHome(t)
	in := filepath.Join(home, "in")
	if err := os.MkdirAll(in, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, in, "a.csv", salesCSV)
	writeFile(t, in, "b.csv", "x,y\n1,2\n3,4\n5,7\n")
	writeFile(t, in, "broken.xlsx", "not a workbook")
	outDir := filepath.Join(home, "reports")

	out, errOut, err := execCmd(t, "analyze-batch", filepath.Join(in, "*"), "--out-dir", outDir)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if !strings.Contains(out, "[3/3] Processing") || !strings.Contains(out, "Analyzed 2 of 3 files") {
		t.Fatalf("unexpected progress output:\n%s", out)
	}
	if !strings.Contains(errOut, "⚠ Warning: broken.xlsx") {
		t.Fatalf("expected warning for broken file, got %q", errOut)
	}
	for _, name := range []string{"a.insights.md", "b.insights.md"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}

	// A second run must not overwrite earlier reports.
	runCmd(t, "analyze-batch", filepath.Join(in, "a.csv"), "--out-dir", outDir, "--format", "json", "--quiet")
	runCmd(t, "analyze-batch", filepath.Join(in, "a.csv"), "--out-dir", outDir, "--format", "json", "--quiet")
	if _, err := os.Stat(filepath.Join(outDir, "a__2.insights.json")); err != nil {
		t.Fatalf("expected de-duplicated report name: %v", err)
	}
}

func TestCLI_AnalyzeBatchAllFailed(t *testing.T) {
	home := isolateHome(t)
	bad := writeFile(t, home, "broken.xlsx", "nope")
	if _, _, err := execCmd(t, "analyze-batch", bad); err == nil {
		t.Fatalf("expected error when every file fails")
	}
	if _, _, err := execCmd(t, "analyze-batch", filepath.Join(home, "*.nothing")); err == nil {
		t.Fatalf("expected error when nothing matches")
	}
}

func TestCLI_ChartsWritesPNGs(t *testing.T) {
	home := isolateHome(t)
	csv := writeFile(t, home, "sales.csv", salesCSV)
	outDir := filepath.Join(home, "charts")

	runCmd(t, "charts", csv, "--out-dir", outDir, "--bins", "5")
	for _, name := range []string{
		"histogram_amount.png", "histogram_units.png", "categories_region.png", "correlation.png", "trend.png",
	} {
		b, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
		if !bytes.HasPrefix(b, []byte("\x89PNG")) {
			t.Fatalf("%s is not a PNG", name)
		}
	}

	single := filepath.Join(home, "single")
	runCmd(t, "charts", csv, "--out-dir", single, "--column", "region")
	entries, err := os.ReadDir(single)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "categories_region.png" {
		t.Fatalf("unexpected charts for single column: %v", entries)
	}

	if _, _, err := execCmd(t, "charts", csv, "--out-dir", single, "--column", "nope"); err == nil {
		t.Fatalf("expected error for unknown column")
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolateHome(t)
	chdir(t, home)

	runCmd(t, "config", "set", "histogram_bins", "12")
	if _, err := os.Stat(filepath.Join(home, ".insights", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "histogram_bins: 12") {
		t.Fatalf("config show missing saved value:\n%s", out)
	}
	if _, _, err := execCmd(t, "config", "set", "histogram_bins", "zero"); err == nil {
		t.Fatalf("expected error for non-integer value")
	}
	if _, _, err := execCmd(t, "config", "set", "log_format", "xml"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, _, err := execCmd(t, "config", "set", "api_key", "x"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestDashboardOptionsFromConfig(t *testing.T) {
	isolateHome(t)
	resetFlags(rootCmd)
	cfg = nil
	opt, err := dashboardOptions()
	if err != nil {
		t.Fatal(err)
	}
	c := currentConfig()
	if opt.MaxUploadBytes != int64(c.MaxUploadMB)<<20 || opt.MaxDatasets != c.MaxDatasets {
		t.Fatalf("options = %+v", opt)
	}
	if !opt.Load.ParseDates {
		t.Fatalf("dates should be parsed by default")
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}
