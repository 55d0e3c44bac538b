package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"
)

// resetFlags restores every flag to its default so state from a previous
// invocation does not leak into the next one.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd is a helper to execute the root command with args and return stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	cfg = nil
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// setupWorkbook isolates HOME and writes a two-sheet workbook.
func setupWorkbook(t *testing.T) (home, path string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Projects"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	rows := [][]any{
		{"Name ", "Region", "Budget"},
		{"A", "North", 100},
		{"B", "South", 200},
		{},
		{"C", "North", 150},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Projects", cell, &r); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	if _, err := f.NewSheet("Sitios"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	_ = f.SetSheetRow("Sitios", "A1", &[]any{"Sitio", "Latitud", "Longitud"})
	_ = f.SetSheetRow("Sitios", "A2", &[]any{"Escuela", 14.6, -90.5})
	_ = f.SetSheetRow("Sitios", "A3", &[]any{"Huerto", 9.9, -84.1})

	path = filepath.Join(home, "dataset.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return home, path
}

func TestCLI_SheetsAndSummary(t *testing.T) {
	_, wb := setupWorkbook(t)

	out := runCmd(t, "sheets", "-w", wb, "--counts")
	if !strings.Contains(out, "Projects\t3 rows\t3 columns") || !strings.Contains(out, "Sitios\t2 rows\t3 columns") {
		t.Fatalf("unexpected sheets output:\n%s", out)
	}

	out = runCmd(t, "summary", "-w", wb, "-f", "Region=North")
	for _, want := range []string{"Sheet: Projects", "Rows: 2", "Columns: 3", "Null cells: 0", "- Region ∈ {North}"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}

	out = runCmd(t, "summary", "-w", wb, "--sheet", "Projects", "--json")
	if !strings.Contains(out, `"row_count": 3`) {
		t.Fatalf("json summary should be unfiltered:\n%s", out)
	}
}

func TestCLI_ExportFiltered(t *testing.T) {
	home, wb := setupWorkbook(t)
	dir := filepath.Join(home, "out")

	runCmd(t, "export", "-w", wb, "-s", "Projects", "-f", "Region=North", "-d", dir)
	b, err := os.ReadFile(filepath.Join(dir, "Projects_filtrado.csv"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if got := string(b); got != "Name,Region,Budget\nA,North,100\nC,North,150\n" {
		t.Fatalf("export = %q", got)
	}

	custom := filepath.Join(home, "vacio.csv")
	runCmd(t, "export", "-w", wb, "-f", "Region=West", "-o", custom)
	b, err = os.ReadFile(custom)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(b) != "Name,Region,Budget\n" {
		t.Fatalf("empty export should be header only, got %q", b)
	}
}

func TestCLI_ExportAll(t *testing.T) {
	home, wb := setupWorkbook(t)
	dir := filepath.Join(home, "all")
	out := runCmd(t, "export", "-w", wb, "--all", "-d", dir)
	if !strings.Contains(out, "Exported 2 sheets") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	for _, name := range []string{"Projects_filtrado.csv", "Sitios_filtrado.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	if _, err := execCmd("export", "-w", wb, "--all", "-s", "Projects"); err == nil {
		t.Fatalf("expected --all with --sheet to fail")
	}
}

func TestCLI_Chart(t *testing.T) {
	home, wb := setupWorkbook(t)

	png := filepath.Join(home, "region.png")
	runCmd(t, "chart", "-w", wb, "--kind", "categorical", "--column", "Region", "-o", png)
	b, err := os.ReadFile(png)
	if err != nil || !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("expected png, err=%v", err)
	}

	svg := filepath.Join(home, "budget.svg")
	runCmd(t, "chart", "-w", wb, "-k", "numeric", "--format", "svg", "-o", svg)
	b, err = os.ReadFile(svg)
	if err != nil || !strings.Contains(string(b), "<svg") {
		t.Fatalf("expected svg, err=%v", err)
	}

	out := runCmd(t, "chart", "-w", wb, "-k", "map", "-o", filepath.Join(home, "map.png"))
	if !strings.Contains(out, "nothing to draw") {
		t.Fatalf("Projects has no coordinates, got:\n%s", out)
	}
	runCmd(t, "chart", "-w", wb, "-k", "map", "-s", "Sitios", "-o", filepath.Join(home, "map.png"))
	if _, err := os.Stat(filepath.Join(home, "map.png")); err != nil {
		t.Fatalf("map not written: %v", err)
	}

	if _, err := execCmd("chart", "-w", wb, "-k", "pie"); err == nil {
		t.Fatalf("expected invalid kind error")
	}
}

func TestCLI_Errors(t *testing.T) {
	home, wb := setupWorkbook(t)
	if _, err := execCmd("summary", "-w", filepath.Join(home, "missing.xlsx")); err == nil {
		t.Fatalf("expected error for missing workbook")
	}
	if _, err := execCmd("summary", "-w", wb, "-s", "Nope"); err == nil || !strings.Contains(err.Error(), "sheet not found") {
		t.Fatalf("expected sheet not found, got %v", err)
	}
	if _, err := execCmd("summary", "-w", wb, "-f", "=North"); err == nil {
		t.Fatalf("expected invalid filter error")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	runCmd(t, "config", "set", "chart_format", "svg")
	runCmd(t, "config", "set", "title", "Mi tablero")
	if _, err := execCmd("config", "set", "color_accent", "naranja"); err == nil {
		t.Fatalf("expected invalid colour error")
	}
	out := runCmd(t, "config", "show")
	for _, want := range []string{"chart_format: svg", "title: Mi tablero", "listen_addr: 127.0.0.1:8501", "color_primary: #003366"} {
		if !strings.Contains(out, want) {
			t.Fatalf("config show missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(home, ".sheetdash", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
}

func TestParseFilters(t *testing.T) {
	spec, err := parseFilters([]string{"Region=North, South", "Region=East", "Name=A"})
	if err != nil {
		t.Fatalf("parseFilters: %v", err)
	}
	if got := strings.Join(spec["Region"], "|"); got != "North|South|East" {
		t.Fatalf("Region = %s", got)
	}
	if len(spec["Name"]) != 1 {
		t.Fatalf("Name = %v", spec["Name"])
	}
	if _, err := parseFilters([]string{"Region"}); err == nil {
		t.Fatalf("expected error without '='")
	}

	spec, err = parseFilters([]string{`Ciudad="Lima, Perú", Quito`, "Ciudad="})
	if err != nil {
		t.Fatalf("parseFilters quoted: %v", err)
	}
	if got := strings.Join(spec["Ciudad"], "|"); got != "Lima, Perú|Quito" {
		t.Fatalf("Ciudad = %s", got)
	}
}
