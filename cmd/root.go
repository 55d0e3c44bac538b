package cmd

import (
	"fmt"
	"log"
	"os"

	cfgpkg "github.com/KaramelBytes/sheetdash/internal/config"
	"github.com/KaramelBytes/sheetdash/internal/dashboard"
	"github.com/KaramelBytes/sheetdash/internal/workbook"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile      string
	debug        bool
	flagWorkbook string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "sheetdash",
	Short: "SheetDash: explore a spreadsheet workbook as an interactive dashboard",
	Long: `SheetDash loads a workbook, lets you pick a sheet, filter rows by column values,
view summary counts and distribution charts, plot Latitud/Longitud columns on a map,
and download the filtered rows as CSV. Run "sheetdash serve" for the web dashboard or
use the sheets/summary/chart/export commands from a terminal.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.sheetdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVarP(&flagWorkbook, "workbook", "w", "", "workbook path (overrides config)")
}

func loadConfig() {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
	if rootCmd.PersistentFlags().Changed("workbook") && flagWorkbook != "" {
		cfg.WorkbookPath = flagWorkbook
	}
	dashboard.Debug = debug
	if debug {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	}
}

// currentConfig returns the loaded configuration, loading it on demand.
func currentConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// openWorkbook opens the configured workbook. A missing file is fatal for
// every command that needs data.
func openWorkbook() (*workbook.Workbook, error) {
	c, err := currentConfig()
	if err != nil {
		return nil, err
	}
	wb, err := workbook.Open(c.WorkbookPath)
	if err != nil {
		return nil, err
	}
	return wb, nil
}
