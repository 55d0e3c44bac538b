package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/KaramelBytes/sheetdash/internal/dashboard"
	"github.com/KaramelBytes/sheetdash/internal/utils"
	"github.com/KaramelBytes/sheetdash/internal/workbook"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	expSheet      string
	expFilters    []string
	expOutputPath string
	expAll        bool
	expDir        string
	expQuiet      bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered rows of a sheet as <sheet>_filtrado.csv",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if expAll && (expSheet != "" || expOutputPath != "") {
			return fmt.Errorf("--all cannot be combined with --sheet or --output")
		}
		state, err := buildState(expSheet, expFilters, "", "")
		if err != nil {
			return err
		}
		wb, err := openWorkbook()
		if err != nil {
			return err
		}
		defer wb.Close()

		if expAll {
			return exportAll(cmd, wb, state)
		}
		v, err := dashboard.Render(wb, state)
		if err != nil {
			return err
		}
		warnDroppedFilters(state, v)
		art, err := v.Export()
		if err != nil {
			return err
		}
		path := expOutputPath
		if path == "" {
			path = filepath.Join(expDir, art.Filename)
		}
		if err := utils.SafeWriteFile(path, art.Data); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d rows of %q to %s\n", v.Summary.RowCount, v.State.Sheet, path)
		return nil
	},
}

// exportAll writes one file per sheet. Sheets are read concurrently; the
// requested filters apply to every sheet on which they are offered.
func exportAll(cmd *cobra.Command, wb *workbook.Workbook, state dashboard.State) error {
	names := wb.SheetNames()
	if len(names) == 0 {
		return dashboard.ErrNoSheets
	}
	out := cmd.OutOrStdout()
	var (
		mu   sync.Mutex
		done int
	)
	var g errgroup.Group
	g.SetLimit(4)
	for _, name := range names {
		name := name
		g.Go(func() error {
			st := dashboard.State{Sheet: name, Filters: state.Filters.Clone()}
			v, err := dashboard.Render(wb, st)
			if err != nil {
				return fmt.Errorf("sheet %q: %w", name, err)
			}
			art, err := v.Export()
			if err != nil {
				return fmt.Errorf("sheet %q: %w", name, err)
			}
			path := filepath.Join(expDir, art.Filename)
			if err := utils.SafeWriteFile(path, art.Data); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			mu.Lock()
			done++
			if !expQuiet {
				fmt.Fprintf(out, "[%d/%d] %s: %d rows -> %s\n", done, len(names), name, v.Summary.RowCount, path)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Exported %d sheets to %s\n", len(names), displayDir(expDir))
	return nil
}

func displayDir(dir string) string {
	if dir == "" || dir == "." {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return dir
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&expSheet, "sheet", "s", "", "sheet name (default: first sheet)")
	exportCmd.Flags().StringArrayVarP(&expFilters, "filter", "f", nil, "filter as "+filterSyntax+" (repeatable)")
	exportCmd.Flags().StringVarP(&expOutputPath, "output", "o", "", "output path (default: <dir>/<sheet>_filtrado.csv)")
	exportCmd.Flags().StringVarP(&expDir, "dir", "d", ".", "directory for default-named exports")
	exportCmd.Flags().BoolVar(&expAll, "all", false, "export every sheet")
	exportCmd.Flags().BoolVarP(&expQuiet, "quiet", "q", false, "suppress per-sheet progress with --all")
}
