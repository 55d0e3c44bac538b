package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/sheetdash/internal/analysis"
	"github.com/KaramelBytes/sheetdash/internal/charts"
	"github.com/KaramelBytes/sheetdash/internal/dashboard"
	"github.com/KaramelBytes/sheetdash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	chKind       string
	chSheet      string
	chFilters    []string
	chColumn     string
	chOutputPath string
	chFormat     string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the categorical, numeric or map chart of a sheet to an image file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		kind := strings.ToLower(strings.TrimSpace(chKind))
		var cat, num string
		switch kind {
		case "categorical":
			cat = chColumn
		case "numeric":
			num = chColumn
		case "map":
		default:
			return fmt.Errorf("invalid --kind: %s (use categorical, numeric or map)", chKind)
		}
		opt := charts.Options{Format: c.ChartFormat, Width: c.ChartWidthPx, Height: c.ChartHeightPx}
		if chFormat != "" {
			opt.Format = strings.ToLower(chFormat)
		}
		colour := c.ColorSecondary
		if kind == "numeric" {
			colour = c.ColorAccent
		}
		if opt.Color, err = charts.ParseHex(colour); err != nil {
			return err
		}

		state, err := buildState(chSheet, chFilters, cat, num)
		if err != nil {
			return err
		}
		wb, err := openWorkbook()
		if err != nil {
			return err
		}
		defer wb.Close()
		v, err := dashboard.Render(wb, state)
		if err != nil {
			return err
		}
		warnDroppedFilters(state, v)

		var img []byte
		var column string
		switch kind {
		case "categorical":
			if !v.HasCategorical() {
				fmt.Fprintf(cmd.OutOrStdout(), "⚠ Sheet %q has no categorical columns; nothing to draw\n", v.State.Sheet)
				return nil
			}
			column = v.State.Categorical
			img, err = charts.Histogram(v.Frequencies, column, opt)
		case "numeric":
			if !v.HasNumeric() {
				fmt.Fprintf(cmd.OutOrStdout(), "⚠ Sheet %q has no numeric columns; nothing to draw\n", v.State.Sheet)
				return nil
			}
			column = v.State.Numeric
			var nums []float64
			if nums, err = analysis.Numbers(v.Table, column); err == nil {
				img, err = charts.BoxPlot(nums, column, opt)
			}
		case "map":
			if !v.Geo {
				fmt.Fprintf(cmd.OutOrStdout(), "⚠ Sheet %q has no Latitud/Longitud columns; nothing to draw\n", v.State.Sheet)
				return nil
			}
			column = "mapa"
			img, err = charts.Scatter(v.Points, opt)
		}
		if err != nil {
			return err
		}
		if kind != "map" && chColumn != "" && column != chColumn {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %q is not a %s column; drawing %q instead\n", chColumn, kind, column)
		}

		path := chOutputPath
		if path == "" {
			path = fmt.Sprintf("%s_%s.%s", v.State.Sheet, column, opt.Format)
			path = filepath.Clean(strings.ReplaceAll(path, string(filepath.Separator), "_"))
		}
		if err := utils.SafeWriteFile(path, img); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s chart of %q to %s\n", kind, v.State.Sheet, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVarP(&chKind, "kind", "k", "categorical", "chart kind: categorical | numeric | map")
	chartCmd.Flags().StringVarP(&chSheet, "sheet", "s", "", "sheet name (default: first sheet)")
	chartCmd.Flags().StringArrayVarP(&chFilters, "filter", "f", nil, "filter as "+filterSyntax+" (repeatable)")
	chartCmd.Flags().StringVarP(&chColumn, "column", "c", "", "column to draw (default: first column of the kind)")
	chartCmd.Flags().StringVarP(&chOutputPath, "output", "o", "", "output image path (default: <sheet>_<column>.<format>)")
	chartCmd.Flags().StringVar(&chFormat, "format", "", "image format: png | svg (default from config)")
}
