package cmd

import (
	"fmt"

	"github.com/KaramelBytes/sheetdash/internal/analysis"
	"github.com/KaramelBytes/sheetdash/internal/dashboard"
	"github.com/KaramelBytes/sheetdash/internal/table"
	"github.com/KaramelBytes/sheetdash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	sumSheet      string
	sumFilters    []string
	sumJSON       bool
	sumOutputPath string
	sumSampleRows int
	sumTopValues  int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize a (filtered) sheet: counts, column kinds and distributions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := buildState(sumSheet, sumFilters, "", "")
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

		opt := analysis.DefaultOptions()
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = sumSampleRows
		}
		if sumTopValues > 0 {
			opt.TopValues = sumTopValues
		}
		base, err := wb.Table(v.State.Sheet)
		if err != nil {
			return err
		}
		// non-nil even when the sheet offers no filters
		opt.Offered = append([]table.FilterOption{}, table.FilterOptions(base)...)
		rep, err := analysis.Profile(v.State.Sheet, v.Table, v.Schema, v.State.Filters, opt)
		if err != nil {
			return err
		}

		var data []byte
		if sumJSON {
			if data, err = utils.PrettyJSON(rep); err != nil {
				return err
			}
		} else {
			data = []byte(rep.Markdown())
		}
		if sumOutputPath != "" {
			if err := utils.SafeWriteFile(sumOutputPath, data); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary of %q to %s\n", v.State.Sheet, sumOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVarP(&sumSheet, "sheet", "s", "", "sheet name (default: first sheet)")
	summaryCmd.Flags().StringArrayVarP(&sumFilters, "filter", "f", nil, "filter as "+filterSyntax+" (repeatable)")
	summaryCmd.Flags().BoolVar(&sumJSON, "json", false, "print the summary as JSON instead of Markdown")
	summaryCmd.Flags().StringVarP(&sumOutputPath, "output", "o", "", "optional path to write the summary")
	summaryCmd.Flags().IntVar(&sumSampleRows, "sample-rows", 5, "number of sample rows to include")
	summaryCmd.Flags().IntVar(&sumTopValues, "top", 8, "categories listed per categorical column")
}
