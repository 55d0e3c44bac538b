package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sheetsCounts bool

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "List the sheets of the workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := openWorkbook()
		if err != nil {
			return err
		}
		defer wb.Close()

		out := cmd.OutOrStdout()
		names := wb.SheetNames()
		if len(names) == 0 {
			fmt.Fprintln(out, "No sheets found")
			return nil
		}
		for _, name := range names {
			if !sheetsCounts {
				fmt.Fprintln(out, name)
				continue
			}
			t, err := wb.Table(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\t%d rows\t%d columns\n", name, t.Len(), t.Width())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sheetsCmd)
	sheetsCmd.Flags().BoolVar(&sheetsCounts, "counts", false, "also print row and column counts (reads every sheet)")
}
