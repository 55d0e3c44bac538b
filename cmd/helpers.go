package cmd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/sheetdash/internal/dashboard"
	"github.com/KaramelBytes/sheetdash/internal/table"
)

// parseFilters turns repeated "Column=a,b" flags into a FilterSpec. Values
// for the same column accumulate across flags. A value containing a comma is
// written in double quotes: Ciudad="Lima, Perú",Quito.
func parseFilters(flags []string) (table.FilterSpec, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	spec := table.FilterSpec{}
	for _, f := range flags {
		col, vals, ok := strings.Cut(f, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid --filter %q (use %s)", f, filterSyntax)
		}
		r := csv.NewReader(strings.NewReader(vals))
		r.TrimLeadingSpace = true
		r.LazyQuotes = true
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("invalid --filter %q: %w", f, err)
		}
		for _, v := range rec {
			if v = strings.TrimSpace(v); v != "" {
				spec[col] = append(spec[col], v)
			}
		}
	}
	return spec, nil
}

const filterSyntax = `Column=value[,value...]; quote values with commas`

// buildState assembles a dashboard state from command flags.
func buildState(sheet string, filters []string, cat, num string) (dashboard.State, error) {
	spec, err := parseFilters(filters)
	if err != nil {
		return dashboard.State{}, err
	}
	s := dashboard.State{Sheet: sheet}.WithCategorical(cat).WithNumeric(num)
	for _, col := range spec.Active() {
		s = s.WithFilter(col, spec[col]...)
	}
	return s, nil
}

// warnDroppedFilters reports requested filters the view did not apply.
func warnDroppedFilters(requested dashboard.State, v *dashboard.View) {
	for _, col := range requested.Filters.Active() {
		if _, ok := v.State.Filters[col]; !ok {
			fmt.Fprintf(os.Stderr, "⚠ Ignoring filter on %q: not a filterable column of sheet %q\n", col, v.State.Sheet)
		}
	}
}
