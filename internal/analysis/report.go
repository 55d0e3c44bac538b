package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/sheetdash/internal/table"
	"github.com/montanaflynn/stats"
)

// Options controls what a Report includes.
type Options struct {
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// TopValues caps the categories listed per categorical column.
	TopValues int
	// Offered lists the filters the unfiltered sheet offers. When nil the
	// options are derived from the table passed to Profile.
	Offered []table.FilterOption
}

// DefaultOptions returns reasonable defaults for sheet reports.
func DefaultOptions() Options {
	return Options{SampleRows: 5, TopValues: 8}
}

// Report is a markdown-friendly summary of a filtered sheet.
type Report struct {
	Sheet    string               `json:"sheet"`
	Summary  table.Summary        `json:"summary"`
	Filters  table.FilterSpec     `json:"filters,omitempty"`
	Options  []table.FilterOption `json:"filter_options,omitempty"`
	Cols     []ColumnSummary      `json:"columns"`
	Samples  [][]string           `json:"samples,omitempty"`
	Warnings []string             `json:"warnings,omitempty"`
}

// ColumnSummary captures the inferred kind and statistics per column.
type ColumnSummary struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	NonNull    int    `json:"non_null"`
	Missing    int    `json:"missing"`
	Unique     int    `json:"unique"`
	Filterable bool   `json:"filterable"`
	// Numeric stats
	Min  float64     `json:"min,omitempty"`
	Max  float64     `json:"max,omitempty"`
	Mean float64     `json:"mean,omitempty"`
	Std  float64     `json:"std,omitempty"`
	Box  *BoxSummary `json:"box,omitempty"`
	// Categorical top values
	TopValues []CategoryCount `json:"top_values,omitempty"`
}

// Profile builds a report for an already filtered table. Filterability is
// judged against opt.Offered so that narrowing a column to one value does
// not hide its filter.
func Profile(sheet string, t *table.Table, schema Schema, spec table.FilterSpec, opt Options) (*Report, error) {
	offered := opt.Offered
	if offered == nil {
		offered = table.FilterOptions(t)
	}
	rep := &Report{
		Sheet:   sheet,
		Summary: table.Summarize(t),
		Filters: spec,
		Options: offered,
	}
	filterable := map[string]bool{}
	for _, o := range rep.Options {
		filterable[o.Column] = true
	}
	for _, ct := range schema.Columns {
		freq, err := Frequencies(t, ct.Name)
		if err != nil {
			return nil, err
		}
		s := ColumnSummary{Name: ct.Name, Kind: ct.Kind, Unique: len(freq), Filterable: filterable[ct.Name]}
		for _, f := range freq {
			s.NonNull += f.Count
		}
		s.Missing = t.Len() - s.NonNull
		switch ct.Kind {
		case KindNumeric:
			nums, err := Numbers(t, ct.Name)
			if err != nil {
				return nil, err
			}
			if len(nums) > 0 {
				s.Min, _ = stats.Min(nums)
				s.Max, _ = stats.Max(nums)
				s.Mean, _ = stats.Mean(nums)
				if len(nums) > 1 {
					s.Std, _ = stats.StandardDeviationSample(nums)
				}
				if b, ok, err := Box(t, ct.Name); err == nil && ok {
					s.Box = &b
				}
			}
		case KindCategorical:
			s.TopValues = TopValues(freq, opt.TopValues)
		}
		rep.Cols = append(rep.Cols, s)
	}
	for i := 0; i < t.Len() && i < opt.SampleRows; i++ {
		rep.Samples = append(rep.Samples, t.Strings(i))
	}
	if t.Len() == 0 {
		rep.Warnings = append(rep.Warnings, "no rows match the active filters")
	}
	if len(schema.Categorical()) == 0 {
		rep.Warnings = append(rep.Warnings, "no categorical columns; histogram skipped")
	}
	if len(schema.Numeric()) == 0 {
		rep.Warnings = append(rep.Warnings, "no numeric columns; box plot skipped")
	}
	return rep, nil
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[SHEET SUMMARY]\n")
	if r.Sheet != "" {
		b.WriteString(fmt.Sprintf("Sheet: %s\n", r.Sheet))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Summary.RowCount))
	b.WriteString(fmt.Sprintf("Columns: %d\n", r.Summary.ColumnCount))
	b.WriteString(fmt.Sprintf("Null cells: %d\n", r.Summary.NullCount))
	if active := r.Filters.Active(); len(active) > 0 {
		b.WriteString("\n[ACTIVE FILTERS]\n")
		for _, c := range active {
			b.WriteString(fmt.Sprintf("- %s ∈ {%s}\n", c, strings.Join(r.Filters[c], ", ")))
		}
	}

	b.WriteString("\n[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case KindNumeric:
			if c.Box != nil {
				b.WriteString(fmt.Sprintf(" — min %.4g, q1 %.4g, median %.4g, q3 %.4g, max %.4g, mean %.4g, std %.4g",
					c.Min, c.Box.Q1, c.Box.Median, c.Box.Q3, c.Max, c.Mean, c.Std))
				if n := len(c.Box.Outliers); n > 0 {
					b.WriteString(fmt.Sprintf("; outliers: %d", n))
				}
			}
		case KindCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		if c.Filterable {
			b.WriteString(" [filterable]")
		}
		b.WriteString("\n")
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
