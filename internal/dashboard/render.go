// Package dashboard runs the sheet pipeline: select, filter, summarize,
// classify, chart and export, from an explicit State to a View.
package dashboard

import (
	"errors"
	"fmt"
	"log"

	"github.com/KaramelBytes/sheetdash/internal/analysis"
	"github.com/KaramelBytes/sheetdash/internal/geo"
	"github.com/KaramelBytes/sheetdash/internal/table"
)

// ErrNoSheets is returned when the workbook has nothing to show.
var ErrNoSheets = errors.New("workbook has no sheets")

// Workbook is the source of normalized sheet tables.
type Workbook interface {
	SheetNames() []string
	Table(name string) (*table.Table, error)
}

// Debug enables a per-render trace in the log.
var Debug bool

// Choice is one value of a filter control.
type Choice struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// FilterControl is the multi-select offered for one eligible column.
type FilterControl struct {
	Column  string   `json:"column"`
	Choices []Choice `json:"choices"`
	Active  bool     `json:"active"`
}

// View is everything needed to draw the dashboard for one State.
type View struct {
	Sheets []string `json:"sheets"`
	// State is the resolved state: sheet filled in, filters limited to
	// eligible columns, chart columns set to what is actually drawn.
	State   State           `json:"state"`
	Filters []FilterControl `json:"filters"`

	Columns []string        `json:"columns"`
	Rows    [][]string      `json:"rows"`
	Summary table.Summary   `json:"summary"`
	Schema  analysis.Schema `json:"schema"`

	Categorical []string                 `json:"categorical_columns"`
	Numeric     []string                 `json:"numeric_columns"`
	Frequencies []analysis.CategoryCount `json:"frequencies,omitempty"`
	Box         *analysis.BoxSummary     `json:"box,omitempty"`

	Geo    bool        `json:"geo"`
	Points []geo.Point `json:"points,omitempty"`

	ExportName string `json:"export_name"`

	// Table is the filtered table the view was built from.
	Table *table.Table `json:"-"`
}

// HasCategorical reports whether a frequency chart is drawn.
func (v *View) HasCategorical() bool { return v.State.Categorical != "" }

// HasNumeric reports whether a box plot is drawn.
func (v *View) HasNumeric() bool { return v.State.Numeric != "" }

// Export serializes the filtered table for download.
func (v *View) Export() (table.Artifact, error) {
	return table.Export(v.Table, v.State.Sheet)
}

// Render computes the view for a state. An empty sheet name selects the
// first sheet. Filters are offered and validated against the normalized,
// unfiltered sheet, so a filter's choices never depend on other filters.
// Column classes are decided once per sheet, before filtering.
func Render(wb Workbook, s State) (*View, error) {
	sheets := wb.SheetNames()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	if s.Sheet == "" {
		s = s.clone()
		s.Sheet = sheets[0]
	}
	base, err := wb.Table(s.Sheet)
	if err != nil {
		return nil, err
	}

	options := table.FilterOptions(base)
	s, controls := resolveFilters(s, options)
	filtered, err := table.Apply(base, s.Filters)
	if err != nil {
		return nil, fmt.Errorf("apply filters: %w", err)
	}

	schema := analysis.Classify(base)
	v := &View{
		Sheets:      sheets,
		Filters:     controls,
		Columns:     append([]string(nil), filtered.Columns...),
		Rows:        make([][]string, filtered.Len()),
		Summary:     table.Summarize(filtered),
		Schema:      schema,
		Categorical: schema.Categorical(),
		Numeric:     schema.Numeric(),
		ExportName:  table.ExportFilename(s.Sheet),
		Table:       filtered,
	}
	for i := range filtered.Rows {
		v.Rows[i] = filtered.Strings(i)
	}

	if col, ok := schema.Pick(analysis.KindCategorical, s.Categorical); ok {
		s.Categorical = col
		if v.Frequencies, err = analysis.Frequencies(filtered, col); err != nil {
			return nil, err
		}
	} else {
		s.Categorical = ""
	}
	if col, ok := schema.Pick(analysis.KindNumeric, s.Numeric); ok {
		s.Numeric = col
		box, ok, err := analysis.Box(filtered, col)
		if err != nil {
			return nil, err
		}
		if ok {
			v.Box = &box
		}
	} else {
		s.Numeric = ""
	}

	if geo.Detect(filtered) {
		v.Geo = true
		v.Points = geo.Points(filtered)
	}
	v.State = s
	if Debug {
		log.Printf("[dashboard] render sheet=%q filters=%v cat=%q num=%q rows=%d/%d points=%d",
			s.Sheet, s.Filters, s.Categorical, s.Numeric, filtered.Len(), base.Len(), len(v.Points))
	}
	return v, nil
}

// resolveFilters drops filters on columns that are not offered and builds
// the controls with the current selection marked.
func resolveFilters(s State, options []table.FilterOption) (State, []FilterControl) {
	offered := make(map[string]bool, len(options))
	controls := make([]FilterControl, 0, len(options))
	for _, o := range options {
		offered[o.Column] = true
		fc := FilterControl{Column: o.Column, Choices: make([]Choice, len(o.Values))}
		for i, val := range o.Values {
			sel := s.Selected(o.Column, val)
			fc.Choices[i] = Choice{Value: val, Selected: sel}
			fc.Active = fc.Active || sel
		}
		controls = append(controls, fc)
	}
	for _, col := range s.Filters.Active() {
		if !offered[col] {
			if Debug {
				log.Printf("[dashboard] ignoring filter on %q: column not filterable", col)
			}
			s = s.WithFilter(col)
		}
	}
	return s, controls
}
