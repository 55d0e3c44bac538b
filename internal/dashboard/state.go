package dashboard

import (
	"net/url"
	"strings"

	"github.com/KaramelBytes/sheetdash/internal/table"
)

// Query parameter names used to carry a State in a URL.
const (
	ParamSheet       = "sheet"
	ParamCategorical = "cat"
	ParamNumeric     = "num"
	// ParamFilterPrefix precedes the column name of a repeated filter value,
	// e.g. f.Region=North&f.Region=South.
	ParamFilterPrefix = "f."
)

// State is an immutable snapshot of the user's choices. Every With* method
// returns a modified copy; the receiver is never changed.
type State struct {
	Sheet       string           `json:"sheet"`
	Filters     table.FilterSpec `json:"filters,omitempty"`
	Categorical string           `json:"categorical,omitempty"`
	Numeric     string           `json:"numeric,omitempty"`
}

// ParseState reads a State from URL query values. Unknown parameters are
// ignored and empty filter values are dropped.
func ParseState(q url.Values) State {
	s := State{
		Sheet:       strings.TrimSpace(q.Get(ParamSheet)),
		Categorical: q.Get(ParamCategorical),
		Numeric:     q.Get(ParamNumeric),
	}
	for key, vals := range q {
		col, ok := strings.CutPrefix(key, ParamFilterPrefix)
		if !ok || col == "" {
			continue
		}
		for _, v := range vals {
			if v == "" {
				continue
			}
			if s.Filters == nil {
				s.Filters = table.FilterSpec{}
			}
			s.Filters[col] = appendUnique(s.Filters[col], v)
		}
	}
	return s
}

// Values encodes the state so that ParseState(s.Values()) equals s.
func (s State) Values() url.Values {
	q := url.Values{}
	if s.Sheet != "" {
		q.Set(ParamSheet, s.Sheet)
	}
	if s.Categorical != "" {
		q.Set(ParamCategorical, s.Categorical)
	}
	if s.Numeric != "" {
		q.Set(ParamNumeric, s.Numeric)
	}
	for _, col := range s.Filters.Active() {
		for _, v := range s.Filters[col] {
			q.Add(ParamFilterPrefix+col, v)
		}
	}
	return q
}

// Query is Values().Encode().
func (s State) Query() string { return s.Values().Encode() }

// WithSheet selects another sheet. Filters and chart choices belong to the
// previous sheet's columns and are cleared.
func (s State) WithSheet(name string) State {
	if name == s.Sheet {
		return s.clone()
	}
	return State{Sheet: name}
}

// WithFilter replaces the allowed values of one column. No values removes
// the filter.
func (s State) WithFilter(column string, values ...string) State {
	out := s.clone()
	var kept []string
	for _, v := range values {
		if v != "" {
			kept = appendUnique(kept, v)
		}
	}
	if len(kept) == 0 {
		delete(out.Filters, column)
	} else {
		if out.Filters == nil {
			out.Filters = table.FilterSpec{}
		}
		out.Filters[column] = kept
	}
	if len(out.Filters) == 0 {
		out.Filters = nil
	}
	return out
}

// WithoutFilters clears every filter.
func (s State) WithoutFilters() State {
	out := s.clone()
	out.Filters = nil
	return out
}

// WithCategorical chooses the column for the frequency chart.
func (s State) WithCategorical(column string) State {
	out := s.clone()
	out.Categorical = column
	return out
}

// WithNumeric chooses the column for the box plot.
func (s State) WithNumeric(column string) State {
	out := s.clone()
	out.Numeric = column
	return out
}

// Selected reports whether value is currently allowed for column.
func (s State) Selected(column, value string) bool {
	for _, v := range s.Filters[column] {
		if v == value {
			return true
		}
	}
	return false
}

func (s State) clone() State {
	out := s
	if s.Filters != nil {
		out.Filters = s.Filters.Clone()
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, have := range list {
		if have == v {
			return list
		}
	}
	return append(list, v)
}
