package table

import (
	"fmt"
	"sort"
)

// Bounds on the number of distinct values a column needs before it is
// offered as a filter.
const (
	MinFilterValues = 2
	MaxFilterValues = 50
)

// FilterSpec maps a column to the set of allowed display values. Columns
// that are absent, or present with no values, do not restrict rows.
type FilterSpec map[string][]string

// FilterOption is a column offered for filtering together with its distinct
// non-missing values in order of first appearance.
type FilterOption struct {
	Column string
	Values []string
}

// Active returns the restricting columns in sorted order.
func (f FilterSpec) Active() []string {
	cols := make([]string, 0, len(f))
	for c, vals := range f {
		if len(vals) > 0 {
			cols = append(cols, c)
		}
	}
	sort.Strings(cols)
	return cols
}

// Clone returns a deep copy.
func (f FilterSpec) Clone() FilterSpec {
	out := make(FilterSpec, len(f))
	for c, vals := range f {
		out[c] = append([]string(nil), vals...)
	}
	return out
}

// Distinct lists the non-missing display values of a column in order of
// first appearance.
func Distinct(t *Table, column string) ([]string, error) {
	idx := t.Index(column)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	return distinctAt(t, idx), nil
}

func distinctAt(t *Table, idx int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.Rows {
		v := r[idx]
		if v.IsMissing() {
			continue
		}
		if _, ok := seen[v.Raw]; ok {
			continue
		}
		seen[v.Raw] = struct{}{}
		out = append(out, v.Raw)
	}
	return out
}

// Eligible reports whether a column with n distinct values gets a filter.
func Eligible(n int) bool {
	return n >= MinFilterValues && n < MaxFilterValues
}

// FilterOptions returns the filterable columns of t in column order.
func FilterOptions(t *Table) []FilterOption {
	var out []FilterOption
	for i, c := range t.Columns {
		vals := distinctAt(t, i)
		if !Eligible(len(vals)) {
			continue
		}
		out = append(out, FilterOption{Column: c, Values: vals})
	}
	return out
}

// Apply keeps the rows whose value in every restricted column belongs to
// that column's allowed set. Missing cells never match. The result is a new
// table; t is left untouched.
func Apply(t *Table, spec FilterSpec) (*Table, error) {
	type cond struct {
		idx     int
		allowed map[string]struct{}
	}
	var conds []cond
	for _, c := range spec.Active() {
		idx := t.Index(c)
		if idx < 0 {
			return nil, fmt.Errorf("filter %w: %q", ErrUnknownColumn, c)
		}
		set := make(map[string]struct{}, len(spec[c]))
		for _, v := range spec[c] {
			set[v] = struct{}{}
		}
		conds = append(conds, cond{idx: idx, allowed: set})
	}
	rows := make([][]Value, 0, len(t.Rows))
	for _, r := range t.Rows {
		keep := true
		for _, c := range conds {
			v := r[c.idx]
			if v.IsMissing() {
				keep = false
				break
			}
			if _, ok := c.allowed[v.Raw]; !ok {
				keep = false
				break
			}
		}
		if keep {
			rows = append(rows, r)
		}
	}
	return &Table{Columns: append([]string(nil), t.Columns...), Rows: rows}, nil
}
