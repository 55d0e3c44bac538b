package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownColumn is returned when a column name is not part of a table.
var ErrUnknownColumn = errors.New("unknown column")

// Table is a rectangular grid with named columns. Rows always have exactly
// len(Columns) cells. Tables are treated as immutable once built: every
// operation in this package returns a new Table and never writes into the
// row slices of its input.
type Table struct {
	Columns []string
	Rows    [][]Value
}

// New builds a table, padding short rows with missing cells and cutting
// cells that fall outside the header.
func New(columns []string, rows [][]Value) *Table {
	cols := append([]string(nil), columns...)
	out := make([][]Value, 0, len(rows))
	for _, r := range rows {
		row := make([]Value, len(cols))
		copy(row, r)
		out = append(out, row)
	}
	return &Table{Columns: cols, Rows: out}
}

// Len reports the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Width reports the number of columns.
func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Index returns the position of a column or -1.
func (t *Table) Index(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether every named column exists (case-sensitive).
func (t *Table) Has(names ...string) bool {
	for _, n := range names {
		if t.Index(n) < 0 {
			return false
		}
	}
	return true
}

// Column returns the cells of one column in row order.
func (t *Table) Column(name string) ([]Value, error) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[idx]
	}
	return out, nil
}

// Strings returns row i as display strings, empty for missing cells.
func (t *Table) Strings(i int) []string {
	row := t.Rows[i]
	out := make([]string, len(row))
	for j, v := range row {
		out[j] = v.Raw
	}
	return out
}

// Normalize removes rows in which every cell is missing and trims the
// surrounding whitespace of each header. Blank headers are named
// "Unnamed: <i>" and repeated names get ".1", ".2" suffixes so that the
// resulting names are unique keys.
func Normalize(raw *Table) *Table {
	if raw == nil {
		return &Table{}
	}
	cols := uniqueNames(raw.Columns)
	rows := make([][]Value, 0, len(raw.Rows))
	for _, r := range raw.Rows {
		if blankRow(r) {
			continue
		}
		rows = append(rows, r)
	}
	return New(cols, rows)
}

func blankRow(r []Value) bool {
	for _, v := range r {
		if !v.IsMissing() {
			return false
		}
	}
	return true
}

func uniqueNames(in []string) []string {
	out := make([]string, len(in))
	seen := make(map[string]int, len(in))
	for i, c := range in {
		name := strings.TrimSpace(c)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		out[i] = name
	}
	taken := make(map[string]bool, len(out))
	for _, n := range out {
		taken[n] = true
	}
	for i, n := range out {
		cnt := seen[n]
		seen[n] = cnt + 1
		if cnt == 0 {
			continue
		}
		cand := fmt.Sprintf("%s.%d", n, cnt)
		for taken[cand] {
			cnt++
			cand = fmt.Sprintf("%s.%d", n, cnt)
		}
		seen[n] = cnt + 1
		taken[cand] = true
		out[i] = cand
	}
	return out
}
