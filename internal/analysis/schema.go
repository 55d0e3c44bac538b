package analysis

import "github.com/KaramelBytes/sheetdash/internal/table"

// Column kinds.
const (
	KindNumeric     = "numeric"
	KindCategorical = "categorical"
	KindDatetime    = "datetime"
)

// ColumnType is the classified kind of one column.
type ColumnType struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	// counts of stored cell types that led to the decision
	Numbers int `json:"numbers"`
	Texts   int `json:"texts"`
	Times   int `json:"times"`
}

// Schema is the typed view of a table produced by a single pass over it.
type Schema struct {
	Columns []ColumnType `json:"columns"`
}

// Classify decides each column's kind by its predominant stored cell type.
// Text wins ties with numbers (mixed columns are labels). A column with no
// values at all is numeric, the way an all-missing float column behaves.
func Classify(t *table.Table) Schema {
	s := Schema{Columns: make([]ColumnType, t.Width())}
	for j, name := range t.Columns {
		ct := ColumnType{Name: name}
		for _, r := range t.Rows {
			switch r[j].Kind {
			case table.Number:
				ct.Numbers++
			case table.Text:
				ct.Texts++
			case table.Time:
				ct.Times++
			}
		}
		switch {
		case ct.Numbers == 0 && ct.Texts == 0 && ct.Times == 0:
			ct.Kind = KindNumeric
		case ct.Times > ct.Numbers && ct.Times >= ct.Texts:
			ct.Kind = KindDatetime
		case ct.Numbers > ct.Texts:
			ct.Kind = KindNumeric
		default:
			ct.Kind = KindCategorical
		}
		s.Columns[j] = ct
	}
	return s
}

// Kind returns the kind of a column, or "" when it is unknown.
func (s Schema) Kind(name string) string {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.Kind
		}
	}
	return ""
}

// Categorical lists categorical columns in table order.
func (s Schema) Categorical() []string { return s.names(KindCategorical) }

// Numeric lists numeric columns in table order.
func (s Schema) Numeric() []string { return s.names(KindNumeric) }

func (s Schema) names(kind string) []string {
	var out []string
	for _, c := range s.Columns {
		if c.Kind == kind {
			out = append(out, c.Name)
		}
	}
	return out
}

// Pick returns want when it is a column of the given kind, otherwise the
// first column of that kind. ok is false when the schema has none.
func (s Schema) Pick(kind, want string) (string, bool) {
	names := s.names(kind)
	if len(names) == 0 {
		return "", false
	}
	for _, n := range names {
		if n == want {
			return n, true
		}
	}
	return names[0], true
}
