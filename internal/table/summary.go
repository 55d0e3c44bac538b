package table

// Summary holds the three headline counts of a table.
type Summary struct {
	RowCount    int `json:"row_count"`
	ColumnCount int `json:"column_count"`
	NullCount   int `json:"null_count"`
}

// Summarize counts rows, columns and missing cells.
func Summarize(t *Table) Summary {
	s := Summary{RowCount: t.Len(), ColumnCount: t.Width()}
	if t == nil {
		return s
	}
	for _, r := range t.Rows {
		for _, v := range r {
			if v.IsMissing() {
				s.NullCount++
			}
		}
	}
	return s
}
