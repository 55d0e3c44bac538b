package workbook

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/KaramelBytes/sheetdash/internal/table"
	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanOpen(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return true
	}
	return false
}

func (xlsxLoader) Open(path string) (Source, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &xlsxSource{f: f}, nil
}

type xlsxSource struct {
	mu sync.Mutex // serializes sheet reads on the shared file
	f  *excelize.File
}

func (s *xlsxSource) SheetNames() []string { return s.f.GetSheetList() }

func (s *xlsxSource) Close() error { return s.f.Close() }

// ReadSheet reads each sheet twice: once with raw cell values so numbers
// keep full precision, and once formatted so date cells and booleans can be
// recognised by their display form.
func (s *xlsxSource) ReadSheet(name string) (*table.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := s.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("get rows: %w", err)
	}
	shown, err := s.f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("get formatted rows: %w", err)
	}
	if len(raw) == 0 {
		return &table.Table{}, nil
	}
	width := 0
	for _, r := range raw {
		width = max(width, len(r))
	}
	// Cells right of the last header cell get a blank name, which
	// Normalize turns into "Unnamed: <i>".
	header := make([]string, width)
	for j := range raw[0] {
		header[j] = cellAt(shown, 0, j, raw[0][j])
	}
	rows := make([][]table.Value, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		row := make([]table.Value, len(raw[i]))
		for j, cell := range raw[i] {
			stored, err := s.storedType(name, cell, i, j)
			if err != nil {
				return nil, err
			}
			row[j] = cellValue(cell, cellAt(shown, i, j, cell), stored)
		}
		rows = append(rows, row)
	}
	return table.New(header, rows), nil
}

// storedType looks up the cell type only for numeric-looking text, the one
// case where the raw string alone cannot tell a number from a string.
func (s *xlsxSource) storedType(sheet, raw string, i, j int) (excelize.CellType, error) {
	if raw == "" || table.ParseValue(raw).Kind != table.Number {
		return excelize.CellTypeUnset, nil
	}
	axis, err := excelize.CoordinatesToCellName(j+1, i+1)
	if err != nil {
		return excelize.CellTypeUnset, err
	}
	typ, err := s.f.GetCellType(sheet, axis)
	if err != nil {
		return excelize.CellTypeUnset, fmt.Errorf("cell type %s: %w", axis, err)
	}
	return typ, nil
}

func cellAt(rows [][]string, i, j int, fallback string) string {
	if i < len(rows) && j < len(rows[i]) {
		return rows[i][j]
	}
	return fallback
}

// cellValue decides the stored kind of one cell from its raw and displayed
// forms. Cells stored as strings stay text even when they read as numbers.
func cellValue(raw, shown string, stored excelize.CellType) table.Value {
	if raw == "" {
		return table.Missing()
	}
	switch stored {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return table.TextValue(raw)
	}
	v := table.ParseValue(raw)
	if v.Kind != table.Number || shown == raw {
		return v
	}
	if isBoolText(raw, shown) {
		return table.TextValue(shown)
	}
	if _, ok := parseTimeMaybe(shown); ok {
		return table.TimeValue(shown)
	}
	return v
}

func isBoolText(raw, shown string) bool {
	return (raw == "1" && shown == "TRUE") || (raw == "0" && shown == "FALSE")
}
