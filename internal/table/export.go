package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ExportSuffix is appended to the sheet name to form the download name.
const ExportSuffix = "_filtrado.csv"

// Artifact is an exported file ready to be written or served.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportFilename returns "<sheet>_filtrado.csv".
func ExportFilename(sheet string) string { return sheet + ExportSuffix }

// Export serializes t as UTF-8 CSV with a header row.
func Export(t *Table, sheet string) (Artifact, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Filename:    ExportFilename(sheet),
		ContentType: "text/csv; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}

// WriteCSV writes the header and one record per row. Missing cells are
// written as empty fields.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range t.Rows {
		if err := cw.Write(t.Strings(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ParseCSV reads a comma-delimited file with a header row into a raw table.
// Cell kinds are inferred with ParseValue.
func ParseCSV(r io.Reader) (*Table, error) { return ReadDelimited(r, ',') }

// ReadDelimited is ParseCSV with a custom field separator.
func ReadDelimited(r io.Reader, comma rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	// strip a UTF-8 byte order mark left by spreadsheet exports
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}
	var rows [][]Value
	width := len(header)
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		row := make([]Value, len(rec))
		for j, cell := range rec {
			row[j] = ParseValue(cell)
		}
		rows = append(rows, row)
		width = max(width, len(rec))
	}
	// unnamed trailing columns keep their cells
	for len(header) < width {
		header = append(header, "")
	}
	return New(header, rows), nil
}

func trimBOM(s string) string { return strings.TrimPrefix(s, "\ufeff") }
