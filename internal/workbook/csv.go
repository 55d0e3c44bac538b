package workbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/sheetdash/internal/table"
)

// csvLoader exposes a delimited text file as a workbook with one sheet named
// after the file.
type csvLoader struct{}

func (csvLoader) CanOpen(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvLoader) Open(path string) (Source, error) {
	base := filepath.Base(path)
	return &csvSource{path: path, sheet: strings.TrimSuffix(base, filepath.Ext(base)), comma: sniffDelimiter(path)}, nil
}

type csvSource struct {
	path  string
	sheet string
	comma rune
}

func (s *csvSource) SheetNames() []string { return []string{s.sheet} }

func (s *csvSource) Close() error { return nil }

func (s *csvSource) ReadSheet(name string) (*table.Table, error) {
	if name != s.sheet {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return table.ReadDelimited(f, s.comma)
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
