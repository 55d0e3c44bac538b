package workbook

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/KaramelBytes/sheetdash/internal/table"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrUnsupported indicates no loader accepts the file.
	ErrUnsupported = errors.New("unsupported workbook format")
	// ErrSheetNotFound is returned for a sheet name the workbook does not have.
	ErrSheetNotFound = errors.New("sheet not found")
)

// Source is an opened workbook file.
type Source interface {
	SheetNames() []string
	// ReadSheet returns the sheet as read, header row first, without any
	// normalization.
	ReadSheet(name string) (*table.Table, error)
	Close() error
}

// Loader opens one family of workbook files.
type Loader interface {
	CanOpen(path string) bool
	Open(path string) (Source, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

func init() {
	Register(xlsxLoader{})
	Register(csvLoader{})
}

// Workbook owns an open Source for the lifetime of the process and hands
// out normalized sheet tables. Each sheet is read from disk once; later
// calls return the cached table so re-filtering never re-reads the file.
type Workbook struct {
	path  string
	src   Source
	names []string

	mu    sync.Mutex
	cache map[string]*table.Table
	group singleflight.Group
}

// Open selects a loader by file name and opens the workbook read-only.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	for _, l := range registry {
		if !l.CanOpen(path) {
			continue
		}
		start := time.Now()
		src, err := l.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook %s: %w", path, err)
		}
		names := src.SheetNames()
		log.Printf("[workbook] opened %s (%d sheets) in %s", path, len(names), time.Since(start).Round(time.Millisecond))
		return &Workbook{path: path, src: src, names: names, cache: map[string]*table.Table{}}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

// FromSource wraps an already opened source.
func FromSource(path string, src Source) *Workbook {
	return &Workbook{path: path, src: src, names: src.SheetNames(), cache: map[string]*table.Table{}}
}

func (w *Workbook) Path() string { return w.path }

// SheetNames returns the sheets in workbook order.
func (w *Workbook) SheetNames() []string {
	return append([]string(nil), w.names...)
}

// HasSheet reports whether name is one of the workbook's sheets.
func (w *Workbook) HasSheet(name string) bool {
	for _, n := range w.names {
		if n == name {
			return true
		}
	}
	return false
}

// Table returns the normalized table of a sheet.
func (w *Workbook) Table(name string) (*table.Table, error) {
	if !w.HasSheet(name) {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	w.mu.Lock()
	t, ok := w.cache[name]
	w.mu.Unlock()
	if ok {
		return t, nil
	}
	v, err, _ := w.group.Do(name, func() (any, error) {
		start := time.Now()
		raw, err := w.src.ReadSheet(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		norm := table.Normalize(raw)
		log.Printf("[workbook] sheet %q loaded: %d rows (%d dropped as empty), %d columns in %s",
			name, norm.Len(), raw.Len()-norm.Len(), norm.Width(), time.Since(start).Round(time.Millisecond))
		w.mu.Lock()
		w.cache[name] = norm
		w.mu.Unlock()
		return norm, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*table.Table), nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	if w.src == nil {
		return nil
	}
	return w.src.Close()
}
