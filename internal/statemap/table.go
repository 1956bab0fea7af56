package statemap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gogpu/gg"
	"go.uber.org/zap"

	"github.com/agencybankai-hash/deca-website-sub001/internal/artifact"
)

// Table is the immutable boundary table with each path parsed once for
// hit-testing and rasterizing. It is safe to share between Map instances.
type Table struct {
	records artifact.Table
	codes   []string
	shapes  map[string]*gg.Path
}

// NewTable parses the path data of every record. A record whose path does
// not parse makes the whole table invalid.
func NewTable(records artifact.Table) (*Table, error) {
	t := &Table{
		records: artifact.Table{},
		shapes:  map[string]*gg.Path{},
	}
	for _, code := range records.Codes() {
		rec := records[code]
		shape, err := ParsePathData(rec.D)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", artifact.ErrInvalidArtifact, code, err)
		}
		t.records[code] = rec
		t.shapes[code] = shape
		t.codes = append(t.codes, code)
	}
	return t, nil
}

// EmptyTable returns a table with no regions.
func EmptyTable() *Table {
	t, _ := NewTable(nil)
	return t
}

// ParseTable decodes and validates regions.json content.
func ParseTable(data []byte) (*Table, error) {
	records, err := artifact.Parse(data)
	if err != nil {
		return nil, err
	}
	return NewTable(records)
}

// LoadTable reads regions.json from disk.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("statemap: read %s: %w", path, err)
	}
	return ParseTable(data)
}

// LoadTableFS reads regions.json from fsys.
func LoadTableFS(fsys fs.FS, name string) (*Table, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("statemap: read %s: %w", name, err)
	}
	return ParseTable(data)
}

// LoadTableOrEmpty loads the table at path. A missing or malformed file is
// logged and yields an empty table, so the page shows a blank map instead
// of failing.
func LoadTableOrEmpty(path string, logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	t, err := LoadTable(path)
	if err != nil {
		level := logger.Error
		if errors.Is(err, fs.ErrNotExist) {
			level = logger.Warn
		}
		level("region table unavailable; rendering empty map", zap.String("path", path), zap.Error(err))
		return EmptyTable()
	}
	logger.Info("region table loaded", zap.String("path", path), zap.Int("regions", t.Len()))
	return t
}

// Len reports the number of regions.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.codes)
}

// Codes returns region codes in render order (sorted).
func (t *Table) Codes() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.codes))
	copy(out, t.codes)
	return out
}

// Record returns the boundary record for code.
func (t *Table) Record(code string) (artifact.Record, bool) {
	if t == nil {
		return artifact.Record{}, false
	}
	r, ok := t.records[code]
	return r, ok
}

// Records exposes the underlying artifact table. Callers must not mutate it.
func (t *Table) Records() artifact.Table {
	if t == nil {
		return artifact.Table{}
	}
	return t.records
}

func (t *Table) shape(code string) *gg.Path {
	if t == nil {
		return nil
	}
	return t.shapes[code]
}

// HitTest returns the region under (x, y) in viewBox coordinates. Shapes
// are drawn in code order, so the last matching shape is the visible one.
func (t *Table) HitTest(x, y float64) (string, bool) {
	if t == nil {
		return "", false
	}
	pt := gg.Pt(x, y)
	for i := len(t.codes) - 1; i >= 0; i-- {
		code := t.codes[i]
		if t.shapes[code].Winding(pt)%2 != 0 {
			return code, true
		}
	}
	return "", false
}
