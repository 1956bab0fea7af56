// Package artifact defines regions.json, the boundary table shared by the
// map generator and the map renderer.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
)

// Viewport is the logical coordinate box every path and anchor assumes.
const (
	ViewportMinX   = 0
	ViewportMinY   = 0
	ViewportWidth  = 975
	ViewportHeight = 610
)

// ViewBox returns the SVG viewBox attribute value for the map coordinate space.
func ViewBox() string {
	return fmt.Sprintf("%d %d %d %d", ViewportMinX, ViewportMinY, ViewportWidth, ViewportHeight)
}

// ErrInvalidArtifact marks tables that break the record contract.
var ErrInvalidArtifact = errors.New("artifact: invalid table")

// Record is one region boundary entry.
type Record struct {
	Abbr string  `json:"abbr"`
	Name string  `json:"name"`
	D    string  `json:"d"`
	CX   float64 `json:"cx"`
	CY   float64 `json:"cy"`
}

// Table maps region code to its record.
type Table map[string]Record

// Codes returns the table keys in sorted order.
func (t Table) Codes() []string {
	codes := make([]string, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Sorted returns the records ordered by code.
func (t Table) Sorted() []Record {
	out := make([]Record, 0, len(t))
	for _, code := range t.Codes() {
		out = append(out, t[code])
	}
	return out
}

// Lookup returns the record for code.
func (t Table) Lookup(code string) (Record, bool) {
	r, ok := t[code]
	return r, ok
}

// Validate checks the invariants a renderer relies on: keys match abbr,
// codes are two characters, paths are non-empty and anchors are finite.
func (t Table) Validate() error {
	var problems []string
	for _, code := range t.Codes() {
		r := t[code]
		switch {
		case len(code) != 2:
			problems = append(problems, fmt.Sprintf("%s: code must be two characters", code))
		case r.Abbr != code:
			problems = append(problems, fmt.Sprintf("%s: abbr %q does not match key", code, r.Abbr))
		case strings.TrimSpace(r.D) == "":
			problems = append(problems, fmt.Sprintf("%s: empty path", code))
		case !finite(r.CX) || !finite(r.CY):
			problems = append(problems, fmt.Sprintf("%s: non-finite anchor", code))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidArtifact, strings.Join(problems, "; "))
	}
	return nil
}

// Marshal encodes the table deterministically: sorted keys, two-space
// indent, trailing newline.
func Marshal(t Table) ([]byte, error) {
	if t == nil {
		t = Table{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]Record(t)); err != nil {
		return nil, fmt.Errorf("artifact: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse decodes and validates a table.
func Parse(data []byte) (Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if t == nil {
		t = Table{}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Read decodes and validates a table from r.
func Read(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("artifact: read: %w", err)
	}
	return Parse(data)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
