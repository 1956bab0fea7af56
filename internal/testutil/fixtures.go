package testutil

import (
	"fmt"
	"testing"

	"github.com/agencybankai-hash/deca-website-sub001/internal/artifact"
)

// Square returns path data for an axis-aligned square.
func Square(x, y, size float64) string {
	return fmt.Sprintf("M%g,%gL%g,%gL%g,%gL%g,%gZ", x, y, x+size, y, x+size, y+size, x, y+size)
}

// RegionTable returns a small boundary table with three non-overlapping
// squares: CA at (100,100), NY at (700,100) and TX at (400,400), each 100
// wide.
func RegionTable(t testing.TB) artifact.Table {
	t.Helper()

	table := artifact.Table{
		"CA": {Abbr: "CA", Name: "California", D: Square(100, 100, 100), CX: 150, CY: 150},
		"NY": {Abbr: "NY", Name: "New York", D: Square(700, 100, 100), CX: 750, CY: 150},
		"TX": {Abbr: "TX", Name: "Texas", D: Square(400, 400, 100), CX: 450, CY: 450},
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("fixture table: %v", err)
	}
	return table
}

// RegionJSON returns RegionTable encoded as regions.json.
func RegionJSON(t testing.TB) []byte {
	t.Helper()

	body, err := artifact.Marshal(RegionTable(t))
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return body
}
