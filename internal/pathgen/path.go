package pathgen

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/gg"

	"github.com/agencybankai-hash/deca-website-sub001/internal/topology"
)

// DefaultPathPrecision is the number of decimals kept for path coordinates.
const DefaultPathPrecision = 3

// BuildPath converts polygons (exterior ring plus holes) into a closed
// vector path. Rings that enclose no area are dropped.
func BuildPath(polys []topology.Polygon) *gg.Path {
	p := gg.NewPath()
	for _, poly := range polys {
		for _, ring := range poly {
			if area, _ := ringCentroid(ring); area == 0 {
				continue
			}
			pts := openRing(ring)
			p.MoveTo(pts[0].X, pts[0].Y)
			for _, pt := range pts[1:] {
				p.LineTo(pt.X, pt.Y)
			}
			p.Close()
		}
	}
	return p
}

// openRing strips the closing duplicate vertex; Close() restores it.
func openRing(ring topology.Ring) []topology.Point {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		return ring[:n-1]
	}
	return ring
}

// FormatPath serializes a path to SVG path data using absolute commands
// and a fixed coordinate precision.
func FormatPath(p *gg.Path, precision int) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	for _, elem := range p.Elements() {
		switch e := elem.(type) {
		case gg.MoveTo:
			b.WriteByte('M')
			writePoint(&b, e.Point, precision)
		case gg.LineTo:
			b.WriteByte('L')
			writePoint(&b, e.Point, precision)
		case gg.QuadTo:
			b.WriteByte('Q')
			writePoint(&b, e.Control, precision)
			b.WriteByte(',')
			writePoint(&b, e.Point, precision)
		case gg.CubicTo:
			b.WriteByte('C')
			writePoint(&b, e.Control1, precision)
			b.WriteByte(',')
			writePoint(&b, e.Control2, precision)
			b.WriteByte(',')
			writePoint(&b, e.Point, precision)
		case gg.Close:
			b.WriteByte('Z')
		}
	}
	return b.String()
}

func writePoint(b *strings.Builder, pt gg.Point, precision int) {
	b.WriteString(formatNumber(pt.X, precision))
	b.WriteByte(',')
	b.WriteString(formatNumber(pt.Y, precision))
}

// formatNumber rounds half away from zero and trims trailing zeros.
func formatNumber(v float64, precision int) string {
	v = Round(v, precision)
	if v == 0 {
		// avoid "-0"
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Round rounds v to the given number of decimals.
func Round(v float64, precision int) float64 {
	if precision < 0 {
		precision = 0
	}
	scale := math.Pow(10, float64(precision))
	return math.Round(v*scale) / scale
}
