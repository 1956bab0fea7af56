package pathgen

import (
	"math"
	"sort"

	"github.com/gogpu/gg"

	"github.com/agencybankai-hash/deca-website-sub001/internal/topology"
)

// Anchor picks the label point for a set of polygons.
//
// The first candidate is the area-weighted centroid of all polygons, with
// holes subtracted. When that point falls outside the shape (crescents,
// states with large exclaves) the centroid of the largest polygon is tried
// next, and if that is outside too the midpoint of the widest interior
// span of the largest polygon on a horizontal scanline is used. ok is false
// when the polygons enclose no area or the result is not finite.
func Anchor(polys []topology.Polygon, shape *gg.Path) (gg.Point, bool) {
	var (
		total     float64
		sumX      float64
		sumY      float64
		largest   float64
		largestPt gg.Point
		largestPl topology.Polygon
		haveLarge bool
	)
	for _, poly := range polys {
		area, c, ok := polygonCentroid(poly)
		if !ok {
			continue
		}
		total += area
		sumX += c.X * area
		sumY += c.Y * area
		if area > largest {
			largest = area
			largestPt = c
			largestPl = poly
			haveLarge = true
		}
	}

	if total <= 0 {
		return gg.Point{}, false
	}
	pt := gg.Pt(sumX/total, sumY/total)
	if !finitePoint(pt) {
		return gg.Point{}, false
	}
	if shape == nil || !haveLarge || insideEvenOdd(shape, pt) {
		return pt, true
	}
	if insideEvenOdd(shape, largestPt) {
		return largestPt, true
	}
	minY, maxY := yRange(largestPl)
	for _, y := range []float64{largestPt.Y, (minY + maxY) / 2} {
		if c, ok := widestSpan(largestPl, y); ok && insideEvenOdd(shape, c) {
			return c, true
		}
	}
	return largestPt, true
}

// widestSpan intersects the polygon's rings with the horizontal line at y
// and returns the midpoint of the widest span between even-odd crossings.
func widestSpan(poly topology.Polygon, y float64) (gg.Point, bool) {
	var xs []float64
	for _, ring := range poly {
		pts := openRing(ring)
		n := len(pts)
		for i := 0; i < n; i++ {
			a, b := pts[i], pts[(i+1)%n]
			if (a.Y > y) == (b.Y > y) {
				continue
			}
			xs = append(xs, a.X+(y-a.Y)*(b.X-a.X)/(b.Y-a.Y))
		}
	}
	if len(xs) < 2 {
		return gg.Point{}, false
	}
	sort.Float64s(xs)
	best, width := gg.Point{}, 0.0
	for i := 0; i+1 < len(xs); i += 2 {
		if w := xs[i+1] - xs[i]; w > width {
			best, width = gg.Pt((xs[i]+xs[i+1])/2, y), w
		}
	}
	return best, width > 0
}

func yRange(poly topology.Polygon) (float64, float64) {
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, ring := range poly {
		for _, p := range ring {
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
		}
	}
	return minY, maxY
}

// polygonCentroid returns the net area (exterior minus holes) and the
// centroid of one polygon.
func polygonCentroid(poly topology.Polygon) (float64, gg.Point, bool) {
	var area, mx, my float64
	for i, ring := range poly {
		a, c := ringCentroid(ring)
		if a == 0 {
			continue
		}
		a = math.Abs(a)
		if i > 0 {
			a = -a
		}
		area += a
		mx += c.X * a
		my += c.Y * a
	}
	if area <= 0 {
		return 0, gg.Point{}, false
	}
	return area, gg.Pt(mx/area, my/area), true
}

// ringCentroid uses the shoelace formula; the returned area is signed.
func ringCentroid(ring topology.Ring) (float64, gg.Point) {
	pts := openRing(ring)
	n := len(pts)
	if n < 3 {
		return 0, gg.Point{}
	}
	var a2, cx, cy float64
	for i := 0; i < n; i++ {
		p := pts[i]
		q := pts[(i+1)%n]
		cross := p.X*q.Y - q.X*p.Y
		a2 += cross
		cx += (p.X + q.X) * cross
		cy += (p.Y + q.Y) * cross
	}
	if a2 == 0 {
		return 0, gg.Point{}
	}
	return a2 / 2, gg.Pt(cx/(3*a2), cy/(3*a2))
}

// insideEvenOdd tests containment with the even-odd rule so holes count as
// outside regardless of ring orientation.
func insideEvenOdd(shape *gg.Path, pt gg.Point) bool {
	return shape.Winding(pt)%2 != 0
}

func finitePoint(p gg.Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}
