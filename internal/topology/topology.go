// Package topology decodes TopoJSON documents into planar polygon features.
//
// Arcs are shared between neighbouring geometries; Features stitches them
// back into closed rings, applying the quantization transform when the
// document carries one. No projection is applied: coordinates come out in
// whatever planar space the topology was built in.
package topology

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrInvalidTopology marks documents that are not usable TopoJSON.
	ErrInvalidTopology = errors.New("topology: invalid document")
	// ErrObjectNotFound is returned when the requested object is absent.
	ErrObjectNotFound = errors.New("topology: object not found")
)

// Point is a planar coordinate.
type Point struct {
	X float64
	Y float64
}

// Ring is a closed sequence of points; the first and last points coincide.
type Ring []Point

// Polygon holds an exterior ring followed by zero or more holes.
type Polygon []Ring

// Feature is one geometry of a topology object resolved to polygons.
type Feature struct {
	ID         string
	Properties map[string]any
	Polygons   []Polygon
}

// Name returns the "name" property when it is a string.
func (f Feature) Name() string {
	if f.Properties == nil {
		return ""
	}
	if v, ok := f.Properties["name"].(string); ok {
		return v
	}
	return ""
}

// Empty reports whether the feature has no ring with at least one point.
func (f Feature) Empty() bool {
	for _, poly := range f.Polygons {
		for _, ring := range poly {
			if len(ring) > 0 {
				return false
			}
		}
	}
	return true
}

// Transform is the TopoJSON quantization transform.
type Transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

// Topology is a decoded TopoJSON document with its arcs already absolute.
type Topology struct {
	BBox      []float64
	Transform *Transform
	objects   map[string]geometry
	arcs      [][]Point
}

type document struct {
	Type      string              `json:"type"`
	BBox      []float64           `json:"bbox"`
	Transform *Transform          `json:"transform"`
	Objects   map[string]geometry `json:"objects"`
	Arcs      [][][]float64       `json:"arcs"`
}

type geometry struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id"`
	Properties map[string]any  `json:"properties"`
	Arcs       json.RawMessage `json:"arcs"`
	Geometries []geometry      `json:"geometries"`
}

// Decode reads a full TopoJSON document from r.
func Decode(r io.Reader) (*Topology, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("topology: read: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a TopoJSON document.
func Parse(data []byte) (*Topology, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTopology, err)
	}
	if !strings.EqualFold(doc.Type, "Topology") {
		return nil, fmt.Errorf("%w: type %q", ErrInvalidTopology, doc.Type)
	}
	if doc.Objects == nil {
		return nil, fmt.Errorf("%w: missing objects", ErrInvalidTopology)
	}
	arcs, err := decodeArcs(doc.Arcs, doc.Transform)
	if err != nil {
		return nil, err
	}
	return &Topology{
		BBox:      doc.BBox,
		Transform: doc.Transform,
		objects:   doc.Objects,
		arcs:      arcs,
	}, nil
}

// decodeArcs turns (possibly quantized, delta-encoded) arcs into absolute points.
func decodeArcs(raw [][][]float64, tr *Transform) ([][]Point, error) {
	out := make([][]Point, len(raw))
	for i, arc := range raw {
		pts := make([]Point, 0, len(arc))
		var x, y float64
		for j, pos := range arc {
			if len(pos) < 2 {
				return nil, fmt.Errorf("%w: arc %d position %d has %d coordinates", ErrInvalidTopology, i, j, len(pos))
			}
			if tr == nil {
				pts = append(pts, Point{X: pos[0], Y: pos[1]})
				continue
			}
			x += pos[0]
			y += pos[1]
			pts = append(pts, Point{
				X: x*tr.Scale[0] + tr.Translate[0],
				Y: y*tr.Scale[1] + tr.Translate[1],
			})
		}
		out[i] = pts
	}
	return out, nil
}

// ObjectNames lists the top-level objects in sorted order.
func (t *Topology) ObjectNames() []string {
	names := make([]string, 0, len(t.objects))
	for name := range t.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Features resolves every geometry of the named object, in document order.
// Nested geometry collections are flattened. Non-areal geometries yield a
// feature with no polygons.
func (t *Topology) Features(object string) ([]Feature, error) {
	obj, ok := t.objects[object]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrObjectNotFound, object, strings.Join(t.ObjectNames(), ", "))
	}
	var out []Feature
	if err := t.collect(obj, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Topology) collect(g geometry, out *[]Feature) error {
	if strings.EqualFold(g.Type, "GeometryCollection") {
		for _, child := range g.Geometries {
			if err := t.collect(child, out); err != nil {
				return err
			}
		}
		return nil
	}
	f := Feature{ID: parseID(g.ID), Properties: g.Properties}
	switch g.Type {
	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(g.Arcs, &rings); err != nil {
			return fmt.Errorf("%w: polygon %s arcs: %v", ErrInvalidTopology, f.ID, err)
		}
		poly, err := t.polygon(rings)
		if err != nil {
			return err
		}
		f.Polygons = []Polygon{poly}
	case "MultiPolygon":
		var polys [][][]int
		if err := json.Unmarshal(g.Arcs, &polys); err != nil {
			return fmt.Errorf("%w: multipolygon %s arcs: %v", ErrInvalidTopology, f.ID, err)
		}
		for _, rings := range polys {
			poly, err := t.polygon(rings)
			if err != nil {
				return err
			}
			f.Polygons = append(f.Polygons, poly)
		}
	}
	*out = append(*out, f)
	return nil
}

func (t *Topology) polygon(rings [][]int) (Polygon, error) {
	poly := make(Polygon, 0, len(rings))
	for _, refs := range rings {
		ring, err := t.ring(refs)
		if err != nil {
			return nil, err
		}
		poly = append(poly, ring)
	}
	return poly, nil
}

// ring stitches arcs end to start. A negative index ~i walks arc i backwards.
func (t *Topology) ring(refs []int) (Ring, error) {
	var pts Ring
	for _, ref := range refs {
		idx := ref
		reverse := false
		if ref < 0 {
			idx = ^ref
			reverse = true
		}
		if idx >= len(t.arcs) {
			return nil, fmt.Errorf("%w: arc index %d out of range (%d arcs)", ErrInvalidTopology, ref, len(t.arcs))
		}
		arc := t.arcs[idx]
		if len(pts) > 0 {
			pts = pts[:len(pts)-1]
		}
		if reverse {
			for k := len(arc) - 1; k >= 0; k-- {
				pts = append(pts, arc[k])
			}
		} else {
			pts = append(pts, arc...)
		}
	}
	if n := len(pts); n > 0 && n < 4 {
		pts = append(pts, pts[0])
	}
	return pts, nil
}

// parseID accepts string or numeric ids. Numbers are rendered without a
// fractional part so 6 and "6" resolve the same way.
func parseID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}
