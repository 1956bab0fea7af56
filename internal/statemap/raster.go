package statemap

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gogpu/gg"

	"github.com/agencybankai-hash/deca-website-sub001/internal/artifact"
)

// RenderPNG rasterizes the current state at the map's nominal size. The
// viewBox is scaled uniformly and centred, matching preserveAspectRatio
// "xMidYMid meet" in the SVG rendering.
func (m *Map) RenderPNG(w io.Writer) error {
	dc := gg.NewContext(m.width, m.height)
	defer dc.Close()

	dc.ClearWithColor(gg.White)

	scale := math.Min(float64(m.width)/artifact.ViewportWidth, float64(m.height)/artifact.ViewportHeight)
	offX := (float64(m.width) - artifact.ViewportWidth*scale) / 2
	offY := (float64(m.height) - artifact.ViewportHeight*scale) / 2
	project := func(p gg.Point) gg.Point {
		return gg.Pt(p.X*scale+offX, p.Y*scale+offY)
	}

	dc.SetFillRule(gg.FillRuleEvenOdd)
	for _, s := range m.Shapes() {
		shape := m.table.shape(s.Code)
		if shape == nil {
			continue
		}
		trace(dc, shape, project)
		dc.SetHexColor(rasterColor(s.Fill, m.theme.Idle))
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("statemap: fill %s: %w", s.Code, err)
		}
		trace(dc, shape, project)
		dc.SetHexColor(rasterColor(m.theme.Stroke, DefaultTheme.Stroke))
		dc.SetLineWidth(math.Max(0.5, 0.75*scale))
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("statemap: stroke %s: %w", s.Code, err)
		}
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("statemap: encode png: %w", err)
	}
	return nil
}

// trace replays a parsed shape onto the context's current path.
func trace(dc *gg.Context, shape *gg.Path, project func(gg.Point) gg.Point) {
	for _, elem := range shape.Elements() {
		switch e := elem.(type) {
		case gg.MoveTo:
			p := project(e.Point)
			dc.MoveTo(p.X, p.Y)
		case gg.LineTo:
			p := project(e.Point)
			dc.LineTo(p.X, p.Y)
		case gg.QuadTo:
			c, p := project(e.Control), project(e.Point)
			dc.QuadraticTo(c.X, c.Y, p.X, p.Y)
		case gg.CubicTo:
			c1, c2, p := project(e.Control1), project(e.Control2), project(e.Point)
			dc.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
		case gg.Close:
			dc.ClosePath()
		}
	}
}

// rasterColor accepts hex colors only; anything else (CSS names, var())
// falls back so a preview never fails on a browser-only color.
func rasterColor(value, fallback string) string {
	if isHexColor(value) {
		return value
	}
	if isHexColor(fallback) {
		return fallback
	}
	return DefaultTheme.Idle
}

func isHexColor(s string) bool {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}
