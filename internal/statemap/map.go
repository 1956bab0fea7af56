// Package statemap renders the service-area map from the boundary table
// and tracks the pointer state of one rendered instance.
package statemap

import (
	"github.com/agencybankai-hash/deca-website-sub001/internal/artifact"
)

// ClickFunc receives the code and display name of a clicked region.
type ClickFunc func(code, name string)

// Theme holds the colors used when no override applies.
type Theme struct {
	Idle      string `yaml:"idle"`
	Hover     string `yaml:"hover"`
	Highlight string `yaml:"highlight"`
	Stroke    string `yaml:"stroke"`
	Label     string `yaml:"label"`
}

// DefaultTheme is the brand palette.
var DefaultTheme = Theme{
	Idle:      "#d9dee5",
	Hover:     "#8fb3dc",
	Highlight: "#1d4f91",
	Stroke:    "#ffffff",
	Label:     "#27313d",
}

// merged fills empty fields from DefaultTheme.
func (t Theme) merged() Theme {
	if t.Idle == "" {
		t.Idle = DefaultTheme.Idle
	}
	if t.Hover == "" {
		t.Hover = DefaultTheme.Hover
	}
	if t.Highlight == "" {
		t.Highlight = DefaultTheme.Highlight
	}
	if t.Stroke == "" {
		t.Stroke = DefaultTheme.Stroke
	}
	if t.Label == "" {
		t.Label = DefaultTheme.Label
	}
	return t
}

// Config is what the embedding page supplies.
type Config struct {
	OnRegionClick  ClickFunc
	Highlighted    []string
	ColorOverrides map[string]string
	// Width and Height are the nominal surface size in pixels. The viewBox
	// stays fixed and is scaled to fit. Zero means the viewBox size.
	Width      int
	Height     int
	Theme      Theme
	ShowLabels bool
}

// Map is one rendered instance. It is not safe for concurrent use; each
// page render owns its own Map while the Table is shared.
type Map struct {
	table       *Table
	onClick     ClickFunc
	highlighted map[string]struct{}
	overrides   map[string]string
	width       int
	height      int
	theme       Theme
	showLabels  bool

	hovered string
}

// New builds a Map over table. A nil table behaves as an empty one.
func New(table *Table, cfg Config) *Map {
	if table == nil {
		table = EmptyTable()
	}
	m := &Map{
		table:       table,
		onClick:     cfg.OnRegionClick,
		highlighted: make(map[string]struct{}, len(cfg.Highlighted)),
		overrides:   make(map[string]string, len(cfg.ColorOverrides)),
		width:       cfg.Width,
		height:      cfg.Height,
		theme:       cfg.Theme.merged(),
		showLabels:  cfg.ShowLabels,
	}
	for _, code := range cfg.Highlighted {
		m.highlighted[code] = struct{}{}
	}
	for code, color := range cfg.ColorOverrides {
		if color != "" {
			m.overrides[code] = color
		}
	}
	if m.width <= 0 {
		m.width = artifact.ViewportWidth
	}
	if m.height <= 0 {
		m.height = artifact.ViewportHeight
	}
	return m
}

// Table returns the boundary table the map draws.
func (m *Map) Table() *Table { return m.table }

// Size returns the nominal surface size in pixels.
func (m *Map) Size() (int, int) { return m.width, m.height }

// Theme returns the effective theme.
func (m *Map) Theme() Theme { return m.theme }

// Hovered returns the hovered code, if any.
func (m *Map) Hovered() (string, bool) {
	return m.hovered, m.hovered != ""
}

// SetHovered marks code as hovered, replacing any previous hover. Codes
// without a shape are ignored.
func (m *Map) SetHovered(code string) bool {
	if _, ok := m.table.Record(code); !ok {
		return false
	}
	m.hovered = code
	return true
}

// ClearHovered clears the hover.
func (m *Map) ClearHovered() {
	m.hovered = ""
}

// PointerEnter handles the pointer entering the shape for code.
func (m *Map) PointerEnter(code string) {
	m.SetHovered(code)
}

// PointerLeave handles the pointer leaving the shape for code. A stale
// leave for a shape that is no longer hovered is ignored.
func (m *Map) PointerLeave(code string) {
	if m.hovered == code {
		m.ClearHovered()
	}
}

// PointerMove hit-tests (x, y) in viewBox coordinates and applies the
// resulting enter/leave transition. It returns the code now hovered.
func (m *Map) PointerMove(x, y float64) (string, bool) {
	code, ok := m.table.HitTest(x, y)
	if !ok {
		if m.hovered != "" {
			m.PointerLeave(m.hovered)
		}
		return "", false
	}
	if code != m.hovered {
		m.PointerEnter(code)
	}
	return code, true
}

// Click relays a click on code to the embedder. Unknown codes and a nil
// callback are no-ops.
func (m *Map) Click(code string) {
	if m.onClick == nil {
		return
	}
	rec, ok := m.table.Record(code)
	if !ok {
		return
	}
	m.onClick(code, rec.Name)
}

// Fill resolves the display color of code from the current state.
func (m *Map) Fill(code string) string {
	return ResolveColor(code, m.overrides, m.highlighted, m.hovered, m.theme)
}

// ResolveColor applies the precedence override, highlighted, hovered,
// idle. Empty theme fields fall back to DefaultTheme.
func ResolveColor(code string, overrides map[string]string, highlighted map[string]struct{}, hovered string, theme Theme) string {
	theme = theme.merged()
	if c, ok := overrides[code]; ok && c != "" {
		return c
	}
	if _, ok := highlighted[code]; ok {
		return theme.Highlight
	}
	if hovered != "" && code == hovered {
		return theme.Hover
	}
	return theme.Idle
}

// Tooltip is the derived tooltip state.
type Tooltip struct {
	Visible bool
	Code    string
	Name    string
	X, Y    float64
}

// Tooltip derives the tooltip from the hover; it is visible exactly when
// something is hovered.
func (m *Map) Tooltip() Tooltip {
	if m.hovered == "" {
		return Tooltip{}
	}
	rec, ok := m.table.Record(m.hovered)
	if !ok {
		return Tooltip{}
	}
	return Tooltip{Visible: true, Code: m.hovered, Name: rec.Name, X: rec.CX, Y: rec.CY}
}

// Shape is the render model of one region.
type Shape struct {
	Code        string
	Name        string
	D           string
	CX, CY      float64
	Fill        string
	Hovered     bool
	Highlighted bool
	Overridden  bool
}

// Shapes returns one shape per record in code order, with fills resolved
// against the current state.
func (m *Map) Shapes() []Shape {
	codes := m.table.Codes()
	out := make([]Shape, 0, len(codes))
	for _, code := range codes {
		rec, _ := m.table.Record(code)
		_, hl := m.highlighted[code]
		_, ov := m.overrides[code]
		out = append(out, Shape{
			Code:        code,
			Name:        rec.Name,
			D:           rec.D,
			CX:          rec.CX,
			CY:          rec.CY,
			Fill:        m.Fill(code),
			Hovered:     code == m.hovered,
			Highlighted: hl,
			Overridden:  ov,
		})
	}
	return out
}
