package statemap

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/agencybankai-hash/deca-website-sub001/internal/artifact"
)

// DefaultElementID is the id of the map container when none is given.
const DefaultElementID = "service-area-map"

// Endpoints are the htmx URLs the rendered map calls back to. Empty
// fields leave the matching attributes out, which yields a static map.
type Endpoints struct {
	// Hover returns the tooltip fragment for code (GET on mouseenter).
	Hover func(code string) string
	// Leave returns the cleared tooltip (GET on mouseleave of the map).
	Leave string
	// Select relays a click on code (POST) and returns the whole map.
	Select func(code string) string
}

// RenderOptions tune the markup of one render.
type RenderOptions struct {
	ID        string
	AriaLabel string
	Endpoints Endpoints
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.ID == "" {
		o.ID = DefaultElementID
	}
	if o.AriaLabel == "" {
		o.AriaLabel = "Service area map"
	}
	return o
}

func (o RenderOptions) tooltipID() string {
	return o.ID + "-tooltip"
}

// Component renders the map as an inline SVG inside a positioned container,
// followed by the tooltip element.
func (m *Map) Component(opts RenderOptions) templ.Component {
	opts = opts.withDefaults()
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &markup{}
		m.writeMap(b, opts)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// TooltipComponent renders only the tooltip element, for fragment swaps.
func (m *Map) TooltipComponent(opts RenderOptions) templ.Component {
	opts = opts.withDefaults()
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &markup{}
		m.writeTooltip(b, opts)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func (m *Map) writeMap(b *markup, opts RenderOptions) {
	shapes := m.Shapes()

	b.open("div",
		"id", opts.ID,
		"class", "deca-map",
		"data-regions", strconv.Itoa(len(shapes)),
		"style", "position:relative;--deca-map-hover:"+m.theme.Hover,
	)
	b.open("svg",
		"xmlns", "http://www.w3.org/2000/svg",
		"viewBox", artifact.ViewBox(),
		"width", strconv.Itoa(m.width),
		"height", strconv.Itoa(m.height),
		"preserveAspectRatio", "xMidYMid meet",
		"role", "img",
		"aria-label", opts.AriaLabel,
		"class", "deca-map__surface",
	)

	groupAttrs := []string{"class", "deca-map__regions"}
	if opts.Endpoints.Leave != "" {
		groupAttrs = append(groupAttrs,
			"hx-get", opts.Endpoints.Leave,
			"hx-trigger", "mouseleave",
			"hx-target", "#"+opts.tooltipID(),
			"hx-swap", "outerHTML",
			"hx-sync", tooltipSync,
		)
	}
	b.open("g", groupAttrs...)
	for _, s := range shapes {
		m.writeShape(b, s, opts)
	}
	b.close("g")

	if m.showLabels && len(shapes) > 0 {
		b.open("g", "class", "deca-map__labels", "pointer-events", "none")
		for _, s := range shapes {
			b.open("text",
				"x", formatCoord(s.CX),
				"y", formatCoord(s.CY),
				"text-anchor", "middle",
				"dominant-baseline", "central",
				"fill", m.theme.Label,
				"class", "deca-map__label",
			)
			b.text(s.Code)
			b.close("text")
		}
		b.close("g")
	}
	b.close("svg")

	m.writeTooltip(b, opts)
	b.close("div")
}

// tooltipSync queues every tooltip request on the regions group so a newer
// hover or leave aborts one still in flight.
const tooltipSync = "closest .deca-map__regions:replace"

func (m *Map) writeShape(b *markup, s Shape, opts RenderOptions) {
	wrapped := opts.Endpoints.Select != nil
	if wrapped {
		b.open("g",
			"class", "deca-map__hit",
			"hx-post", opts.Endpoints.Select(s.Code),
			"hx-trigger", "click",
			"hx-target", "#"+opts.ID,
			"hx-swap", "outerHTML",
		)
	}

	classes := []string{"deca-map__region"}
	if s.Highlighted {
		classes = append(classes, "is-highlighted")
	}
	if s.Hovered {
		classes = append(classes, "is-hovered")
	}
	if s.Overridden {
		classes = append(classes, "has-override")
	}
	attrs := []string{
		"id", opts.ID + "-" + s.Code,
		"class", strings.Join(classes, " "),
		"data-code", s.Code,
		"data-name", s.Name,
		"d", s.D,
		"fill", s.Fill,
		"fill-rule", "evenodd",
		"stroke", m.theme.Stroke,
		"stroke-width", "0.75",
	}
	if opts.Endpoints.Hover != nil {
		attrs = append(attrs,
			"hx-get", opts.Endpoints.Hover(s.Code),
			"hx-trigger", "mouseenter",
			"hx-target", "#"+opts.tooltipID(),
			"hx-swap", "outerHTML",
			"hx-sync", tooltipSync,
		)
	}
	b.open("path", attrs...)
	b.open("title")
	b.text(s.Name)
	b.close("title")
	b.close("path")

	if wrapped {
		b.close("g")
	}
}

// writeTooltip always emits the container so fragment swaps have a stable
// target; its content exists only while something is hovered.
func (m *Map) writeTooltip(b *markup, opts RenderOptions) {
	tip := m.Tooltip()
	if !tip.Visible {
		b.open("div",
			"id", opts.tooltipID(),
			"class", "deca-map__tooltip",
			"role", "tooltip",
			"hidden", "",
		)
		b.close("div")
		return
	}
	style := "position:absolute;left:" + percent(tip.X, artifact.ViewportWidth) +
		";top:" + percent(tip.Y, artifact.ViewportHeight)
	b.open("div",
		"id", opts.tooltipID(),
		"class", "deca-map__tooltip is-visible",
		"role", "tooltip",
		"data-code", tip.Code,
		"style", style,
	)
	b.text(tip.Name)
	b.close("div")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func percent(v float64, extent int) string {
	return strconv.FormatFloat(v/float64(extent)*100, 'f', 2, 64) + "%"
}

// markup is a minimal escaping element writer.
type markup struct {
	strings.Builder
}

func (b *markup) open(tag string, attrs ...string) {
	b.WriteByte('<')
	b.WriteString(tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		b.WriteByte(' ')
		b.WriteString(attrs[i])
		b.WriteString(`="`)
		b.WriteString(templ.EscapeString(attrs[i+1]))
		b.WriteByte('"')
	}
	b.WriteByte('>')
}

func (b *markup) close(tag string) {
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
}

func (b *markup) text(s string) {
	b.WriteString(templ.EscapeString(s))
}
