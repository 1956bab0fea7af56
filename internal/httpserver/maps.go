package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/agencybankai-hash/deca-website-sub001/internal/artifact"
	custommw "github.com/agencybankai-hash/deca-website-sub001/internal/httpserver/middleware"
	"github.com/agencybankai-hash/deca-website-sub001/internal/i18n"
	"github.com/agencybankai-hash/deca-website-sub001/internal/platform/httpx"
	"github.com/agencybankai-hash/deca-website-sub001/internal/platform/requestctx"
	"github.com/agencybankai-hash/deca-website-sub001/internal/regions"
	"github.com/agencybankai-hash/deca-website-sub001/internal/servicearea"
	"github.com/agencybankai-hash/deca-website-sub001/internal/statemap"
)

const pagePath = "/service-area"

type mapHandlers struct {
	table      *statemap.Table
	area       *servicearea.Config
	bundle     *i18n.Bundle
	width      int
	height     int
	showLabels bool
	baseURL    string
	templates  *template.Template
	regions    []byte

	hovers metric.Int64Counter
	clicks metric.Int64Counter
}

func newMapHandlers(cfg Config) (*mapHandlers, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	body, err := artifact.Marshal(cfg.Table.Records())
	if err != nil {
		return nil, err
	}
	hovers, err := cfg.Meter.Int64Counter("statemap.hovers",
		metric.WithDescription("Tooltip fragments served, by region"))
	if err != nil {
		return nil, fmt.Errorf("httpserver: create counter: %w", err)
	}
	clicks, err := cfg.Meter.Int64Counter("statemap.clicks",
		metric.WithDescription("Region clicks relayed, by region"))
	if err != nil {
		return nil, fmt.Errorf("httpserver: create counter: %w", err)
	}
	return &mapHandlers{
		table:      cfg.Table,
		area:       cfg.ServiceArea,
		bundle:     cfg.Bundle,
		width:      cfg.MapWidth,
		height:     cfg.MapHeight,
		showLabels: cfg.ShowLabels,
		baseURL:    cfg.BaseURL,
		templates:  tmpl,
		regions:    body,
		hovers:     hovers,
		clicks:     clicks,
	}, nil
}

// visit is the per-request map state carried in the URL.
type visit struct {
	lang      string
	langParam string
	selected  []string
}

func (h *mapHandlers) visit(r *http.Request) visit {
	base, _ := requestctx.Locale(r.Context()).Base()
	v := visit{lang: base.String(), langParam: r.URL.Query().Get("lang")}
	for _, code := range regions.ParseCodes(r.URL.Query().Get("selected")) {
		if _, ok := h.table.Record(code); ok {
			v.selected = append(v.selected, code)
		}
	}
	sort.Strings(v.selected)
	return v
}

// query encodes the visit; commas stay literal so URLs read as ?selected=CA,TX.
func (v visit) query() string {
	var parts []string
	if len(v.selected) > 0 {
		parts = append(parts, "selected="+strings.Join(v.selected, ","))
	}
	if v.langParam != "" {
		parts = append(parts, "lang="+url.QueryEscape(v.langParam))
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}

func (v visit) toggled(code string) visit {
	out := v
	out.selected = nil
	found := false
	for _, c := range v.selected {
		if c == code {
			found = true
			continue
		}
		out.selected = append(out.selected, c)
	}
	if !found {
		out.selected = append(out.selected, code)
		sort.Strings(out.selected)
	}
	return out
}

// newMap builds the per-request Map. Delivery states and the visitor's
// picks are both highlighted; group and per-state colors override them.
func (h *mapHandlers) newMap(v visit, onClick statemap.ClickFunc) *statemap.Map {
	highlighted := append(append([]string{}, h.area.Delivery()...), v.selected...)
	return statemap.New(h.table, statemap.Config{
		OnRegionClick:  onClick,
		Highlighted:    highlighted,
		ColorOverrides: h.area.ColorOverrides(),
		Width:          h.width,
		Height:         h.height,
		Theme:          h.area.Theme(),
		ShowLabels:     h.showLabels,
	})
}

func (h *mapHandlers) renderOptions(v visit) statemap.RenderOptions {
	q := v.query()
	return statemap.RenderOptions{
		ID:        statemap.DefaultElementID,
		AriaLabel: h.bundle.T(v.lang, "map.aria_label"),
		Endpoints: statemap.Endpoints{
			Hover:  func(code string) string { return "/map/regions/" + code + "/tooltip" },
			Leave:  "/map/tooltip",
			Select: func(code string) string { return "/map/regions/" + code + "/select" + q },
		},
	}
}

func (h *mapHandlers) page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v := h.visit(r)
	m := h.newMap(v, nil)

	mapHTML, err := renderHTML(ctx, m.Component(h.renderOptions(v)))
	if err != nil {
		h.fail(w, r, "render map", err)
		return
	}
	view := h.pageView(v, mapHTML)
	h.execute(w, r, "page", view)
}

func (h *mapHandlers) tooltip(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	v := h.visit(r)
	m := h.newMap(v, nil)
	if !m.SetHovered(code) {
		httpx.Respond(w, r, httpx.NotFound("unknown region").WithDetails(map[string]any{"code": code}))
		return
	}
	h.hovers.Add(r.Context(), 1, metric.WithAttributes(attribute.String("code", code)))
	h.component(w, r, m.TooltipComponent(h.renderOptions(v)))
}

func (h *mapHandlers) leave(w http.ResponseWriter, r *http.Request) {
	v := h.visit(r)
	h.component(w, r, h.newMap(v, nil).TooltipComponent(h.renderOptions(v)))
}

// selectRegion relays the click through the map's callback, which toggles
// the region in the visitor's selection, and answers with the redrawn map
// plus an out-of-band selection panel.
func (h *mapHandlers) selectRegion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := strings.ToUpper(chi.URLParam(r, "code"))
	v := h.visit(r)
	if _, ok := h.table.Record(code); !ok {
		httpx.Respond(w, r, httpx.NotFound("unknown region").WithDetails(map[string]any{"code": code}))
		return
	}

	next := v
	m := h.newMap(v, func(code, name string) {
		next = v.toggled(code)
		h.clicks.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
		requestctx.Logger(ctx).Info("region clicked",
			zap.String("code", code),
			zap.String("name", name),
			zap.Int("selected", len(next.selected)),
		)
	})
	m.Click(code)

	mapHTML, err := renderHTML(ctx, h.newMap(next, nil).Component(h.renderOptions(next)))
	if err != nil {
		h.fail(w, r, "render map", err)
		return
	}
	sel := h.selectionView(next)
	sel.OOB = true

	var buf bytes.Buffer
	buf.WriteString(string(mapHTML))
	if err := h.templates.ExecuteTemplate(&buf, "selection", sel); err != nil {
		h.fail(w, r, "render selection", err)
		return
	}
	custommw.ReplaceURL(w, pagePath+next.query())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *mapHandlers) regionsJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(h.regions)
}

func (h *mapHandlers) preview(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.newMap(h.visit(r), nil).RenderPNG(&buf); err != nil {
		h.fail(w, r, "render preview", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(buf.Bytes())
}

func (h *mapHandlers) component(w http.ResponseWriter, r *http.Request, c templ.Component) {
	templ.Handler(c).ServeHTTP(w, r)
}

func (h *mapHandlers) execute(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.fail(w, r, "render "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *mapHandlers) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	requestctx.Logger(r.Context()).Error(op+" failed", zap.Error(err))
	httpx.Respond(w, r, httpx.Internal())
}

// renderHTML renders c for embedding in an html/template page. Component
// output is already escaped.
func renderHTML(ctx context.Context, c templ.Component) (template.HTML, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
