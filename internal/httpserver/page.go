package httpserver

import (
	"embed"
	"fmt"
	"html/template"

	"golang.org/x/text/language"

	"github.com/agencybankai-hash/deca-website-sub001/internal/regions"
	"github.com/agencybankai-hash/deca-website-sub001/internal/seo"
)

const businessName = "DECA Windows & Doors"

//go:embed templates/*.tmpl
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	t, err := template.New("_root").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("httpserver: parse templates: %w", err)
	}
	return t, nil
}

type pageView struct {
	Lang         string
	Meta         seo.Meta
	JSONLD       map[string]any
	Heading      string
	Intro        string
	Caption      template.HTML
	Map          template.HTML
	MapAvailable bool
	Fallback     string
	Legend       legendView
	Selection    selectionView
}

type legendView struct {
	Title string
	Items []legendItem
}

type legendItem struct {
	Label string
	Color string
}

type selectionView struct {
	Title      string
	Empty      string
	ClearURL   string
	ClearLabel string
	Items      []selectionItem
	OOB        bool
}

type selectionItem struct {
	Code      string
	Name      string
	Message   string
	Delivered bool
}

func (h *mapHandlers) pageView(v visit, mapHTML template.HTML) pageView {
	title := h.bundle.T(v.lang, "page.title")
	description := h.bundle.T(v.lang, "page.description")
	canonical := seo.Absolute(h.baseURL, pagePath)
	image := seo.Absolute(h.baseURL, "/map/preview.png")

	var served []string
	for _, code := range h.area.Delivery() {
		if r, ok := regions.LookupCode(code); ok {
			served = append(served, r.Name)
		}
	}

	return pageView{
		Lang: v.lang,
		Meta: seo.Meta{
			Title:       title,
			Description: description,
			Canonical:   canonical,
			OG: seo.OpenGraph{
				Title:       title,
				Description: description,
				Image:       image,
				URL:         canonical,
				Type:        "website",
			},
		},
		JSONLD:       seo.ServiceAreaBusiness(businessName, seo.Absolute(h.baseURL, "/"), image, served),
		Heading:      h.bundle.T(v.lang, "page.heading"),
		Intro:        h.bundle.T(v.lang, "page.intro"),
		Caption:      h.area.Caption(language.Make(v.lang)),
		Map:          mapHTML,
		MapAvailable: h.table.Len() > 0,
		Fallback:     h.bundle.T(v.lang, "map.fallback"),
		Legend:       h.legendView(v),
		Selection:    h.selectionView(v),
	}
}

func (h *mapHandlers) legendView(v visit) legendView {
	theme := h.area.Theme()
	items := []legendItem{{Label: h.bundle.T(v.lang, "legend.delivery"), Color: theme.Highlight}}
	for _, g := range h.area.Groups() {
		items = append(items, legendItem{Label: g.Label, Color: g.Color})
	}
	items = append(items, legendItem{Label: h.bundle.T(v.lang, "legend.idle"), Color: theme.Idle})
	return legendView{Title: h.bundle.T(v.lang, "legend.title"), Items: items}
}

func (h *mapHandlers) selectionView(v visit) selectionView {
	view := selectionView{
		Title: h.bundle.T(v.lang, "selection.title"),
		Empty: h.bundle.T(v.lang, "selection.empty"),
	}
	for _, code := range v.selected {
		rec, ok := h.table.Record(code)
		if !ok {
			continue
		}
		name := rec.Name
		delivered := h.area.Delivers(code)
		key := "selection.not_yet"
		if delivered {
			key = "selection.delivers"
		}
		view.Items = append(view.Items, selectionItem{
			Code:      code,
			Name:      name,
			Message:   h.bundle.Format(v.lang, key, map[string]string{"name": name}),
			Delivered: delivered,
		})
	}
	if len(view.Items) > 0 {
		reset := visit{langParam: v.langParam}
		view.ClearURL = pagePath + reset.query()
		view.ClearLabel = h.bundle.T(v.lang, "selection.clear")
	}
	return view
}
