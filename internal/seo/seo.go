// Package seo builds the head metadata and schema.org payload of the
// service-area page.
package seo

import "strings"

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	URL         string
	Type        string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	OG          OpenGraph
}

// Absolute joins base and path. With an empty base the path stays relative.
func Absolute(base, path string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// ServiceAreaBusiness returns a HomeAndConstructionBusiness schema whose
// areaServed lists the given state names.
func ServiceAreaBusiness(name, url, imageURL string, states []string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "HomeAndConstructionBusiness",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	if len(states) > 0 {
		served := make([]map[string]any, 0, len(states))
		for _, s := range states {
			served = append(served, map[string]any{"@type": "State", "name": s})
		}
		m["areaServed"] = served
	}
	return m
}
