// Package servicearea loads the page-level map settings: which states the
// company delivers to, which are flagged with a custom color, the palette
// and the localized caption shown under the map.
package servicearea

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/agencybankai-hash/deca-website-sub001/internal/regions"
	"github.com/agencybankai-hash/deca-website-sub001/internal/statemap"
)

// ErrInvalidConfig marks a service-area file that cannot be used.
var ErrInvalidConfig = errors.New("servicearea: invalid config")

const defaultCaptionLang = "en"

// Group is a set of states sharing one explicit color, e.g. "coming soon".
type Group struct {
	Label  string   `yaml:"label"`
	Color  string   `yaml:"color"`
	States []string `yaml:"states"`
}

type document struct {
	Theme     statemap.Theme    `yaml:"theme"`
	Delivery  []string          `yaml:"delivery"`
	Groups    []Group           `yaml:"groups"`
	Overrides map[string]string `yaml:"overrides"`
	Caption   map[string]string `yaml:"caption"`
}

// Config is the parsed, normalized service-area file. It is immutable.
type Config struct {
	theme     statemap.Theme
	delivery  []string
	groups    []Group
	overrides map[string]string
	captions  map[string]template.HTML
	unknown   []string
}

// Parse decodes a service-area YAML document. State codes are upper-cased;
// codes that are not known regions are kept (the map ignores them) and
// reported by Unknown.
func Parse(data []byte) (*Config, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := &Config{
		theme:     doc.Theme,
		delivery:  normalizeCodes(doc.Delivery),
		overrides: map[string]string{},
		captions:  map[string]template.HTML{},
	}

	for i, g := range doc.Groups {
		if strings.TrimSpace(g.Color) == "" {
			return nil, fmt.Errorf("%w: group %d (%s) has no color", ErrInvalidConfig, i, g.Label)
		}
		g.States = normalizeCodes(g.States)
		cfg.groups = append(cfg.groups, g)
		for _, code := range g.States {
			cfg.overrides[code] = g.Color
		}
	}
	// Per-state overrides win over group colors.
	for code, color := range doc.Overrides {
		code = strings.ToUpper(strings.TrimSpace(code))
		color = strings.TrimSpace(color)
		if code == "" || color == "" {
			continue
		}
		cfg.overrides[code] = color
	}

	policy := captionPolicy()
	md := goldmark.New()
	for lang, src := range doc.Caption {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("%w: caption language %q: %v", ErrInvalidConfig, lang, err)
		}
		var buf bytes.Buffer
		if err := md.Convert([]byte(src), &buf); err != nil {
			return nil, fmt.Errorf("%w: caption %s: %v", ErrInvalidConfig, lang, err)
		}
		base, _ := tag.Base()
		cfg.captions[base.String()] = template.HTML(policy.SanitizeBytes(buf.Bytes()))
	}

	cfg.unknown = unknownCodes(cfg)
	return cfg, nil
}

// Load reads the service-area file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("servicearea: read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadFS reads the service-area file from fsys.
func LoadFS(fsys fs.FS, name string) (*Config, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("servicearea: read %s: %w", name, err)
	}
	return Parse(data)
}

// Empty is a config with no delivery states and the default palette.
func Empty() *Config {
	return &Config{overrides: map[string]string{}, captions: map[string]template.HTML{}}
}

// Theme returns the configured palette; empty fields use the map defaults.
func (c *Config) Theme() statemap.Theme { return c.theme }

// Delivery returns the delivered state codes in file order.
func (c *Config) Delivery() []string {
	out := make([]string, len(c.delivery))
	copy(out, c.delivery)
	return out
}

// Delivers reports whether code is a delivery state.
func (c *Config) Delivers(code string) bool {
	code = strings.ToUpper(code)
	for _, d := range c.delivery {
		if d == code {
			return true
		}
	}
	return false
}

// Groups returns the color groups, for the map legend.
func (c *Config) Groups() []Group {
	out := make([]Group, len(c.groups))
	copy(out, c.groups)
	return out
}

// ColorOverrides returns a fresh copy of the per-state colors.
func (c *Config) ColorOverrides() map[string]string {
	out := make(map[string]string, len(c.overrides))
	for k, v := range c.overrides {
		out[k] = v
	}
	return out
}

// Caption returns the sanitized caption for tag, falling back to English
// and then to any caption present.
func (c *Config) Caption(tag language.Tag) template.HTML {
	base, _ := tag.Base()
	if html, ok := c.captions[base.String()]; ok {
		return html
	}
	if html, ok := c.captions[defaultCaptionLang]; ok {
		return html
	}
	langs := make([]string, 0, len(c.captions))
	for lang := range c.captions {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	if len(langs) > 0 {
		return c.captions[langs[0]]
	}
	return ""
}

// Unknown lists codes in the file that are not known regions.
func (c *Config) Unknown() []string {
	out := make([]string, len(c.unknown))
	copy(out, c.unknown)
	return out
}

func normalizeCodes(codes []string) []string {
	return regions.ParseCodes(strings.Join(codes, ","))
}

func unknownCodes(c *Config) []string {
	seen := map[string]struct{}{}
	check := func(code string) {
		if _, ok := regions.LookupCode(code); !ok {
			seen[code] = struct{}{}
		}
	}
	for _, code := range c.delivery {
		check(code)
	}
	for code := range c.overrides {
		check(code)
	}
	out := make([]string, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func captionPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "strong", "em")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}
