// Package pathgen turns a pre-projected state topology into the boundary
// table consumed by the service-area map.
package pathgen

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/agencybankai-hash/deca-website-sub001/internal/artifact"
	"github.com/agencybankai-hash/deca-website-sub001/internal/regions"
	"github.com/agencybankai-hash/deca-website-sub001/internal/topology"
)

const (
	// DefaultObject is the topology object holding state geometries.
	DefaultObject = "states"
	// DefaultAnchorPrecision is the number of decimals kept for label anchors.
	DefaultAnchorPrecision = 1

	metricNamespace = "github.com/agencybankai-hash/deca-website-sub001/internal/pathgen"
)

// Skip reasons reported per feature.
const (
	SkipUnmapped = "unmapped"
	SkipEmpty    = "empty_geometry"
	SkipAnchor   = "no_anchor"
)

// LookupFunc resolves a topology feature id to a region.
type LookupFunc func(id string) (regions.Region, bool)

// Report summarises one generation run.
type Report struct {
	Features int
	Emitted  int
	Skipped  map[string]int
	// Merged counts features folded into an earlier feature with the same code.
	Merged int
}

// Generator builds boundary tables. The zero value is not usable; use New.
type Generator struct {
	object          string
	anchorPrecision int
	pathPrecision   int
	lookup          LookupFunc
	logger          *zap.Logger

	emitted metric.Int64Counter
	skipped metric.Int64Counter
}

type generatorConfig struct {
	object          string
	anchorPrecision int
	pathPrecision   int
	lookup          LookupFunc
	logger          *zap.Logger
	meter           metric.Meter
}

// Option customises Generator construction.
type Option func(*generatorConfig)

// WithObject selects the topology object to read geometries from.
func WithObject(name string) Option {
	return func(cfg *generatorConfig) {
		if name != "" {
			cfg.object = name
		}
	}
}

// WithAnchorPrecision sets how many decimals label anchors keep.
func WithAnchorPrecision(decimals int) Option {
	return func(cfg *generatorConfig) {
		if decimals >= 0 {
			cfg.anchorPrecision = decimals
		}
	}
}

// WithPathPrecision sets how many decimals path coordinates keep.
func WithPathPrecision(decimals int) Option {
	return func(cfg *generatorConfig) {
		if decimals >= 0 {
			cfg.pathPrecision = decimals
		}
	}
}

// WithLookup replaces the FIPS lookup table.
func WithLookup(fn LookupFunc) Option {
	return func(cfg *generatorConfig) {
		if fn != nil {
			cfg.lookup = fn
		}
	}
}

// WithLogger sets the logger used for per-feature diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *generatorConfig) {
		cfg.logger = logger
	}
}

// WithMeter overrides the meter used for run counters.
func WithMeter(meter metric.Meter) Option {
	return func(cfg *generatorConfig) {
		cfg.meter = meter
	}
}

// New constructs a Generator.
func New(opts ...Option) (*Generator, error) {
	cfg := generatorConfig{
		object:          DefaultObject,
		anchorPrecision: DefaultAnchorPrecision,
		pathPrecision:   DefaultPathPrecision,
		lookup:          regions.LookupFIPS,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.meter == nil {
		cfg.meter = otel.Meter(metricNamespace)
	}

	emitted, err := cfg.meter.Int64Counter("pathgen.records.emitted",
		metric.WithDescription("Boundary records written to the artifact"))
	if err != nil {
		return nil, fmt.Errorf("pathgen: create counter: %w", err)
	}
	skipped, err := cfg.meter.Int64Counter("pathgen.features.skipped",
		metric.WithDescription("Topology features filtered out, by reason"))
	if err != nil {
		return nil, fmt.Errorf("pathgen: create counter: %w", err)
	}

	return &Generator{
		object:          cfg.object,
		anchorPrecision: cfg.anchorPrecision,
		pathPrecision:   cfg.pathPrecision,
		lookup:          cfg.lookup,
		logger:          cfg.logger,
		emitted:         emitted,
		skipped:         skipped,
	}, nil
}

type pending struct {
	region regions.Region
	polys  []topology.Polygon
}

// Generate builds the boundary table from topo. Features are filtered
// silently; only a missing object or a corrupt topology is an error.
func (g *Generator) Generate(ctx context.Context, topo *topology.Topology) (artifact.Table, Report, error) {
	report := Report{Skipped: map[string]int{}}
	if topo == nil {
		return nil, report, fmt.Errorf("pathgen: %w: nil topology", topology.ErrInvalidTopology)
	}
	features, err := topo.Features(g.object)
	if err != nil {
		return nil, report, err
	}
	report.Features = len(features)

	var order []string
	byCode := map[string]*pending{}
	for _, f := range features {
		region, ok := g.lookup(f.ID)
		if !ok {
			g.skip(ctx, &report, SkipUnmapped, f.ID)
			continue
		}
		if p, seen := byCode[region.Code]; seen {
			p.polys = append(p.polys, f.Polygons...)
			report.Merged++
			continue
		}
		byCode[region.Code] = &pending{region: region, polys: f.Polygons}
		order = append(order, region.Code)
	}

	table := artifact.Table{}
	for _, code := range order {
		p := byCode[code]
		shape := BuildPath(p.polys)
		d := FormatPath(shape, g.pathPrecision)
		if d == "" {
			g.skip(ctx, &report, SkipEmpty, p.region.FIPS)
			continue
		}
		anchor, ok := Anchor(p.polys, shape)
		if !ok {
			g.skip(ctx, &report, SkipAnchor, p.region.FIPS)
			continue
		}
		table[code] = artifact.Record{
			Abbr: p.region.Code,
			Name: p.region.Name,
			D:    d,
			CX:   roundAnchor(anchor.X, g.anchorPrecision),
			CY:   roundAnchor(anchor.Y, g.anchorPrecision),
		}
	}
	report.Emitted = len(table)
	g.emitted.Add(ctx, int64(report.Emitted))
	return table, report, nil
}

// roundAnchor rounds like Round but never yields negative zero.
func roundAnchor(v float64, precision int) float64 {
	v = Round(v, precision)
	if v == 0 {
		v = 0
	}
	return v
}

func (g *Generator) skip(ctx context.Context, report *Report, reason, id string) {
	report.Skipped[reason]++
	g.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	g.logger.Debug("feature skipped", zap.String("id", id), zap.String("reason", reason))
}

// GenerateFile reads the topology at input and writes the artifact to
// output. Nothing is written unless the whole run succeeds, and the write
// itself replaces output atomically.
func (g *Generator) GenerateFile(ctx context.Context, input, output string) (Report, error) {
	raw, err := os.ReadFile(input)
	if err != nil {
		return Report{}, fmt.Errorf("pathgen: read input: %w", err)
	}
	topo, err := topology.Parse(raw)
	if err != nil {
		return Report{}, fmt.Errorf("pathgen: parse %s: %w", input, err)
	}
	table, report, err := g.Generate(ctx, topo)
	if err != nil {
		return report, err
	}
	body, err := artifact.Marshal(table)
	if err != nil {
		return report, err
	}
	if err := atomic.WriteFile(output, bytes.NewReader(body)); err != nil {
		return report, fmt.Errorf("pathgen: write %s: %w", output, err)
	}
	return report, nil
}
