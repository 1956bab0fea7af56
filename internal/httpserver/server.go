// Package httpserver hosts the public service-area page and the htmx
// endpoints the interactive map calls back to.
package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	custommw "github.com/agencybankai-hash/deca-website-sub001/internal/httpserver/middleware"
	"github.com/agencybankai-hash/deca-website-sub001/internal/i18n"
	"github.com/agencybankai-hash/deca-website-sub001/internal/platform/observability"
	"github.com/agencybankai-hash/deca-website-sub001/internal/servicearea"
	"github.com/agencybankai-hash/deca-website-sub001/internal/statemap"
	"github.com/agencybankai-hash/deca-website-sub001/public"
)

const meterName = "github.com/agencybankai-hash/deca-website-sub001/internal/httpserver"

// Config holds runtime options for the public HTTP server.
type Config struct {
	Address   string
	ProjectID string
	// BaseURL is the public origin for canonical links; empty keeps them relative.
	BaseURL string

	// Table is shared read-only by every request.
	Table       *statemap.Table
	ServiceArea *servicearea.Config
	Bundle      *i18n.Bundle
	Locales     []language.Tag

	MapWidth   int
	MapHeight  int
	ShowLabels bool

	Logger *zap.Logger
	Meter  metric.Meter

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// New constructs the HTTP server with the middleware stack and routes.
func New(cfg Config) (*http.Server, error) {
	router, err := NewRouter(cfg)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       durationOr(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      durationOr(cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       durationOr(cfg.IdleTimeout, 60*time.Second),
	}, nil
}

// NewRouter builds the routes without binding a listener.
func NewRouter(cfg Config) (http.Handler, error) {
	if cfg.Bundle == nil {
		return nil, errors.New("httpserver: i18n bundle is required")
	}
	if cfg.Table == nil {
		cfg.Table = statemap.EmptyTable()
	}
	if cfg.ServiceArea == nil {
		cfg.ServiceArea = servicearea.Empty()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Meter == nil {
		cfg.Meter = otel.Meter(meterName)
	}

	maps, err := newMapHandlers(cfg)
	if err != nil {
		return nil, err
	}
	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("httpserver: embed static: %w", err)
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLoggerMiddleware(cfg.Logger))
	router.Use(observability.TraceMiddleware(cfg.ProjectID))
	router.Use(observability.RequestLoggerMiddleware())
	router.Use(observability.RecoveryMiddleware(cfg.Logger))
	router.Use(custommw.HTMX())
	router.Use(custommw.Locale(cfg.Locales))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/assets/*", http.StripPrefix("/assets/", assetCache(http.FileServer(http.FS(staticContent)))))

	router.Get("/", maps.page)
	router.Get("/service-area", maps.page)

	router.Route("/map", func(r chi.Router) {
		r.Get("/regions.json", maps.regionsJSON)
		r.Get("/preview.png", maps.preview)
		RegisterFragment(r, "/tooltip", maps.leave)
		RegisterFragment(r, "/regions/{code}/tooltip", maps.tooltip)
		r.With(custommw.RequireHTMX()).Post("/regions/{code}/select", maps.selectRegion)
	})
	return router, nil
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}

func assetCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=604800, stale-while-revalidate=86400")
		next.ServeHTTP(w, r)
	})
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
