// Command web serves the public service-area page with the interactive map.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/agencybankai-hash/deca-website-sub001/internal/httpserver"
	"github.com/agencybankai-hash/deca-website-sub001/internal/httpserver/middleware"
	"github.com/agencybankai-hash/deca-website-sub001/internal/i18n"
	"github.com/agencybankai-hash/deca-website-sub001/internal/platform/config"
	"github.com/agencybankai-hash/deca-website-sub001/internal/platform/observability"
	"github.com/agencybankai-hash/deca-website-sub001/internal/servicearea"
	"github.com/agencybankai-hash/deca-website-sub001/internal/statemap"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("web")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load(ctx)
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			logger.Fatal("invalid configuration", zap.Strings("fields", verr.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	logger = logger.With(zap.String("env", cfg.Environment))

	table := statemap.LoadTableOrEmpty(cfg.Map.RegionsPath, logger)
	area := loadServiceArea(cfg.Map.ServiceAreaPath, logger)

	bundle, err := i18n.Default()
	if err != nil {
		logger.Fatal("failed to load translations", zap.Error(err))
	}

	server, err := httpserver.New(httpserver.Config{
		Address:      net.JoinHostPort("", cfg.Server.Port),
		ProjectID:    cfg.ProjectID,
		BaseURL:      cfg.Server.BaseURL,
		Table:        table,
		ServiceArea:  area,
		Bundle:       bundle,
		Locales:      middleware.ParseLocales(cfg.Locales),
		MapWidth:     cfg.Map.Width,
		MapHeight:    cfg.Map.Height,
		ShowLabels:   cfg.Map.ShowLabels,
		Logger:       logger,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})
	if err != nil {
		logger.Fatal("failed to build http server", zap.Error(err))
	}

	shutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("web listening", zap.String("addr", server.Addr), zap.Int("regions", table.Len()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown.Done()
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// loadServiceArea falls back to an empty config when the file is absent so
// a fresh checkout still serves a plain map. A malformed file is fatal.
func loadServiceArea(path string, logger *zap.Logger) *servicearea.Config {
	area, err := servicearea.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("service-area config missing; no states highlighted", zap.String("path", path))
		return servicearea.Empty()
	case err != nil:
		logger.Fatal("invalid service-area config", zap.String("path", path), zap.Error(err))
	}
	if unknown := area.Unknown(); len(unknown) > 0 {
		logger.Warn("service-area config names unknown states", zap.Strings("codes", unknown))
	}
	return area
}
