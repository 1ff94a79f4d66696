// Package main is the entry point for the pharmadesk API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/klauspost/compress/gzhttp"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"pharmadesk/internal/config"
	"pharmadesk/internal/domain/documents"
	"pharmadesk/internal/domain/documents/invoice"
	"pharmadesk/internal/domain/documents/purchase"
	"pharmadesk/internal/domain/registers/stock"
	"pharmadesk/internal/infrastructure/auth"
	v1 "pharmadesk/internal/infrastructure/http/v1"
	"pharmadesk/internal/infrastructure/http/v1/middleware"
	"pharmadesk/pkg/logger"
	"pharmadesk/pkg/numerator"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.IsDevelopment(),
		Fields:      map[string]any{"service": v1.ServiceName, "version": version},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	log.Infow("starting pharmadesk server",
		"version", version,
		"storage", cfg.Storage.Driver,
		"counter", cfg.Counter.Driver,
		"apply_mode", cfg.Stock.Mode(),
	)

	// --- Metrics ---
	meterProvider := sdkmetric.NewMeterProvider()
	otel.SetMeterProvider(meterProvider)
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Warnw("meter provider shutdown failed", "error", err)
		}
	}()

	// --- Storage ---
	be, err := openBackend(ctx, cfg, meterProvider)
	if err != nil {
		log.Fatalw("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
	}
	defer be.close()

	counter, closeCounter, err := openCounter(ctx, cfg, be)
	if err != nil {
		log.Fatalw("failed to open counter", "driver", cfg.Counter.Driver, "error", err)
	}
	defer closeCounter()

	// --- Domain services ---
	numerators := numerator.New(counter, cfg.Numerator.Options())
	engine := stock.NewEngine(be.medicines, stock.WithMeterProvider(meterProvider))
	resolver := documents.NewMedicineResolver(be.medicines)

	invoices := invoice.NewService(invoice.ServiceConfig{
		Repo:             be.invoices,
		TxManager:        be.txManager,
		Numerator:        numerators,
		Stock:            engine,
		Resolver:         resolver,
		ApplyMode:        cfg.Stock.Mode(),
		ReconcileUpdates: cfg.Stock.ReconcileInvoiceUpdates,
	})
	purchases := purchase.NewService(purchase.ServiceConfig{
		Repo:      be.purchases,
		TxManager: be.txManager,
		Numerator: numerators,
		Stock:     engine,
		Resolver:  resolver,
		ApplyMode: cfg.Stock.Mode(),
	})

	// --- Router ---
	var validator middleware.JWTValidator
	if cfg.Auth.Enabled() {
		authCfg := auth.DefaultConfig(cfg.Auth.JWTSecret)
		authCfg.Issuer = cfg.Auth.Issuer
		validator = auth.NewJWTValidator(authCfg)
		log.Infow("bearer authentication enabled", "write_roles", cfg.Auth.WriteRoles)
	} else {
		log.Warn("authentication disabled: set PHARMA_AUTH_JWT_SECRET to enable it")
	}

	router := v1.NewRouter(v1.RouterConfig{
		Invoices:      invoices,
		Purchases:     purchases,
		Store:         be.pinger,
		StorageDriver: cfg.Storage.Driver,
		Version:       version,
		Logger:        log,
		JWTValidator:  validator,
		WriteRoles:    cfg.Auth.WriteRoles,
		Debug:         cfg.App.IsDevelopment(),
	})

	var handler http.Handler = router
	if cfg.HTTP.Gzip {
		handler = gzhttp.GzipHandler(router)
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  2 * cfg.HTTP.WriteTimeout,
	}

	go func() {
		log.Infow("server listening", "port", cfg.App.Port, "gzip", cfg.HTTP.Gzip)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
