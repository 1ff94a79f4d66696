// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"pharmadesk/internal/domain/documents/invoice"
	"pharmadesk/internal/domain/documents/purchase"
	"pharmadesk/internal/infrastructure/http/v1/handlers"
	"pharmadesk/internal/infrastructure/http/v1/middleware"
	"pharmadesk/pkg/logger"
)

// ServiceName identifies the API in traces.
const ServiceName = "pharmadesk"

// RouterConfig holds router configuration.
type RouterConfig struct {
	Invoices  *invoice.Service
	Purchases *purchase.Service

	// Store backs the readiness probe
	Store handlers.Pinger

	// StorageDriver and Version are reported by /health/info
	StorageDriver string
	Version       string

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator enables bearer authentication on /api when set
	JWTValidator middleware.JWTValidator

	// WriteRoles restricts mutating routes; empty allows any authenticated caller
	WriteRoles []string

	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(otelgin.Middleware(ServiceName))
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Store, cfg.StorageDriver, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api")
	if cfg.JWTValidator != nil {
		api.Use(middleware.Auth(cfg.JWTValidator))
	}

	write := []gin.HandlerFunc{}
	if cfg.JWTValidator != nil && len(cfg.WriteRoles) > 0 {
		write = append(write, middleware.RequireRole(cfg.WriteRoles...))
	}

	baseHandler := handlers.NewBaseHandler()

	// --- INVOICES ---
	{
		handler := handlers.NewInvoiceHandler(baseHandler, cfg.Invoices)
		group := api.Group("/invoices")
		RegisterDocumentRoutes(group, handler, write...)
		group.POST("/add", chain(write, handler.Create)...)
	}

	// --- PURCHASES ---
	{
		handler := handlers.NewPurchaseHandler(baseHandler, cfg.Purchases)
		group := api.Group("/purchases")
		RegisterDocumentRoutes(group, handler, write...)
		group.POST("/add", chain(write, handler.Create)...)
		group.PUT("/update/:id", chain(write, handler.Update)...)
	}

	return router
}
