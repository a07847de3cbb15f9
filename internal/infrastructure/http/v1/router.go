// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"pvcflow/internal/domain/auth"
	"pvcflow/internal/domain/export"
	"pvcflow/internal/domain/reports"
	"pvcflow/internal/domain/transactions"
	"pvcflow/internal/infrastructure/http/v1/handlers"
	"pvcflow/internal/infrastructure/http/v1/middleware"
	"pvcflow/internal/infrastructure/pdf"
	"pvcflow/internal/infrastructure/storage/postgres"
	"pvcflow/pkg/logger"
)

// RouterConfig holds wired services for route registration.
type RouterConfig struct {
	// Pool is the database connection (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// TransactionService for stock-in transaction endpoints
	TransactionService *transactions.Service

	// ReportService for production report endpoints
	ReportService *reports.Service

	// PDFClient renders certificate exports (may be nil in tests)
	PDFClient *pdf.Client

	// AuditService serves change histories (may be nil in tests)
	AuditService *postgres.AuditService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.PDFClient)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	baseHandler := handlers.NewBaseHandler()
	inflight := export.NewInflightTracker()

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		// Public auth endpoints
		authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)
		publicAuth := apiV1.Group("/auth")
		{
			publicAuth.POST("/register", authHandler.Register)
			publicAuth.POST("/login", authHandler.Login)
			publicAuth.POST("/refresh", authHandler.Refresh)
		}

		// Protected endpoints
		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		protectedAuth := protected.Group("/auth")
		{
			protectedAuth.POST("/logout", authHandler.Logout)
			protectedAuth.GET("/me", authHandler.Me)
		}

		var renderer pdf.Renderer
		if cfg.PDFClient != nil {
			renderer = cfg.PDFClient
		}

		txHandler := handlers.NewTransactionsHandler(baseHandler, cfg.TransactionService, inflight)
		txGroup := protected.Group("/transactions")
		{
			txGroup.GET("", txHandler.List)
			txGroup.POST("", txHandler.Create)
			txGroup.GET("/export", txHandler.Export)
			txGroup.GET("/:id", txHandler.GetByID)
			txGroup.PUT("/:id", txHandler.Update)
			txGroup.DELETE("/:id", txHandler.Delete)
		}

		var auditHandler *handlers.AuditHandler
		if cfg.AuditService != nil {
			auditHandler = handlers.NewAuditHandler(baseHandler, cfg.AuditService)
			txGroup.GET("/:id/history", auditHandler.TransactionHistory)
		}

		reportsHandler := handlers.NewReportsHandler(baseHandler, cfg.ReportService, cfg.TransactionService, renderer, inflight)
		reportsGroup := protected.Group("/reports")
		{
			reportsGroup.GET("", reportsHandler.List)
			reportsGroup.GET("/by-stock/:stockId", reportsHandler.Prefill)
			reportsGroup.POST("/by-stock/:stockId", reportsHandler.Save)
			reportsGroup.GET("/:id", reportsHandler.GetByID)
			reportsGroup.DELETE("/:id", reportsHandler.Delete)
			reportsGroup.GET("/:id/certificate", reportsHandler.Certificate)
			if auditHandler != nil {
				reportsGroup.GET("/:id/history", auditHandler.ReportHistory)
			}
		}

		analyticsHandler := handlers.NewAnalyticsHandler(baseHandler, cfg.TransactionService, cfg.ReportService)
		analyticsGroup := protected.Group("/analytics")
		{
			analyticsGroup.GET("/production", analyticsHandler.ProductionStats)
			analyticsGroup.GET("/search", analyticsHandler.Search)
		}

		stockHandler := handlers.NewStockHandler(baseHandler, cfg.TransactionService)
		protected.GET("/stock/balance", stockHandler.Balance)
	}

	return router
}
