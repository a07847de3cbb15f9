// Package main is the entry point for the pvcflow API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pvcflow/internal/domain/auth"
	"pvcflow/internal/domain/reports"
	"pvcflow/internal/domain/transactions"
	v1 "pvcflow/internal/infrastructure/http/v1"
	"pvcflow/internal/infrastructure/pdf"
	"pvcflow/internal/infrastructure/storage/postgres"
	"pvcflow/internal/infrastructure/storage/postgres/auth_repo"
	"pvcflow/internal/infrastructure/storage/postgres/report_repo"
	"pvcflow/internal/infrastructure/storage/postgres/transaction_repo"
	"pvcflow/pkg/logger"
	"pvcflow/pkg/numerator"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting pvcflow server")

	// --- Database connection ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- JWT Service ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))

	// --- Auth Service ---
	authService := auth.NewService(
		auth_repo.NewUserRepo(txManager),
		auth_repo.NewTokenRepo(txManager),
		txManager,
		jwtService,
		auth.DefaultServiceConfig(),
	)

	// --- Domain services ---
	numeratorService := numerator.New(pool)

	txRepo := transaction_repo.NewRepo(txManager)
	txService := transactions.NewService(txRepo, numeratorService, txManager)

	reportRepo := report_repo.NewRepo(txManager)
	reportService := reports.NewService(reportRepo, txRepo, txManager)

	// --- Audit trail ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}
	registerAuditHooks(auditService, txService, reportService)

	// --- PDF renderer ---
	var pdfClient *pdf.Client
	if gotenbergURL := getEnv("GOTENBERG_URL", ""); gotenbergURL != "" {
		pdfClient = pdf.NewClient(gotenbergURL)
		if err := pdfClient.Ping(ctx); err != nil {
			log.Warnw("pdf renderer not reachable at startup", "url", gotenbergURL, "error", err)
		}
	} else {
		log.Warn("GOTENBERG_URL not set, certificate export disabled")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:               pool,
		Logger:             log,
		JWTValidator:       jwtService,
		AuthService:        authService,
		TransactionService: txService,
		ReportService:      reportService,
		PDFClient:          pdfClient,
		AuditService:       auditService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// registerAuditHooks records create/update/delete events for transactions
// and reports in the audit log. Runs after the write commits.
func registerAuditHooks(audit *postgres.AuditService, txService *transactions.Service, reportService *reports.Service) {
	txService.Hooks().OnAfterCreate(func(ctx context.Context, doc *transactions.ProductionTransaction) error {
		return audit.LogChange(ctx, postgres.AuditEntityTransaction, doc.ID, postgres.AuditActionCreate, postgres.StructToMap(doc))
	})
	txService.Hooks().OnAfterUpdate(func(ctx context.Context, doc *transactions.ProductionTransaction) error {
		return audit.LogChange(ctx, postgres.AuditEntityTransaction, doc.ID, postgres.AuditActionUpdate, postgres.StructToMap(doc))
	})
	txService.Hooks().OnAfterDelete(func(ctx context.Context, doc *transactions.ProductionTransaction) error {
		return audit.LogChange(ctx, postgres.AuditEntityTransaction, doc.ID, postgres.AuditActionDelete, nil)
	})

	reportService.Hooks().OnAfterCreate(func(ctx context.Context, report *reports.ProductionReport) error {
		return audit.LogChange(ctx, postgres.AuditEntityReport, report.ID, postgres.AuditActionCreate, postgres.StructToMap(report))
	})
	reportService.Hooks().OnAfterUpdate(func(ctx context.Context, report *reports.ProductionReport) error {
		return audit.LogChange(ctx, postgres.AuditEntityReport, report.ID, postgres.AuditActionUpdate, postgres.StructToMap(report))
	})
	reportService.Hooks().OnAfterDelete(func(ctx context.Context, report *reports.ProductionReport) error {
		return audit.LogChange(ctx, postgres.AuditEntityReport, report.ID, postgres.AuditActionDelete, nil)
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
