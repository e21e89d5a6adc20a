package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/access"
	"github.com/fisworks/product-engine/pkg/auth"
	"github.com/fisworks/product-engine/pkg/config"
	"github.com/fisworks/product-engine/pkg/database"
	"github.com/fisworks/product-engine/pkg/handlers"
	"github.com/fisworks/product-engine/pkg/logging"
	"github.com/fisworks/product-engine/pkg/metrics"
	"github.com/fisworks/product-engine/pkg/middleware"
	"github.com/fisworks/product-engine/pkg/repositories"
	"github.com/fisworks/product-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", cfg.Database.Host),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Migrations run through database/sql (required by golang-migrate)
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger.Named("migrations")); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	// Field ownership policy
	policy, err := access.NewPolicy()
	if err != nil {
		logger.Fatal("Failed to load field ownership table", zap.Error(err))
	}

	// Repositories
	productRepo := repositories.NewProductRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	artifactRepo := repositories.NewArtifactRepository(db)
	checklistRepo := repositories.NewChecklistRepository(db)

	// Services
	notifier := services.NewLoggingNotifier(logger.Named("render"))
	workflowMetrics := metrics.NewWorkflow(prometheus.DefaultRegisterer)

	auditService := services.NewAuditService(auditRepo, logger.Named("audit"))
	notificationService := services.NewNotificationService(notificationRepo, workflowMetrics, logger.Named("notifications"))
	productService := services.NewProductService(&services.ProductServiceDeps{
		DB:       db,
		Repo:     productRepo,
		Audit:    auditService,
		Policy:   policy,
		Notifier: notifier,
		Logger:   logger.Named("products"),
	})
	workflowService := services.NewWorkflowService(&services.WorkflowServiceDeps{
		DB:            db,
		ProductRepo:   productRepo,
		Audit:         auditService,
		Notifications: notificationService,
		Policy:        policy,
		Notifier:      notifier,
		Metrics:       workflowMetrics,
		Logger:        logger.Named("workflow"),
	})
	launchService := services.NewLaunchService(&services.LaunchServiceDeps{
		DB:            db,
		ProductRepo:   productRepo,
		ArtifactRepo:  artifactRepo,
		ChecklistRepo: checklistRepo,
		Audit:         auditService,
		Notifier:      notifier,
		Logger:        logger.Named("launch"),
	})
	readinessService := services.NewReadinessService(productRepo, artifactRepo, checklistRepo)
	autosaveService := services.NewAutosaveService(productService, policy, services.AutosaveDelay, logger.Named("autosave"))

	// Sessions
	sessionService := auth.NewService(
		cfg.Session.Secret,
		time.Duration(cfg.Session.TTLHours)*time.Hour,
		cfg.Session.CookieName,
	)
	authMiddleware := auth.NewMiddleware(sessionService, logger.Named("auth"))

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewSessionHandler(sessionService, logger.Named("session")).RegisterRoutes(mux, authMiddleware)
	handlers.NewProductsHandler(productService, autosaveService, policy, logger.Named("products")).RegisterRoutes(mux, authMiddleware)
	handlers.NewWorkflowHandler(workflowService, logger.Named("workflow")).RegisterRoutes(mux, authMiddleware)
	handlers.NewReadinessHandler(readinessService, logger.Named("readiness")).RegisterRoutes(mux, authMiddleware)
	handlers.NewNotificationsHandler(notificationService, logger.Named("notifications")).RegisterRoutes(mux, authMiddleware)
	handlers.NewAuditHandler(auditService, logger.Named("audit")).RegisterRoutes(mux, authMiddleware)
	handlers.NewLaunchHandler(launchService, logger.Named("launch")).RegisterRoutes(mux, authMiddleware)

	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           middleware.RequestLogger(logger.Named("http"))(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting product-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	// Flush buffered autosave edits before the pool goes away
	autosaveService.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
