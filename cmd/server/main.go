package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shelftrack/internal/api"
	"shelftrack/internal/api/middleware"
	"shelftrack/internal/database"
	"shelftrack/pkg/factory"
)

func main() {
	appFactory, err := factory.NewFactory()
	if err != nil {
		fmt.Printf("failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	log := appFactory.GetLogger()
	cfg := appFactory.GetConfig()
	db := appFactory.GetDB()

	defer db.Close()
	defer appFactory.GetRedisClient().Close()

	log.Info("Starting application", map[string]interface{}{"env": cfg.AppEnv})

	migrationService := database.NewMigrationService(db, log)
	if err := migrationService.RunMigrations(); err != nil {
		log.Fatal("Failed to apply migrations", map[string]interface{}{"error": err.Error()})
	}

	if cfg.AppEnv == "development" {
		seedService := database.NewSeedService(migrationService, log)
		if err := seedService.Run(); err != nil {
			log.Fatal("Failed to seed database", map[string]interface{}{"error": err.Error()})
		}
	}

	authed := middleware.Auth(appFactory.GetAuthService(), log)
	admin := func(next http.Handler) http.Handler {
		return authed(middleware.RequireAdmin(next))
	}

	authHandler := api.NewAuthHandler(appFactory.GetAuthService(), log)
	userHandler := api.NewUserHandler(appFactory.GetMemberService(), log)
	categoryHandler := api.NewCategoryHandler(appFactory.GetCatalogService(), log)
	bookHandler := api.NewBookHandler(appFactory.GetCatalogService(), log)
	borrowingHandler := api.NewBorrowingHandler(appFactory.GetLoanService(), log)
	reportHandler := api.NewReportHandler(appFactory.GetReportService(), log)
	dashboardHandler := api.NewDashboardHandler(appFactory.GetReportService(), appFactory.GetCatalogService(), log)
	auditLogHandler := api.NewAuditLogHandler(appFactory.GetAuditLogService(), log)
	healthHandler := api.NewHealthHandler(db, appFactory.GetRedisClient(), log)

	mux := http.NewServeMux()

	authHandler.RegisterRoutes(mux, authed)
	userHandler.RegisterRoutes(mux, admin)
	categoryHandler.RegisterRoutes(mux, authed, admin)
	bookHandler.RegisterRoutes(mux, authed, admin)
	borrowingHandler.RegisterRoutes(mux, authed, admin)
	reportHandler.RegisterRoutes(mux, admin)
	dashboardHandler.RegisterRoutes(mux, authed)
	auditLogHandler.RegisterRoutes(mux, admin)
	healthHandler.RegisterRoutes(mux)

	mux.Handle("GET /metrics", promhttp.Handler())

	handler := middleware.Tracing(middleware.Metrics(mux))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"port": cfg.Server.Port})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", map[string]interface{}{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Server stopped cleanly", map[string]interface{}{})
}
