package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"live-ai-photo-backend/internal/assignment"
	"live-ai-photo-backend/internal/config"
	"live-ai-photo-backend/internal/credits"
	"live-ai-photo-backend/internal/database"
	"live-ai-photo-backend/internal/handlers"
	"live-ai-photo-backend/internal/logger"
	"live-ai-photo-backend/internal/middleware"
	"live-ai-photo-backend/internal/models"
	"live-ai-photo-backend/internal/notify"
	"live-ai-photo-backend/internal/payment"
	"live-ai-photo-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	migrator, err := database.NewMigrator(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	migrator.Close()

	db, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Optional integrations: absent configuration disables the integration,
	// never the server.
	var storageClient *storage.Client
	if cfg.StorageURL != "" {
		storageClient, err = storage.NewClient(cfg.StorageURL, cfg.StorageKey, cfg.StorageBucket)
		if err != nil {
			log.Fatal("failed to create storage client", zap.Error(err))
		}
	} else {
		log.Warn("STORAGE_URL not set, image uploads disabled")
	}

	var notifier *notify.Publisher
	if cfg.AMQPURL != "" {
		notifier, err = notify.NewPublisher(cfg.AMQPURL, log)
		if err != nil {
			log.Fatal("failed to connect to message broker", zap.Error(err))
		}
		defer notifier.Close()
	} else {
		log.Warn("AMQP_URL not set, order notifications disabled")
	}

	var payments *payment.Client
	if cfg.PaymentAPIBaseURL != "" {
		payments = payment.NewClient(cfg.PaymentAPIBaseURL, cfg.PaymentAPIKey)
	} else {
		log.Warn("PAYMENT_API_BASE_URL not set, checkout sessions disabled")
	}

	ledger := credits.NewLedger(db)
	engine := assignment.NewEngine(db, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SweepIntervalSeconds > 0 {
		sweeper := assignment.NewSweeper(engine, db,
			time.Duration(cfg.SweepIntervalSeconds)*time.Second, log)
		go sweeper.Run(ctx)
	}

	router := setupRouter(cfg, db, ledger, engine, storageClient, payments, notifier, log)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func setupRouter(
	cfg *config.Config,
	db *database.Client,
	ledger *credits.Ledger,
	engine *assignment.Engine,
	storageClient *storage.Client,
	payments *payment.Client,
	notifier *notify.Publisher,
	log *zap.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	ordersHandler := handlers.NewOrdersHandler(db, ledger, engine, storageClient, payments, log)
	assignmentsHandler := handlers.NewAssignmentsHandler(db, engine, log)
	availabilityHandler := handlers.NewAvailabilityHandler(db, log)
	tasksHandler := handlers.NewTasksHandler(db, log)
	adminHandler := handlers.NewAdminHandler(db, storageClient, notifier, log)

	router.GET("/health", handlers.HealthCheck)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))
	{
		client := api.Group("")
		client.Use(middleware.RequireRole(models.RoleClient, models.RoleAdmin))
		{
			client.POST("/orders", ordersHandler.CreateOrder)
			client.GET("/orders", ordersHandler.ListOrders)
			client.GET("/orders/:order_id", ordersHandler.GetOrder)
			client.POST("/orders/:order_id/complaint", ordersHandler.FileComplaint)
		}

		designer := api.Group("/designer")
		designer.Use(middleware.RequireRole(models.RoleDesigner))
		{
			designer.GET("/assignments/pending", assignmentsHandler.GetPending)
			designer.POST("/assignments/:assignment_id/confirm", assignmentsHandler.Confirm)
			designer.POST("/assignments/:assignment_id/reject", assignmentsHandler.Reject)
			designer.GET("/availability", availabilityHandler.GetAvailability)
			designer.PUT("/availability", availabilityHandler.ReplaceAvailability)
			designer.POST("/tasks/:task_id/complete", tasksHandler.CompleteTask)
			designer.POST("/tasks/:task_id/resume", tasksHandler.ResumeTask)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSettings)
			admin.GET("/orders", adminHandler.ListAllOrders)
			admin.PATCH("/orders/:order_id/status", adminHandler.OverrideOrderStatus)
			admin.POST("/tasks/:task_id/qa", adminHandler.QAVerdict)
			admin.GET("/designers", adminHandler.ListDesigners)
			admin.GET("/companies", adminHandler.ListCompanies)
		}
	}

	return router
}
