// File: roomlift/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomlift/config"
	"roomlift/cron"
	"roomlift/database"
	auditlogRepo "roomlift/database/repository/auditlog"
	bookingRepoPkg "roomlift/database/repository/booking"
	tenantRepoPkg "roomlift/database/repository/tenant"
	"roomlift/handlers"
	"roomlift/middleware"
	"roomlift/routes"
	"roomlift/services/booking"
	"roomlift/services/calendar"
	"roomlift/services/notification"
	"roomlift/services/tenant"
	"roomlift/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitLockCache()
	utils.FirebaseInit()

	calendarService, err := calendar.NewGoogleCalendarService(context.Background())
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize calendar service: %v", err)
	}

	notificationService, err := notification.NewDefaultNotificationService(utils.GetFCMClient())
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	auditRepo := auditlogRepo.NewMongoAuditLogRepo()
	tenantRepo := tenantRepoPkg.NewMongoTenantRepo()

	// services.
	tenantService := tenant.NewDefaultConfigService(tenantRepo, utils.GetCacheClient())

	workflowService := &booking.DefaultWorkflowService{
		Repo:      bookingRepo,
		AuditRepo: auditRepo,
		Tenants:   tenantService,
		Calendar:  calendarService,
		Notifier:  notificationService,
		Locker:    utils.NewBookingLocker(utils.GetLockClient()),
	}

	bookingHandler := handlers.NewBookingHandler(workflowService, auditRepo)
	routes.SetupRoutes(router, bookingHandler)

	// Background no-show sweep.
	cron.InitNoShowSweep(workflowService, bookingRepo)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("main: listening on port %s", config.AppConfig.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: forced shutdown: %v", err)
	}
}
