// File: pharmalink/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pharmalink/config"
	"pharmalink/database"
	adminRepoPkg "pharmalink/database/repository/admin"
	deviceRepoPkg "pharmalink/database/repository/device"
	doctorRepoPkg "pharmalink/database/repository/doctor"
	sessionRepoPkg "pharmalink/database/repository/session"
	"pharmalink/handlers"
	"pharmalink/middleware"
	"pharmalink/routes"
	"pharmalink/services/admin"
	"pharmalink/services/device"
	"pharmalink/services/doctor"
	"pharmalink/services/notifier"
	"pharmalink/services/registry"
	"pharmalink/services/session"
	"pharmalink/utils"
	"pharmalink/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitAuthCache()
	tokenCache := utils.NewRedisAuthTokenCache(utils.GetAuthCacheClient())

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Push hub for the admin dashboard.
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	hub := notifier.NewHub(logger)
	go hub.Run(hubCtx)

	// repositories.
	doctorRepo := doctorRepoPkg.NewMongoDoctorRepo()
	deviceRepo := deviceRepoPkg.NewMongoDeviceRepo()
	sessionRepo := sessionRepoPkg.NewMongoSessionRepo()
	adminRepo := adminRepoPkg.NewMongoAdminRepo()

	// services.
	resourceRegistry := &registry.DefaultResourceRegistry{
		Doctors: doctorRepo,
		Devices: deviceRepo,
	}

	watchdog := worker.NewWatchdog()
	sessionService := &session.DefaultSessionService{
		Registry:    resourceRegistry,
		Ledger:      sessionRepo,
		Notifier:    hub,
		Watchdog:    watchdog,
		MaxDuration: config.SessionMaxDuration(),
		Logger:      logger,
	}
	worker.StartWatchdogWorker(sessionService, logger)

	doctorService := &doctor.DefaultDoctorService{
		Repo:     doctorRepo,
		Notifier: hub,
		Tokens:   tokenCache,
		Logger:   logger,
	}
	deviceService := &device.DefaultDeviceService{
		Repo:   deviceRepo,
		Logger: logger,
	}
	adminService := &admin.DefaultAdminService{
		Admins:     adminRepo,
		Doctors:    doctorRepo,
		DeviceRepo: deviceRepo,
		Sessions:   sessionService,
		DoctorSvc:  doctorService,
		Tokens:     tokenCache,
		Logger:     logger,
	}

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Session: handlers.NewSessionHandler(sessionService, logger),
		Doctor:  handlers.NewDoctorHandler(doctorService, logger),
		Device:  handlers.NewDeviceHandler(deviceService, logger),
		Admin:   handlers.NewAdminHandler(adminService, logger),
		WS:      handlers.NewWSHandler(hub, logger),

		DoctorRepo: doctorRepo,
		AdminRepo:  adminRepo,
		Tokens:     tokenCache,
	}

	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(utils.GetAuthCacheClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
