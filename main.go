package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"autobook/config"
	"autobook/cron"
	"autobook/database"
	appointmentRepo "autobook/database/repository/appointment"
	"autobook/handlers"
	"autobook/models"
	"autobook/routes"
	"autobook/services/booking"
	"autobook/services/datetime"
	"autobook/services/extract"
	"autobook/services/reminder"
	"autobook/services/session"
	"autobook/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	var repo appointmentRepo.Repository
	if config.AppConfig.UseMemoryStore {
		logger.Sugar().Info("main: using in-memory appointment store")
		repo = appointmentRepo.NewMemoryRepo()
	} else {
		database.InitDB()
		repo = appointmentRepo.NewMongoRepo()
	}
	utils.InitCache()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	hours := config.BusinessHours()
	fallback := hours.Start + 60
	if mins, err := models.ClockToMinutes(config.AppConfig.FallbackTime); err == nil {
		fallback = mins
	}

	// Services.
	sessionService := session.NewSessionService(config.SessionTimeout(), logger)
	normalizer := datetime.New(hours, fallback)
	extractor := extract.NewRegexExtractor(normalizer)

	var enqueuer reminder.Enqueuer = reminder.NopEnqueuer{}
	if config.AppConfig.RedisAddr != "" {
		redisOpt := asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisReminderQueueDB,
		}
		enqueuer = reminder.NewAsynqEnqueuer(redisOpt, logger)
		go cron.InitReminderWorker(repo)
	}

	coordinator := booking.NewCoordinator(repo, sessionService, enqueuer, hours, logger)

	// Background sweeper for idle call sessions.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sessionService.Run(sweepCtx, config.SweepInterval())

	callHandler := handlers.NewCallHandler(sessionService, coordinator, normalizer, extractor, logger)
	appointmentHandler := handlers.NewAppointmentHandler(coordinator, sessionService, logger)
	routes.RegisterRoutes(router, callHandler, appointmentHandler)

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

	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	if !config.AppConfig.UseMemoryStore {
		database.CloseDB(ctx)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
