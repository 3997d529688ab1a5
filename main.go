// File: bookwell/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bookwell/config"
	"bookwell/cron"
	"bookwell/database"
	bookingRepo "bookwell/database/repository/booking"
	recordsRepo "bookwell/database/repository/records"
	"bookwell/handlers"
	"bookwell/middleware"
	"bookwell/routes"
	"bookwell/services/booking"
	"bookwell/services/notification"
	"bookwell/services/reminder"
	"bookwell/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.AppConfig
	loc := config.Location()

	// repositories.
	var (
		repo        bookingRepo.BookingRepository
		history     recordsRepo.HistoryRepository
		mongoClient *mongo.Client
	)
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("main: using in-memory store; bookings are lost on restart")
		repo = bookingRepo.NewMemoryBookingRepo()
		history = recordsRepo.NewMemoryHistoryRepo()
	default:
		if err := database.InitDB(); err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		mongoClient = database.MongoClient
		mongoRepo := bookingRepo.NewMongoBookingRepo(database.Database())
		if err := mongoRepo.EnsureIndexes(); err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		repo = mongoRepo
		history = recordsRepo.NewMongoHistoryRepo(database.Database())
	}

	// provider locking.
	var (
		locker       booking.ProviderLocker
		redisClients []*redis.Client
	)
	switch cfg.LockDriver {
	case "redis":
		lockClient := utils.GetLockClient()
		redisClients = append(redisClients, lockClient)
		locker = &booking.RedisProviderLocker{Client: lockClient, TTL: utils.LockTTL}
	default:
		locker = booking.NewLocalProviderLocker()
	}

	// notifications.
	dispatcher, closeDispatch := buildDispatcher(ctx, logger, &redisClients)
	defer closeDispatch()

	hours := booking.StaticHours{Hours: booking.OperatingHours{OpenMinute: cfg.OpenMinute, CloseMinute: cfg.CloseMinute}}
	if err := hours.Hours.Validate(); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	// services.
	bookingService := &booking.DefaultBookingManager{
		Repo:       repo,
		Locker:     locker,
		Dispatcher: dispatcher,
		History:    history,
		Penalty:    booking.LoggingNoShowPolicy{Logger: logger},
		Hours:      hours,
		Pricing: booking.HourlyPricing{
			Rate:             cfg.HourlyRate,
			OffsiteSurcharge: cfg.OffsiteSurcharge,
			CurrencyCode:     cfg.Currency,
		},
		Location:        loc,
		CreateGrace:     time.Duration(cfg.CreateGraceMinutes) * time.Minute,
		DispatchTimeout: cfg.DispatchTimeout,
		Logger:          logger,
	}
	availabilityService := &booking.DefaultAvailabilityService{
		Repo:        repo,
		Hours:       hours,
		Location:    loc,
		Granularity: time.Duration(cfg.SlotGranularityMinutes) * time.Minute,
	}

	scheduler := &reminder.Scheduler{
		Scanner: &reminder.Scanner{
			Repo:            repo,
			Dispatcher:      dispatcher,
			Window:          reminder.Window{Lower: cfg.ReminderWindowLower, Upper: cfg.ReminderWindowUpper},
			DispatchTimeout: cfg.DispatchTimeout,
			Logger:          logger,
		},
		Interval:   cfg.ReminderInterval,
		RunOnStart: true,
		Logger:     logger,
	}
	if err := scheduler.Start(ctx); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	utils.StartHealthMonitor(ctx, redisClients, mongoClient)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	var adminHandler *handlers.AdminHandler
	if cfg.AdminToken != "" {
		adminHandler = handlers.NewAdminHandler(scheduler)
	}
	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewBookingHandler(bookingService),
		handlers.NewAvailabilityHandler(availabilityService, loc),
		handlers.NewHistoryHandler(history),
		adminHandler,
	)
	routes.RegisterRoutes(router, handlerBundle, cfg.AdminToken)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)
	if mongoClient != nil {
		_ = mongoClient.Disconnect(shutdownCtx)
	}

	logger.Info("main: server stopped gracefully")
}

// buildDispatcher selects the notification driver. The returned func releases
// whatever connections the driver opened.
func buildDispatcher(ctx context.Context, logger *zap.Logger, redisClients *[]*redis.Client) (notification.Dispatcher, func()) {
	cfg := config.AppConfig
	switch cfg.NotifyDriver {
	case "push":
		fcm, err := utils.FirebaseInit(ctx)
		if err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		return &notification.PushDispatcher{Client: fcm}, func() {}

	case "queue":
		fcm, err := utils.FirebaseInit(ctx)
		if err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		redisOpt := cron.QueueRedisOpt()
		client := asynq.NewClient(redisOpt)
		worker := cron.NewDeliveryWorker(redisOpt, fcm)
		worker.Start()

		*redisClients = append(*redisClients, redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisQueueDB,
		}))
		return &notification.QueueDispatcher{Client: client}, func() {
			worker.Shutdown()
			_ = client.Close()
		}

	case "broker":
		publisher, err := notification.NewAMQPPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		return &notification.BrokerDispatcher{Publisher: publisher}, func() { _ = publisher.Close() }

	default:
		return notification.LogDispatcher{Logger: logger}, func() {}
	}
}
