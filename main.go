// File: facilities/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facilities/config"
	"facilities/cron"
	"facilities/database"
	lockRepo "facilities/database/repository/locks"
	referenceRepo "facilities/database/repository/reference"
	workorderRepo "facilities/database/repository/workorder"
	"facilities/handlers"
	"facilities/middleware"
	"facilities/routes"
	"facilities/services/availability"
	"facilities/services/booking"
	"facilities/services/datetime"
	ai "facilities/services/intelligence"
	"facilities/services/notification"
	"facilities/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg := config.AppConfig
	loc := cfg.Location()
	nonWorkingDay := cfg.Weekday()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Reference data.
	reference, err := referenceRepo.LoadDir(cfg.DataDir, loc, logger)
	if err != nil {
		logger.Fatal("main: failed to load reference data", zap.String("dir", cfg.DataDir), zap.Error(err))
	}

	// Booking contexts.
	var contexts ai.ContextStore
	var redisClient *redis.Client
	switch cfg.ContextStore {
	case "redis":
		redisClient = utils.GetContextCacheClient()
		contexts = ai.NewRedisContextStore(redisClient, cfg.ContextTTL())
	default:
		memStore := ai.NewMemoryContextStore()
		go sweepContexts(rootCtx, memStore, cfg.ContextTTL(), logger)
		contexts = memStore
	}

	// Work orders and slot locks.
	var workOrders workorderRepo.WorkOrderRepository
	var locks lockRepo.SlotLocker
	switch cfg.WorkOrderStore {
	case "mongo":
		if err := database.InitDB(logger); err != nil {
			logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
		}
		mongoOrders := workorderRepo.NewMongoWorkOrderRepo()
		if err := mongoOrders.EnsureIndexes(); err != nil {
			logger.Fatal("main: failed to create work order indexes", zap.Error(err))
		}
		mongoLocks := lockRepo.NewMongoSlotLocker()
		if err := mongoLocks.EnsureIndexes(); err != nil {
			logger.Fatal("main: failed to create lock indexes", zap.Error(err))
		}
		workOrders, locks = mongoOrders, mongoLocks
	default:
		workOrders = workorderRepo.NewMemoryWorkOrderRepo()
		locks = lockRepo.NewMemorySlotLocker()
	}

	utils.CheckHealth(rootCtx, redisClient, database.MongoClient)
	utils.StartHealthMonitor(rootCtx, redisClient, database.MongoClient)

	// Side effects.
	calendar := notification.NewICSCalendar(cfg.CalendarDir, cfg.CompanyName, logger)
	provider := notification.NewProvider(cfg.NotifyProvider, cfg.WebhookURL, cfg.WebhookToken, logger)
	direct := notification.NewDirectNotifier(provider, cfg.CompanyName, logger)

	var notifier booking.Notifier = direct
	var worker *asynq.Server
	var queue *asynq.Client
	if cfg.NotifyMode == "queue" {
		redisOpts := utils.QueueRedisOpt()
		queue = asynq.NewClient(redisOpts)
		lead := time.Duration(cfg.ReminderLeadHr) * time.Hour
		notifier = notification.NewQueueNotifier(queue, lead, logger)
		worker = cron.InitNotificationWorker(redisOpts, direct, logger)
	}

	// Scheduling core.
	resolver := availability.NewResolver(reference, nonWorkingDay, logger)
	normalizer := datetime.NewNormalizer(loc, nonWorkingDay, cfg.BookingEpochYear)
	detector := ai.NewPatternDetector()

	offers := &booking.AvailabilityService{
		Contexts:               contexts,
		Resolver:               resolver,
		Catalog:                reference,
		Logger:                 logger,
		Now:                    time.Now,
		Location:               loc,
		NonWorkingDay:          nonWorkingDay,
		EpochYear:              cfg.BookingEpochYear,
		HorizonYears:           cfg.BookingHorizonYears,
		DefaultDurationMinutes: cfg.DefaultDurationMinutes,
	}
	executor := &booking.Executor{
		Contexts:     contexts,
		Detector:     detector,
		Resolver:     resolver,
		Reference:    reference,
		WorkOrders:   workOrders,
		Locks:        locks,
		Calendar:     calendar,
		Notifier:     notifier,
		Logger:       logger,
		Now:          time.Now,
		Location:     loc,
		EpochYear:    cfg.BookingEpochYear,
		HorizonYears: cfg.BookingHorizonYears,

		DefaultDurationMinutes: cfg.DefaultDurationMinutes,
	}
	workOrderService := &booking.WorkOrderService{
		WorkOrders: workOrders,
		Reference:  reference,
		Notifier:   notifier,
		Logger:     logger,
		Now:        time.Now,
	}

	agentHandler := handlers.NewAgentHandler(normalizer, offers, executor, workOrderService, contexts, detector, reference, logger)
	handlerBundle := handlers.NewHandlerBundle(agentHandler)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin, logger))

	requireAuth := cfg.JWTSecret != ""
	if !requireAuth {
		logger.Warn("main: JWT_SECRET is not set, agent endpoints are unauthenticated")
	}
	routes.RegisterRoutes(router, handlerBundle, requireAuth)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8000"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Info("Starting server",
		zap.String("addr", srv.Addr),
		zap.String("timezone", loc.String()),
		zap.String("contextStore", cfg.ContextStore),
		zap.String("workOrderStore", cfg.WorkOrderStore),
		zap.String("notifyMode", cfg.NotifyMode))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
	if queue != nil {
		if err := queue.Close(); err != nil {
			logger.Warn("main: failed to close task queue", zap.Error(err))
		}
	}
	if err := database.CloseDB(ctx); err != nil {
		logger.Warn("main: failed to disconnect MongoDB", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}

// sweepContexts evicts idle in-memory contexts; the Redis store expires them itself.
func sweepContexts(ctx context.Context, store *ai.MemoryContextStore, ttl time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(ttl); n > 0 {
				logger.Debug("Swept idle booking contexts", zap.Int("removed", n))
			}
		}
	}
}
