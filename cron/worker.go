package cron

import (
	"context"
	"errors"
	"time"

	"facilities/services/notification"
	"facilities/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitNotificationWorker runs the notification worker in the background and
// returns the server so the caller can shut it down.
func InitNotificationWorker(redisOpts asynq.RedisClientOpt, dispatcher notification.Dispatcher, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	handler := handleNotificationTask(dispatcher, logger)
	mux.HandleFunc(tasks.TypeSendConfirmation, handler)
	mux.HandleFunc(tasks.TypeSendReminder, handler)
	mux.HandleFunc(tasks.TypeSendStatusUpdate, handler)

	go monitorRedisConnection(redisOpts, logger)

	// Start async worker with retry logic
	go func() {
		logger.Info("Starting notification worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil || errors.Is(err, asynq.ErrServerClosed) {
				return
			}
			logger.Error("Notification worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("Max retry attempts reached for notification worker")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleNotificationTask(dispatcher notification.Dispatcher, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseNotificationTask(task)
		if err != nil {
			logger.Error("Dropping notification task", zap.String("type", task.Type()), zap.Error(err))
			return asynq.SkipRetry
		}

		logger.Info("Delivering notification",
			zap.String("kind", p.Kind),
			zap.String("recipient", p.RecipientEmail),
			zap.String("workOrderID", p.Details.WorkOrderID))

		if err := dispatcher.Dispatch(ctx, p); err != nil {
			logger.Warn("Notification delivery failed", zap.String("kind", p.Kind), zap.Error(err))
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings the queue's Redis periodically to surface outages.
func monitorRedisConnection(opts asynq.RedisClientOpt, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	defer client.Close()

	ctx := context.Background()
	for {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Notification queue Redis connection lost", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
