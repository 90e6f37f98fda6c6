// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"facilities/config"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// ContextCacheClient backs the booking context store when CONTEXT_STORE=redis.
var ContextCacheClient *redis.Client

// InitContextCache initializes the Redis client used for conversation contexts.
func InitContextCache() {
	ContextCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisContextDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := ContextCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Context Cache): %v", err)
	}
}

// GetContextCacheClient returns the booking context cache client.
func GetContextCacheClient() *redis.Client {
	if ContextCacheClient == nil {
		InitContextCache()
	}
	return ContextCacheClient
}

// QueueRedisOpt is the asynq connection for notification tasks.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}
