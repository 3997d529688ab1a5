// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"bookwell/config"

	"github.com/go-redis/redis/v8"
)

// LockClient is the Redis client backing distributed provider locks.
var LockClient *redis.Client

// InitLockCache initializes the Redis client used for provider locks (REDIS_LOCK_DB).
func InitLockCache() {
	LockClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisLockDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := LockClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Lock): %v", err)
	}
}

// GetLockClient returns the Redis client for provider locks.
func GetLockClient() *redis.Client {
	if LockClient == nil {
		InitLockCache()
	}
	return LockClient
}
