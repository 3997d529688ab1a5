package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
// A nil pointer means the dependency is not configured for this deployment.
type HealthStatus struct {
	Mongo     *bool     `json:"mongo,omitempty"`
	Redis     []bool    `json:"redis,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Healthy reports whether every configured dependency answered its last ping.
func (h HealthStatus) Healthy() bool {
	if h.Mongo != nil && !*h.Mongo {
		return false
	}
	for _, ok := range h.Redis {
		if !ok {
			return false
		}
	}
	return true
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// StartHealthMonitor performs periodic health checks and updates in-memory state
// until ctx is cancelled. mongoClient may be nil.
func StartHealthMonitor(ctx context.Context, redisClients []*redis.Client, mongoClient *mongo.Client) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		var redisHealth []bool
		for _, client := range redisClients {
			err := client.Ping(pingCtx).Err()
			redisHealth = append(redisHealth, err == nil)
		}

		status := HealthStatus{Redis: redisHealth, CheckedAt: time.Now()}
		if mongoClient != nil {
			ok := mongoClient.Ping(pingCtx, nil) == nil
			status.Mongo = &ok
		}

		mu.Lock()
		currentHealth = status
		mu.Unlock()
	}

	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		check()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				check()
			}
		}
	}()
}
