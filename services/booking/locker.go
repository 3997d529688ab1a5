package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bookwell/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// LocalProviderLocker serializes claims inside one process.
type LocalProviderLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocalProviderLocker() *LocalProviderLocker {
	return &LocalProviderLocker{slots: make(map[string]chan struct{})}
}

func (l *LocalProviderLocker) Lock(ctx context.Context, providerID string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[providerID]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[providerID] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("lock provider %s: %w: %w", providerID, ErrStoreUnavailable, ctx.Err())
	}
}

// releaseScript deletes the lock only if the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisProviderLocker serializes claims across instances sharing one Redis.
// Each holder writes a random token with a TTL so a crashed holder cannot
// block the provider forever.
type RedisProviderLocker struct {
	Client     *redis.Client
	TTL        time.Duration
	RetryEvery time.Duration
	// MaxWait bounds how long Lock spins when ctx has no earlier deadline.
	MaxWait time.Duration
}

func (l *RedisProviderLocker) Lock(ctx context.Context, providerID string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, l.maxWait())
	defer cancel()

	key := utils.LockKeyPrefix + providerID
	token := uuid.NewString()
	ticker := time.NewTicker(l.retryEvery())
	defer ticker.Stop()

	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.ttl()).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("lock provider %s: %w: %w", providerID, ErrStoreUnavailable, err)
		}
		if ok {
			return l.releaser(key, token), nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("lock provider %s: %w: %w", providerID, ErrStoreUnavailable, ctx.Err())
		}
	}
}

func (l *RedisProviderLocker) releaser(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.Client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				utils.GetLogger().Sugar().Warnf("release %s: %v", key, err)
			}
		})
	}
}

func (l *RedisProviderLocker) ttl() time.Duration {
	if l.TTL > 0 {
		return l.TTL
	}
	return utils.LockTTL
}

func (l *RedisProviderLocker) retryEvery() time.Duration {
	if l.RetryEvery > 0 {
		return l.RetryEvery
	}
	return 25 * time.Millisecond
}

func (l *RedisProviderLocker) maxWait() time.Duration {
	if l.MaxWait > 0 {
		return l.MaxWait
	}
	return 5 * time.Second
}
