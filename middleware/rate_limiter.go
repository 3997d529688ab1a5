package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an IP may stay quiet before its limiter is dropped.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterStore holds a map of IP addresses to their rate limiters.
type rateLimiterStore struct {
	limiters  map[string]*limiterEntry
	perMin    int
	lastSweep time.Time
	now       func() time.Time
	mu        sync.Mutex
}

func newRateLimiterStore(perMin int) *rateLimiterStore {
	if perMin <= 0 {
		perMin = 100
	}
	return &rateLimiterStore{
		limiters: make(map[string]*limiterEntry),
		perMin:   perMin,
		now:      time.Now,
	}
}

// getLimiter returns the rate limiter for a given IP, creating one if it doesn't exist.
func (s *rateLimiterStore) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	entry, exists := s.limiters[ip]
	if !exists {
		// perMin requests per minute, bursting up to a full minute's allowance.
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMin)), s.perMin)}
		s.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweep drops idle limiters at most once per idle period. An idle limiter has
// refilled its bucket, so dropping it loses nothing. Caller holds mu.
func (s *rateLimiterStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < limiterIdleTTL {
		return
	}
	s.lastSweep = now
	cutoff := now.Add(-limiterIdleTTL)
	for ip, entry := range s.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(s.limiters, ip)
		}
	}
}

// RateLimitMiddleware limits requests per client IP.
func RateLimitMiddleware(perMin int) gin.HandlerFunc {
	store := newRateLimiterStore(perMin)
	return func(c *gin.Context) {
		logger := zap.L()
		ip := getClientIP(c)
		if !store.getLimiter(ip).Allow() {
			logger.Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
