package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"foodsync/internal/metrics"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const minLimiterIdle = time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore hands out one token bucket per key. Buckets idle long enough
// to have refilled are dropped, since a fresh bucket behaves the same.
type limiterStore struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	entries   map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterStore(limit rate.Limit, burst int) *limiterStore {
	idle := time.Hour
	if limit > 0 && limit != rate.Inf {
		idle = time.Duration(float64(burst) / float64(limit) * float64(time.Second))
	}
	if idle < minLimiterIdle {
		idle = minLimiterIdle
	}
	return &limiterStore{
		limit:   limit,
		burst:   burst,
		idle:    idle,
		entries: map[string]*limiterEntry{},
		now:     time.Now,
	}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.idle {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) >= s.idle {
				delete(s.entries, k)
			}
		}
		s.lastSweep = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

func (s *limiterStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RateLimit throttles each caller with its own token bucket. Callers are
// keyed by user id when authenticated, client IP otherwise.
func RateLimit(limit rate.Limit, burst int) gin.HandlerFunc {
	return rateLimit(newLimiterStore(limit, burst))
}

func rateLimit(store *limiterStore) gin.HandlerFunc {
	limitHeader := strconv.FormatFloat(float64(store.limit), 'g', -1, 64)

	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID, ok := c.Get("userID"); ok {
			key = fmt.Sprintf("user:%v", userID)
		}

		l := store.get(key)
		if !l.Allow() {
			metrics.RateLimitRejects.WithLabelValues(c.FullPath()).Inc()
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "rate limit exceeded",
			})
			return
		}

		c.Header("X-RateLimit-Limit", limitHeader)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(l.Tokens())))
		c.Next()
	}
}
