package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig configures a per-client token bucket. Visitors idle for
// longer than ExpiresIn are forgotten.
type RateLimiterConfig struct {
	Rate      rate.Limit
	Burst     int
	ExpiresIn time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterMemoryStore keeps one limiter per client IP in memory.
type RateLimiterMemoryStore struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	cfg         RateLimiterConfig
	lastCleanup time.Time
	now         func() time.Time
}

func NewRateLimiterMemoryStore(cfg RateLimiterConfig) *RateLimiterMemoryStore {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.ExpiresIn <= 0 {
		cfg.ExpiresIn = 3 * time.Minute
	}
	return &RateLimiterMemoryStore{
		visitors:    make(map[string]*visitor),
		cfg:         cfg,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow reports whether identifier may make another request now.
func (s *RateLimiterMemoryStore) Allow(identifier string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	v, ok := s.visitors[identifier]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.cfg.Rate, s.cfg.Burst)}
		s.visitors[identifier] = v
	}
	v.lastSeen = now

	if now.Sub(s.lastCleanup) > s.cfg.ExpiresIn {
		s.cleanupStaleVisitors(now)
	}
	return v.limiter.AllowN(now, 1)
}

func (s *RateLimiterMemoryStore) cleanupStaleVisitors(now time.Time) {
	for id, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.cfg.ExpiresIn {
			delete(s.visitors, id)
		}
	}
	s.lastCleanup = now
}

// RateLimit answers 429 once a client exhausts its bucket. A zero rate turns
// limiting off.
func RateLimit(store *RateLimiterMemoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || store.cfg.Rate == 0 {
			c.Next()
			return
		}
		if !store.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
