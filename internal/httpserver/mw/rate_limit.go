package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/mapmarks/internal/apperr"
	"github.com/MrSnakeDoc/mapmarks/internal/logger"
	"github.com/MrSnakeDoc/mapmarks/internal/utils"
)

// sweepEvery bounds how often idle buckets are evicted.
const sweepEvery = time.Minute

// RateLimitConfig configures a per-client token bucket.
type RateLimitConfig struct {
	Burst      int              // bucket capacity, at least 1
	Refill     time.Duration    // one token is added back every Refill
	MaxEntries int              // evict idle clients early once this many are tracked (0 = no cap)
	IdleTTL    time.Duration    // a bucket untouched this long is dropped
	TrustProxy bool             // resolve the client from proxy headers
	Logger     logger.Logger    // rejections are logged at debug level when set
	Now        func() time.Time // defaults to time.Now
}

type bucket struct {
	tokens float64
	last   time.Time
}

type limiter struct {
	cfg       RateLimitConfig
	mu        sync.Mutex
	buckets   map[string]bucket
	nextSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	cfg.Burst = max(cfg.Burst, 1)
	if cfg.Refill <= 0 {
		cfg.Refill = time.Second
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &limiter{cfg: cfg, buckets: make(map[string]bucket)}
}

// take spends one token from client's bucket. An empty bucket returns the
// time until the next token instead.
func (l *limiter) take(client string) (remaining int, wait time.Duration) {
	now := l.cfg.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if !now.Before(l.nextSweep) || (l.cfg.MaxEntries > 0 && len(l.buckets) >= l.cfg.MaxEntries) {
		l.evictIdle(now)
	}

	capacity := float64(l.cfg.Burst)
	b, ok := l.buckets[client]
	if !ok {
		b = bucket{tokens: capacity, last: now}
	}
	if elapsed := now.Sub(b.last); elapsed > 0 {
		b.tokens = min(capacity, b.tokens+float64(elapsed)/float64(l.cfg.Refill))
		b.last = now
	}

	if b.tokens < 1 {
		l.buckets[client] = b
		return 0, time.Duration((1 - b.tokens) * float64(l.cfg.Refill))
	}
	b.tokens--
	l.buckets[client] = b
	return int(b.tokens), 0
}

func (l *limiter) evictIdle(now time.Time) {
	for client, b := range l.buckets {
		if now.Sub(b.last) > l.cfg.IdleTTL {
			delete(l.buckets, client)
		}
	}
	l.nextSweep = now.Add(sweepEvery)
}

// RateLimit rejects requests from a client whose bucket is empty. One
// middleware value shares its buckets across every route it wraps.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := utils.ClientIP(r, l.cfg.TrustProxy)
			remaining, wait := l.take(client)

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if wait > 0 {
				retry := int(math.Ceil(wait.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				if l.cfg.Logger != nil {
					l.cfg.Logger.Debug("rate limit exceeded",
						logger.String("client", client),
						logger.String("path", r.URL.Path),
						logger.Int("retry_after_s", retry))
				}
				apperr.Write(w, apperr.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
