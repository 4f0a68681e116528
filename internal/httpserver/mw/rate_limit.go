package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sekawan-grup/raya/internal/httpserver/respond"
	"github.com/sekawan-grup/raya/internal/logger"
	"github.com/sekawan-grup/raya/internal/utils"
)

// RateLimitConfig configures a per-IP token bucket.
type RateLimitConfig struct {
	Name              string // shows up in logs, ex: "login"
	Burst             int    // attempts available to a fresh IP
	RefillPerIPPerMin int
	MaxEntries        int              // tracked IPs before idle ones are evicted, 0 = unbounded
	IdleTTL           time.Duration    // idle IPs are forgotten after this, default 15m
	TrustProxy        bool             // resolve IP from proxy headers when true
	Message           string           // body of the 429 response
	Now               func() time.Time // defaults to time.Now
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	c.Burst = max(c.Burst, 1)
	c.RefillPerIPPerMin = max(c.RefillPerIPPerMin, 1)
	if c.IdleTTL <= 0 {
		c.IdleTTL = 15 * time.Minute
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Message == "" {
		c.Message = http.StatusText(http.StatusTooManyRequests)
	}
	return c
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// limiter holds one bucket per IP. Buckets are refilled lazily on access.
type limiter struct {
	mu        sync.Mutex
	cfg       RateLimitConfig
	perSecond float64
	buckets   map[string]bucket
	swept     time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	cfg = cfg.withDefaults()
	return &limiter{
		cfg:       cfg,
		perSecond: float64(cfg.RefillPerIPPerMin) / 60,
		buckets:   make(map[string]bucket),
		swept:     cfg.Now(),
	}
}

// take spends one token for ip. When none is left it reports how many seconds
// until the next one.
func (l *limiter) take(ip string, now time.Time) (ok bool, remaining, retryAfter int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.evictIdle(now)

	capacity := float64(l.cfg.Burst)
	b, found := l.buckets[ip]
	if !found {
		b = bucket{tokens: capacity, seen: now}
	} else if elapsed := now.Sub(b.seen).Seconds(); elapsed > 0 {
		b.tokens = math.Min(capacity, b.tokens+elapsed*l.perSecond)
	}
	b.seen = now

	if b.tokens < 1 {
		l.buckets[ip] = b
		return false, 0, max(int(math.Ceil((1-b.tokens)/l.perSecond)), 1)
	}

	b.tokens--
	l.buckets[ip] = b
	return true, int(b.tokens), 0
}

// evictIdle drops idle buckets once per minute, or right away when the map is
// at MaxEntries. Must be called with mu held.
func (l *limiter) evictIdle(now time.Time) {
	full := l.cfg.MaxEntries > 0 && len(l.buckets) >= l.cfg.MaxEntries
	if !full && now.Sub(l.swept) < time.Minute {
		return
	}
	for ip, b := range l.buckets {
		if now.Sub(b.seen) > l.cfg.IdleTTL {
			delete(l.buckets, ip)
		}
	}
	l.swept = now
}

// RateLimit throttles requests per client IP and answers 429 with a JSON
// message once the bucket is empty.
func RateLimit(cfg RateLimitConfig, log logger.Logger) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, l.cfg.TrustProxy)
			ok, remaining, retryAfter := l.take(ip, l.cfg.Now())

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				log.Warn("rate limited",
					logger.String("limiter", l.cfg.Name),
					logger.String("ip", ip),
					logger.Int("retry_after", retryAfter))
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				respond.Error(w, http.StatusTooManyRequests, l.cfg.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
