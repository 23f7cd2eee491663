package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/AnshRaj112/emotion-tracker-backend/pkg/clientip"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter decides whether one more request for key is allowed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// --- In-memory limiter (token bucket per key) ---

const (
	memoryCleanupInterval = 5 * time.Minute
	memoryLimiterTTL      = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// MemoryLimiter keeps one token bucket per key in process memory.
type MemoryLimiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastSweep time.Time
}

func NewMemoryLimiter(limit rate.Limit, burst int) *MemoryLimiter {
	return &MemoryLimiter{
		limit:     limit,
		burst:     burst,
		entries:   make(map[string]*limiterEntry),
		lastSweep: time.Now(),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > memoryCleanupInterval {
		for k, e := range l.entries {
			if now.Sub(e.lastUse) > memoryLimiterTTL {
				delete(l.entries, k)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastUse = now
	return e.limiter.Allow(), nil
}

// --- Redis limiter (fixed window shared by all instances) ---

// RateLimitKeyPrefix is the Redis key prefix for rate limiting
const RateLimitKeyPrefix = "ratelimit:"

type RedisLimiter struct {
	client *redis.Client
	prefix string
	max    int64
	window time.Duration
}

// NewRedisLimiter allows max requests per key in every window. name separates
// the counters of different limiters.
func NewRedisLimiter(client *redis.Client, name string, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: RateLimitKeyPrefix + name + ":",
		max:    int64(max),
		window: window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, err
	}
	allowed := incr.Val() <= l.max

	// EXPIRE NX needs Redis 7; checking the TTL works on any server.
	if windowNeedsExpiry(ttl.Val()) {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return allowed, err
		}
	}
	return allowed, nil
}

// windowNeedsExpiry reports whether a counter has no expiry yet. Redis
// answers TTL with -1 for keys without one.
func windowNeedsExpiry(ttl time.Duration) bool {
	return ttl < 0
}

// RateLimit limits each client IP. When the limiter errors the request is
// let through.
func RateLimit(l RateLimiter, log *zap.SugaredLogger, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientip.RealClientIP(r)
			allowed, err := l.Allow(r.Context(), ip)
			if err != nil {
				log.Warnw("rate limiter unavailable, allowing request", "ip", ip, "error", err)
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(60))
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginPath is the only route that gets the stricter login limiter.
const LoginPath = "/auth/login"

// LoginRateLimit applies l to sign-in requests only. Use after the global limiter.
func LoginRateLimit(l RateLimiter, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	limited := RateLimit(l, log, "Too many login attempts. Please try again later.")
	return func(next http.Handler) http.Handler {
		guarded := limited(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != LoginPath {
				next.ServeHTTP(w, r)
				return
			}
			guarded.ServeHTTP(w, r)
		})
	}
}
