package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultRateLimit is requests per minute per client
	DefaultRateLimit = 100
	// DefaultBurstSize is how many requests a fresh client may send at once
	DefaultBurstSize = 10

	sweepEvery = 5 * time.Minute
	idleAfter  = 10 * time.Minute
)

// RateLimiter holds one token bucket per client. Buckets unused for
// idleAfter are swept.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	perMinute int
	every     rate.Limit
	burst     int

	stop     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	bucket *rate.Limiter
	seen   time.Time
}

// decision is the outcome of one request against a bucket
type decision struct {
	allowed   bool
	remaining int
	reset     time.Time
}

func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(DefaultRateLimit, DefaultBurstSize)
}

// NewRateLimiterWithConfig starts a limiter allowing requestsPerMinute with
// bursts of up to burstSize. Call Stop to end its sweeper.
func NewRateLimiterWithConfig(requestsPerMinute, burstSize int) *RateLimiter {
	rl := &RateLimiter{
		visitors:  make(map[string]*visitor),
		perMinute: requestsPerMinute,
		every:     rate.Limit(float64(requestsPerMinute) / 60),
		burst:     burstSize,
		stop:      make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Allow consumes one request for key
func (rl *RateLimiter) Allow(key string) bool {
	return rl.take(key, time.Now()).allowed
}

func (rl *RateLimiter) take(key string, now time.Time) decision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{bucket: rate.NewLimiter(rl.every, rl.burst)}
		rl.visitors[key] = v
	}
	v.seen = now

	d := decision{allowed: v.bucket.AllowN(now, 1)}
	left := v.bucket.TokensAt(now)
	d.remaining = int(math.Max(0, math.Floor(left)))
	// Time until the bucket is full again
	refill := (float64(rl.burst) - left) / float64(rl.every)
	d.reset = now.Add(time.Duration(refill * float64(time.Second)))
	return d
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, v := range rl.visitors {
				if now.Sub(v.seen) > idleAfter {
					delete(rl.visitors, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

// Stop ends the sweeper. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// clientKey buckets authenticated callers by user and everyone else by IP
func clientKey(c echo.Context) string {
	if id := GetUserID(c); id != 0 {
		return "user:" + strconv.FormatInt(int64(id), 10)
	}
	return "ip:" + c.RealIP()
}

// RateLimitMiddleware enforces rl and reports the bucket state in
// X-RateLimit-* headers. Mount it after authentication so users are keyed by
// identity.
func RateLimitMiddleware(rl *RateLimiter) echo.MiddlewareFunc {
	limit := strconv.Itoa(rl.perMinute)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := clientKey(c)
			now := time.Now()
			d := rl.take(key, now)

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.reset.Unix(), 10))
			if d.allowed {
				return next(c)
			}

			// One token is enough to retry
			wait := int(math.Ceil(1 / float64(rl.every)))
			if wait < 1 {
				wait = 1
			}
			h.Set("Retry-After", strconv.Itoa(wait))
			log.Warn().Str("client", key).Int("retry_after", wait).Msg("Rate limit exceeded")
			return rateLimitError(c, "Too many requests. Please retry after "+strconv.Itoa(wait)+" seconds.")
		}
	}
}
