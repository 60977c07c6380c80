package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(c echo.Context) string

func RealIPKey(c echo.Context) string {
	return c.RealIP()
}

// RateLimiter keeps one token bucket per key and forgets keys that have been
// idle for longer than ttl.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	mutex    sync.Mutex
	rate     rate.Limit
	burst    int
	ttl      time.Duration
	key      KeyFunc
	now      func() time.Time
}

func NewRateLimiter(r rate.Limit, burst int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     r,
		burst:    burst,
		ttl:      ttl,
		key:      RealIPKey,
		now:      time.Now,
	}
}

// WithKey replaces the default real-IP key.
func (l *RateLimiter) WithKey(key KeyFunc) *RateLimiter {
	l.key = key
	return l
}

func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l.rate <= 0 {
				return next(c)
			}
			reservation := l.getLimiter(l.key(c)).ReserveN(l.now(), 1)
			if !reservation.OK() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			if delay := reservation.DelayFrom(l.now()); delay > 0 {
				reservation.CancelAt(l.now())
				retryAfter := int(math.Ceil(delay.Seconds()))
				c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(retryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := l.now()
	if limiter, ok := l.limiters[key]; ok {
		l.lastSeen[key] = now
		return limiter
	}
	limiter := rate.NewLimiter(l.rate, l.burst)
	l.limiters[key] = limiter
	l.lastSeen[key] = now
	l.cleanup(now)
	return limiter
}

func (l *RateLimiter) cleanup(now time.Time) {
	if l.ttl == 0 {
		return
	}
	cutoff := now.Add(-l.ttl)
	for key, last := range l.lastSeen {
		if last.Before(cutoff) {
			delete(l.lastSeen, key)
			delete(l.limiters, key)
		}
	}
}
