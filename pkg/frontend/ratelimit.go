package frontend

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// sweepInterval is how often idle buckets are dropped.
const sweepInterval = 10 * time.Minute

// bucket holds the tokens left for one client.
type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// submitLimiter is a per-client token bucket in front of POST /.
// A bucket holds up to capacity tokens and gains one every interval.
type submitLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	capacity  int
	interval  time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// newSubmitLimiter returns nil when perMinute is not positive.
func newSubmitLimiter(perMinute, burst int) *submitLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &submitLimiter{
		buckets:   make(map[string]*bucket),
		capacity:  max(burst, 1),
		interval:  time.Minute / time.Duration(perMinute),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// allow takes one token for key. It returns the tokens left and, when
// denied, how long until the next token is available.
func (l *submitLimiter) allow(key string) (bool, int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.capacity), lastRefill: now}
		l.buckets[key] = b
	}
	l.refill(b, now)

	if b.tokens < 1 {
		wait := time.Duration((1 - b.tokens) * float64(l.interval))
		return false, 0, wait
	}
	b.tokens--
	return true, int(b.tokens), 0
}

func (l *submitLimiter) refill(b *bucket, now time.Time) {
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}
	b.tokens = math.Min(float64(l.capacity), b.tokens+float64(elapsed)/float64(l.interval))
	b.lastRefill = now
}

// sweep drops buckets that have refilled completely; they are
// indistinguishable from new ones.
func (l *submitLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now

	for key, b := range l.buckets {
		l.refill(b, now)
		if b.tokens >= float64(l.capacity) {
			delete(l.buckets, key)
		}
	}
}

// middleware rejects clients that ran out of tokens with 429.
// It runs after RealIP, so RemoteAddr is the client address.
func (l *submitLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, remaining, wait := l.allow(clientKey(r))

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.capacity))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeError(w, http.StatusTooManyRequests, &ErrorDetail{
				Code:    CodeRateLimited,
				Message: "too many submissions, retry later",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
