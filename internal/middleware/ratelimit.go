package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Visitors not seen for this long are dropped from the limiter map.
const (
	visitorTTL    = 10 * time.Minute
	sweepInterval = time.Minute
)

// RateLimiter throttles requests per client IP with a token bucket each.
//
// Account creation is anonymous and unauthenticated, so without a limit one
// script could fill the database with empty accounts.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	rejected http.Handler
	now      func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per minute from each IP, with
// bursts of up to burst requests. rejected writes the response for a request
// over the limit; nil answers with a plain-text 429.
func NewRateLimiter(perMinute float64, burst int, rejected http.Handler) *RateLimiter {
	if rejected == nil {
		rejected = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		})
	}
	return &RateLimiter{
		limit:    rate.Limit(perMinute / 60),
		burst:    burst,
		rejected: rejected,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// Allow reports whether key may make a request now, and spends a token if so.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= sweepInterval {
		rl.sweep(now)
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops idle visitors. Called with rl.mu held.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, key)
		}
	}
	rl.lastSweep = now
}

// Visitors returns the number of clients currently tracked.
func (rl *RateLimiter) Visitors() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Middleware sets Retry-After on requests over the limit and hands them to
// the rejected handler. Run chi's RealIP first when behind a proxy so
// RemoteAddr is the client, not the proxy.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.Allow(clientIP(r)) {
			next.ServeHTTP(w, r)
			return
		}

		retry := time.Minute
		if rl.limit > 0 {
			retry = time.Duration(float64(time.Second) / float64(rl.limit))
		}
		w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds()+0.5)))
		rl.rejected.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
