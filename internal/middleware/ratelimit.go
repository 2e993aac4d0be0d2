package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apierrors "workpulse/internal/errors"
)

// idleClientTTL is how long a client's bucket survives without traffic
const idleClientTTL = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter gives every client address its own token bucket. It expects
// chi's RealIP middleware to have normalised RemoteAddr.
type RateLimiter struct {
	rps    rate.Limit
	burst  int
	logger *slog.Logger

	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(rps float64, burst int, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		logger:  logger,
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (rl *RateLimiter) allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > idleClientTTL {
		for key, b := range rl.clients {
			if now.Sub(b.lastSeen) > idleClientTTL {
				delete(rl.clients, key)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.clients[client]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[client] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Handler rejects requests over the client's allowance with 429 and Retry-After
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientKey(r)
		if rl.allow(client) {
			next.ServeHTTP(w, r)
			return
		}

		rl.logger.WarnContext(r.Context(), "rate limit exceeded",
			slog.String("client", client),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path))
		w.Header().Set("Retry-After", "1")
		writeProblem(w, r, apierrors.KindRateLimited, "Rate limit exceeded, retry shortly")
	})
}

func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
