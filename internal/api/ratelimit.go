package api

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit wraps a handler with a per-client token bucket. Limits come
// from RATE_RPS and RATE_BURST; unset or zero disables limiting.
func RateLimit(next http.Handler) http.Handler {
	rps, _ := strconv.ParseFloat(os.Getenv("RATE_RPS"), 64)
	burst, _ := strconv.Atoi(os.Getenv("RATE_BURST"))
	if rps <= 0 {
		return next
	}
	if burst <= 0 {
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	rl := &rateLimiter{limit: rate.Limit(rps), burst: burst, clients: map[string]*clientLimiter{}}
	go rl.evictLoop()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientKey(r)) {
			writeProblem(w, http.StatusTooManyRequests, "Rate limit exceeded", "", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*clientLimiter
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.seen = time.Now()
	rl.mu.Unlock()
	return c.lim.Allow()
}

func (rl *rateLimiter) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		rl.mu.Lock()
		for key, c := range rl.clients {
			if c.seen.Before(cutoff) {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
