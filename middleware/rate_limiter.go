package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	steadyRequestsPerSecond = 5
	burstSize               = 30
	visitorIdleExpiry       = 3 * time.Minute
	cleanupInterval         = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	visitors = make(map[string]*visitor)
	mu       sync.Mutex
)

// RateLimitMiddleware throttles per client IP. The proxy's X-Forwarded-For
// wins over the socket address when present.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.Header.Get("X-Forwarded-For")
		if ip == "" {
			ip, _, _ = net.SplitHostPort(r.RemoteAddr)
		}

		if !limiterFor(ip).Allow() {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func limiterFor(ip string) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	v, ok := visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(steadyRequestsPerSecond, burstSize)}
		visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// CleanupVisitors drops limiters for clients idle past the expiry. Run it as
// a goroutine from main.
func CleanupVisitors() {
	for {
		time.Sleep(cleanupInterval)
		mu.Lock()
		for ip, v := range visitors {
			if time.Since(v.lastSeen) > visitorIdleExpiry {
				delete(visitors, ip)
			}
		}
		mu.Unlock()
	}
}
