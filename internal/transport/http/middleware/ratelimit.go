package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/stockpilot/stockpilot/internal/domain"
	"github.com/stockpilot/stockpilot/internal/infrastructure/redis"
	"github.com/stockpilot/stockpilot/internal/logger"
	"github.com/stockpilot/stockpilot/internal/transport/http/response"
)

// RateLimitFixedWindow limits by client IP per route within a fixed
// window. Limiter outages fail open: availability over strictness for a
// login endpoint that already requires an email round-trip.
func RateLimitFixedWindow(l *redis.FixedWindowLimiter, scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := fmt.Sprintf("rl:%s:%s", scope, clientIP(r))
			d, err := l.AllowFixedWindow(r.Context(), key, limit, window)
			if err != nil {
				logger.WithCtx(r.Context()).Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if !d.Allowed {
				retry := int(d.RetryAfter.Seconds())
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				response.WriteError(w, r, domain.ErrRateLimited(scope))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
