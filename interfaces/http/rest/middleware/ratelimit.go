package middleware

import (
	"net"
	"net/http"

	"go.uber.org/zap"

	pkgerrors "cloudmap-backend/pkg/errors"
	"cloudmap-backend/pkg/ratelimit"
)

// RateLimit rejects clients that exceed the limiter with 429. Clients are
// keyed by remote IP, which chi's RealIP middleware has already resolved.
func RateLimit(limiter ratelimit.RateLimiter, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger, limit int, window string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Error("Rate limiter error", zap.Error(err))
				errorHandler.Handle(w, r, pkgerrors.NewInternalError("rate limiter unavailable").WithCause(err))
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", "60")
				errorHandler.Handle(w, r, pkgerrors.NewRateLimitError(limit, window))
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
