package ratelimit

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/af-corp/media-delivery/internal/httputil"
	"github.com/af-corp/media-delivery/internal/telemetry"
)

const (
	headerRateLimit          = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
	headerRetryAfter         = "Retry-After"
)

// Middleware limits each client address to rpm requests per minute. A
// non-positive rpm disables limiting.
func Middleware(limiter *Limiter, rpm int, logger *slog.Logger, metrics *telemetry.Metrics) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		if rpm <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := w.Header().Get("X-Request-ID")
			client := clientKey(r)

			result, err := limiter.Check(r.Context(), "rpm:"+client, int64(rpm), time.Minute)
			if err != nil {
				logger.Warn("rate limiter unavailable, allowing request", "request_id", reqID, "error", err)
			}

			w.Header().Set(headerRateLimit, strconv.Itoa(rpm))
			w.Header().Set(headerRateLimitRemaining, strconv.FormatInt(result.Remaining, 10))
			w.Header().Set(headerRateLimitReset, result.ResetAt.Format(time.RFC3339))

			if !result.Allowed {
				route := routePattern(r)
				logger.Warn("rate limit exceeded",
					"request_id", reqID,
					"client", client,
					"route", route,
					"limit", rpm,
				)
				if metrics != nil {
					metrics.RecordRateLimitHit(route)
				}
				w.Header().Set(headerRetryAfter, strconv.Itoa(int(result.RetryAfter.Seconds())))
				httputil.WriteError(w, reqID, http.StatusTooManyRequests, "rate_limit_error", "rate_limit_exceeded",
					fmt.Sprintf("Rate limit exceeded: %d requests per minute", rpm))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey is the caller's IP. middleware.RealIP has already rewritten
// RemoteAddr from proxy headers when it runs first.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
