package middleware

import (
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/voxgate/voxgate/internal/core/engine"
	"github.com/voxgate/voxgate/internal/metrics"
	"github.com/voxgate/voxgate/internal/observability"
)

// ErrorResponder writes an error response for a rejected request. Injected by
// the server package so this middleware stays free of the errors package
// (which imports middleware for request IDs).
type ErrorResponder func(w http.ResponseWriter, r *http.Request, code, message string)

// RateLimit enforces per-client admission on a route using the supplied
// limiter. The client key is the remote address host; chi's RealIP middleware
// runs earlier in the chain so proxied requests resolve to the caller's IP.
func RateLimit(route string, limiter *engine.Limiter, respond ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			allowed := limiter.Allow(key)
			metrics.RecordAdmission(route, allowed)

			if !allowed {
				if observability.ServerLogger != nil {
					observability.ServerLogger.Warn("Request rejected by rate limiter",
						zap.String("route", route),
						zap.String("client", key),
						zap.Int("max_requests", limiter.MaxRequests()),
						zap.Duration("window", limiter.Window()),
						zap.String("request_id", GetRequestID(r.Context())))
				}

				message := fmt.Sprintf("Rate limit exceeded. Maximum %d requests per %s.",
					limiter.MaxRequests(), limiter.Window())
				respond(w, r, "RATE_LIMITED", message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey extracts the admission key for a request. RemoteAddr carries
// host:port; strip the port so a client is one key across connections.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
