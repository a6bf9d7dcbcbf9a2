// Package limiter 限流中间件实现。
package limiter

import (
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/marcdejesus/graph-market/internal/middleware"
	"github.com/marcdejesus/graph-market/internal/resp"
)

// Middleware 包装限流器为HTTP中间件，按客户端IP限流。
// 限流服务自身出错时放行请求，避免限流组件故障演变为全站拒绝服务。
func Middleware(l Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := middleware.RequestIDFromContext(r.Context())

			result, err := l.Allow(r.Context(), clientKey(r))
			if err != nil {
				logger.Warn("rate limit check failed",
					zap.String("request_id", reqID), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
			if !result.Allowed {
				if result.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.FormatInt(int64(result.RetryAfter.Seconds()), 10))
				}
				resp.Error(w, http.StatusTooManyRequests, resp.CodeTooManyRequests,
					"too many requests, please retry later", reqID, "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey 从请求推导限流键：优先用户ID，其次客户端IP
func clientKey(r *http.Request) string {
	if user := middleware.UserFromContext(r.Context()); user != nil {
		return "user:" + strconv.FormatInt(user.ID, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
