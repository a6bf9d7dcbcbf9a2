package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// AccessLog logs basic HTTP access information.
func AccessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)
			dur := time.Since(start)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.statusCode),
				zap.Duration("duration", dur),
				zap.String("request_id", RequestIDFromContext(r.Context())),
			}
			if key := CartKeyFromContext(r.Context()); key != "" {
				fields = append(fields, zap.String("cart_key", key))
			}
			logger.Info("http_access", fields...)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
