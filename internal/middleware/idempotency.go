// Package middleware 提供幂等性中间件。
package middleware

import (
	"net/http"
	"strings"
)

// Idempotency 从请求头提取幂等键并写入上下文。
// 只有写操作需要幂等保护，GET/HEAD/OPTIONS 直接放行；
// 幂等性的实际判定在业务层完成（相同键的下单返回首单）。
func Idempotency(headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = "X-Idempotency-Key"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(headerName))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdempotencyKey(r.Context(), key)))
		})
	}
}
