package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// HeaderCartSession 匿名购物车会话键的请求头
const HeaderCartSession = "X-Cart-Session"

// CartSession 为每个请求解析购物车键并写入上下文：
// 1) 登录用户的购物车绑定到用户ID；
// 2) 匿名请求优先读取 X-Cart-Session 头携带的会话键；
// 3) 两者都没有时生成新的会话键，并通过响应头回传给客户端保存。
// 必须排在 OptionalAuth 之后，否则登录用户会拿到匿名购物车。
func CartSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var key string
		if user := UserFromContext(r.Context()); user != nil {
			key = user.CartKey()
		} else {
			key = sessionCartKey(r.Header.Get(HeaderCartSession))
			if key == "" {
				key = "session:" + uuid.New().String()
			}
			// 回传会话键，客户端在后续请求中携带同一个键
			w.Header().Set(HeaderCartSession, strings.TrimPrefix(key, "session:"))
		}
		next.ServeHTTP(w, r.WithContext(withCartKey(r.Context(), key)))
	})
}

// sessionCartKey 将客户端携带的会话ID规范化为存储键
func sessionCartKey(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" {
		return ""
	}
	// 客户端只持有裸ID，键前缀在服务端统一添加
	return "session:" + id
}
