// Package resp 提供统一的HTTP响应封装。
// 所有API响应都使用相同的信封结构，便于客户端统一处理。
package resp

import (
	"encoding/json"
	"net/http"
)

// 业务错误码定义。
// 0 表示成功；4xxxx 为客户端错误；5xxxx 为服务端错误。
const (
	CodeOK              = 0
	CodeInvalidParam    = 40001
	CodeUnauthorized    = 40101
	CodeForbidden       = 40301
	CodeNotFound        = 40401
	CodeTooManyRequests = 42901
	CodeInternalError   = 50001
	CodeTimeout         = 50401
)

// Body 统一响应信封
type Body struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

// HTTPStatusFromCode 将业务错误码映射为HTTP状态码
func HTTPStatusFromCode(code int) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// OK 写入成功响应
func OK(w http.ResponseWriter, data any, requestID, traceID string) {
	write(w, http.StatusOK, &Body{
		Code:      CodeOK,
		Message:   "ok",
		Data:      data,
		RequestID: requestID,
		TraceID:   traceID,
	})
}

// Fail 写入携带数据的错误响应，用于需要返回细节（如字段级校验错误）的失败
func Fail(w http.ResponseWriter, status, code int, message string, data any, requestID, traceID string) {
	write(w, status, &Body{
		Code:      code,
		Message:   message,
		Data:      data,
		RequestID: requestID,
		TraceID:   traceID,
	})
}

// Error 写入错误响应
func Error(w http.ResponseWriter, status, code int, message, requestID, traceID string) {
	write(w, status, &Body{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		TraceID:   traceID,
	})
}

func write(w http.ResponseWriter, status int, body *Body) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// 编码失败时响应头已写出，只能放弃；信封本身不含不可序列化类型
	_ = json.NewEncoder(w).Encode(body)
}
