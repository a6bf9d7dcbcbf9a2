package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/marcdejesus/graph-market/internal/domain"
	"github.com/marcdejesus/graph-market/internal/middleware"
	"github.com/marcdejesus/graph-market/internal/resp"
	"github.com/marcdejesus/graph-market/internal/service"
)

// OrderHandler 订单相关的HTTP处理器。
// 订单按购物车键归属：匿名访客只能看到自己会话下的订单。
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler 创建订单处理器实例
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// ListOrders 查询当前购物车键名下的订单历史
// GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	key := middleware.CartKeyFromContext(r.Context())

	orders, err := h.orderService.ListOrders(key)
	if err != nil {
		h.logger.Error("list orders failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "list orders failed", reqID, "")
		return
	}

	resp.OK(w, orders, reqID, "")
}

// GetOrder 查询单个订单
// GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	orderID, ok := h.orderID(w, r, reqID)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "order not found", reqID, "")
			return
		}

		h.logger.Error("get order failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "get order failed", reqID, "")
		return
	}
	if !h.owns(r, order) {
		resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "order not found", reqID, "")
		return
	}

	resp.OK(w, order, reqID, "")
}

// Cancel 取消订单；已发货的订单不允许取消
// POST /api/v1/orders/{id}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.orderService.Cancel)
}

// Reorder 基于历史订单创建一笔新的待支付订单
// POST /api/v1/orders/{id}/reorder
func (h *OrderHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.orderService.Reorder)
}

// Pay 支付订单（桩实现：总是成功）
// POST /api/v1/orders/{id}/pay
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.orderService.ProcessPayment)
}

// Tracking 查询订单的跟踪事件
// GET /api/v1/orders/{id}/tracking
func (h *OrderHandler) Tracking(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	orderID, ok := h.orderID(w, r, reqID)
	if !ok {
		return
	}

	events, err := h.orderService.TrackingEvents(orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "order not found", reqID, "")
			return
		}

		h.logger.Error("get tracking failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "get tracking failed", reqID, "")
		return
	}

	resp.OK(w, events, reqID, "")
}

// statusRequest 管理端状态更新请求体
type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus 更新订单状态（管理端接口，需要admin角色）
// PUT /api/v1/admin/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	orderID, ok := h.orderID(w, r, reqID)
	if !ok {
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	result := h.orderService.UpdateStatus(orderID, domain.OrderStatus(req.Status))
	if !result.Success {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, result.Message, reqID, "")
		return
	}

	resp.OK(w, result, reqID, "")
}

// mutate 执行订单变更操作并写出统一的OrderResult响应
func (h *OrderHandler) mutate(w http.ResponseWriter, r *http.Request, op func(string) *domain.OrderResult) {
	reqID := middleware.RequestIDFromContext(r.Context())

	orderID, ok := h.orderID(w, r, reqID)
	if !ok {
		return
	}

	// 先做归属校验，避免跨会话操作他人订单
	order, err := h.orderService.GetOrder(orderID)
	if err != nil || !h.owns(r, order) {
		resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "order not found", reqID, "")
		return
	}

	result := op(orderID)
	if !result.Success {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, result.Message, reqID, "")
		return
	}

	resp.OK(w, result, reqID, "")
}

// orderID 从URL路径中提取订单ID：/api/v1/orders/{id}[/action]
func (h *OrderHandler) orderID(w http.ResponseWriter, r *http.Request, reqID string) (string, bool) {
	parts := strings.Split(r.URL.Path, "/")
	// ["", "api", "v1", "orders", "{id}", ...] 或 ["", "api", "v1", "admin", "orders", "{id}", ...]
	for i, p := range parts {
		if p == "orders" && i+1 < len(parts) && parts[i+1] != "" {
			return parts[i+1], true
		}
	}
	resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid order ID", reqID, "")
	return "", false
}

// owns 判断请求方是否拥有该订单：购物车键一致，或admin角色
func (h *OrderHandler) owns(r *http.Request, order *domain.Order) bool {
	if order == nil {
		return false
	}
	if user := middleware.UserFromContext(r.Context()); user != nil && user.Role == domain.UserRoleAdmin {
		return true
	}
	return order.CartKey == middleware.CartKeyFromContext(r.Context())
}
