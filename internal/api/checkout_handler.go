package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/marcdejesus/graph-market/internal/cart"
	"github.com/marcdejesus/graph-market/internal/checkout"
	"github.com/marcdejesus/graph-market/internal/domain"
	"github.com/marcdejesus/graph-market/internal/middleware"
	"github.com/marcdejesus/graph-market/internal/resp"
	"github.com/marcdejesus/graph-market/internal/service"
)

// CheckoutHandler 结账流程的HTTP处理器。
// 流程固定：cart -> shipping -> payment -> confirmation；
// 非法的步骤推进不报错，响应中的状态保持不变。
type CheckoutHandler struct {
	manager      *checkout.Manager
	registry     *cart.Registry
	orderService service.OrderService
	logger       *zap.Logger
}

// NewCheckoutHandler 创建结账处理器实例
func NewCheckoutHandler(manager *checkout.Manager, registry *cart.Registry, orderService service.OrderService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		manager:      manager,
		registry:     registry,
		orderService: orderService,
		logger:       logger,
	}
}

// Begin 开启结账
// POST /api/v1/checkout
// 同一购物车上已有进行中的结账时返回现有结账的状态。
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	key := middleware.CartKeyFromContext(r.Context())

	session := h.registry.Session(r.Context(), key)
	c, err := h.manager.Begin(key, session)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "cannot checkout with an empty cart", reqID, "")
			return
		}

		h.logger.Error("begin checkout failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "begin checkout failed", reqID, "")
		return
	}

	resp.OK(w, c.State(), reqID, "")
}

// GetState 获取当前结账状态（含最新订单摘要）
// GET /api/v1/checkout
func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	c, ok := h.activeCheckout(w, r, reqID)
	if !ok {
		return
	}
	resp.OK(w, c.State(), reqID, "")
}

// stepRequest 指定步骤的请求体
type stepRequest struct {
	Step string `json:"step"`
}

// CompleteStep 将步骤标记为完成
// POST /api/v1/checkout/steps/complete
func (h *CheckoutHandler) CompleteStep(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	c, ok := h.activeCheckout(w, r, reqID)
	if !ok {
		return
	}

	var req stepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	if err := c.CompleteStep(domain.CheckoutStep(req.Step)); err != nil {
		switch {
		case errors.Is(err, checkout.ErrUnknownStep):
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "unknown checkout step", reqID, "")
		case errors.Is(err, checkout.ErrEmptyCart):
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "cart is empty", reqID, "")
		case errors.Is(err, checkout.ErrMissingStepData):
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "step data not provided", reqID, "")
		default:
			h.logger.Error("complete step failed", zap.String("request_id", reqID), zap.Error(err))
			resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "complete step failed", reqID, "")
		}
		return
	}

	resp.OK(w, c.State(), reqID, "")
}

// NextStep 推进到下一步
// POST /api/v1/checkout/next
// 当前步骤未完成时不推进，响应中的currentStep保持不变。
func (h *CheckoutHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	c, ok := h.activeCheckout(w, r, reqID)
	if !ok {
		return
	}
	resp.OK(w, c.GoToNextStep(), reqID, "")
}

// GoToStep 跳转到指定步骤
// POST /api/v1/checkout/goto
// 向后跳转随意；向前跳转要求中间步骤全部完成，否则静默拒绝。
func (h *CheckoutHandler) GoToStep(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	c, ok := h.activeCheckout(w, r, reqID)
	if !ok {
		return
	}

	var req stepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	resp.OK(w, c.GoToStep(domain.CheckoutStep(req.Step)), reqID, "")
}

// fieldErrorsPayload 字段级校验失败的响应数据
type fieldErrorsPayload struct {
	FieldErrors []domain.FieldError  `json:"fieldErrors"`
	State       domain.CheckoutState `json:"state"`
}

// SetShipping 提交收货信息
// PUT /api/v1/checkout/shipping
// 校验失败返回422和字段级错误，用户停留在shipping步骤内修正。
func (h *CheckoutHandler) SetShipping(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	c, ok := h.activeCheckout(w, r, reqID)
	if !ok {
		return
	}

	var info domain.ShippingInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	if errs := c.SetShippingInfo(info); len(errs) > 0 {
		resp.Fail(w, http.StatusUnprocessableEntity, resp.CodeInvalidParam, "shipping info validation failed",
			fieldErrorsPayload{FieldErrors: errs, State: c.State()}, reqID, "")
		return
	}

	resp.OK(w, c.State(), reqID, "")
}

// SetPayment 提交支付信息
// PUT /api/v1/checkout/payment
func (h *CheckoutHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	c, ok := h.activeCheckout(w, r, reqID)
	if !ok {
		return
	}

	var info domain.PaymentInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	if errs := c.SetPaymentInfo(info); len(errs) > 0 {
		resp.Fail(w, http.StatusUnprocessableEntity, resp.CodeInvalidParam, "payment info validation failed",
			fieldErrorsPayload{FieldErrors: errs, State: c.State()}, reqID, "")
		return
	}

	resp.OK(w, c.State(), reqID, "")
}

// promoRequest 促销码请求体
type promoRequest struct {
	Code string `json:"code"`
}

// ApplyPromo 应用促销码，折扣反映在后续的订单摘要中
// POST /api/v1/checkout/promo
func (h *CheckoutHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	c, ok := h.activeCheckout(w, r, reqID)
	if !ok {
		return
	}

	var req promoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	percent, err := h.orderService.ResolvePromo(req.Code)
	if err != nil {
		if errors.Is(err, service.ErrPromoInvalid) {
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "promo code not recognized", reqID, "")
			return
		}

		h.logger.Error("resolve promo failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "apply promo failed", reqID, "")
		return
	}

	c.ApplyPromo(req.Code, percent)
	resp.OK(w, c.State(), reqID, "")
}

// Discard 放弃当前结账；购物车内容不受影响
// DELETE /api/v1/checkout
func (h *CheckoutHandler) Discard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	key := middleware.CartKeyFromContext(r.Context())

	h.manager.Discard(key)
	resp.OK(w, map[string]string{"status": "discarded"}, reqID, "")
}

// PlaceOrder 提交订单
// POST /api/v1/checkout/place
// 要求cart/shipping/payment全部完成；成功后清空购物车并丢弃结账。
// 携带X-Idempotency-Key时重复提交返回首次创建的订单。
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	key := middleware.CartKeyFromContext(r.Context())

	c, ok := h.activeCheckout(w, r, reqID)
	if !ok {
		return
	}

	if err := c.ReadyToPlace(); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "prerequisite checkout steps incomplete", reqID, "")
		return
	}

	state := c.State()
	var userID int64
	if user := middleware.UserFromContext(r.Context()); user != nil {
		userID = user.ID
	}

	session := h.registry.Session(r.Context(), key)
	snapshot := session.Snapshot()

	result := h.orderService.PlaceOrder(service.PlaceOrderInput{
		CartKey:        key,
		UserID:         userID,
		Items:          snapshot.Items,
		ShippingInfo:   *state.ShippingInfo,
		Summary:        *state.OrderSummary,
		IdempotencyKey: middleware.IdempotencyKeyFromContext(r.Context()),
	})
	if !result.Success {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, result.Message, reqID, "")
		return
	}

	// 下单成功：购物车与结账尝试的生命周期到此为止
	h.registry.Drop(r.Context(), key)
	h.manager.Discard(key)

	resp.OK(w, result, reqID, "")
}

// activeCheckout 取出当前购物车键对应的进行中结账
func (h *CheckoutHandler) activeCheckout(w http.ResponseWriter, r *http.Request, reqID string) (*checkout.Checkout, bool) {
	key := middleware.CartKeyFromContext(r.Context())

	c, err := h.manager.Get(key)
	if err != nil {
		resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "no active checkout", reqID, "")
		return nil, false
	}
	return c, true
}
