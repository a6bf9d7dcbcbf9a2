package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/marcdejesus/graph-market/internal/cart"
	"github.com/marcdejesus/graph-market/internal/domain"
	"github.com/marcdejesus/graph-market/internal/middleware"
	"github.com/marcdejesus/graph-market/internal/resp"
	"github.com/marcdejesus/graph-market/internal/service"
)

// CartHandler 购物车相关的HTTP处理器。
// 购物车键由CartSession中间件写入上下文：已登录用户为user:<id>，
// 匿名访客为session:<uuid>。
type CartHandler struct {
	registry       *cart.Registry
	productService service.ProductService
	logger         *zap.Logger
}

// NewCartHandler 创建购物车处理器实例
func NewCartHandler(registry *cart.Registry, productService service.ProductService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		registry:       registry,
		productService: productService,
		logger:         logger,
	}
}

// cartItemRequest 购物车行项目操作的请求体
type cartItemRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity"`
}

func (req *cartItemRequest) variant() domain.Variant {
	return domain.Variant{Size: req.Size, Color: req.Color}
}

// cartKey 从上下文取出购物车键；CartSession中间件保证其存在
func (h *CartHandler) cartKey(w http.ResponseWriter, r *http.Request, reqID string) (string, bool) {
	key := middleware.CartKeyFromContext(r.Context())
	if key == "" {
		h.logger.Error("cart key missing from context", zap.String("request_id", reqID))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "cart session unavailable", reqID, "")
		return "", false
	}
	return key, true
}

// GetCart 获取当前购物车状态
// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	key, ok := h.cartKey(w, r, reqID)
	if !ok {
		return
	}

	state := h.registry.Session(r.Context(), key).Snapshot()
	resp.OK(w, state, reqID, "")
}

// AddItem 向购物车添加商品
// POST /api/v1/cart/items
// 数量会被静默钳制到[1, maxQuantity]；响应总是变更后的完整状态。
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	key, ok := h.cartKey(w, r, reqID)
	if !ok {
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}
	if req.ProductID == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "productId is required", reqID, "")
		return
	}

	item, err := h.productService.ResolveCartItem(req.ProductID, req.variant())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "product not found", reqID, "")
		case errors.Is(err, service.ErrVariantNotOffered):
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "variant not offered for this product", reqID, "")
		case errors.Is(err, service.ErrOutOfStock):
			resp.Error(w, http.StatusConflict, resp.CodeInvalidParam, "product is out of stock", reqID, "")
		default:
			h.logger.Error("resolve cart item failed", zap.String("request_id", reqID), zap.Error(err))
			resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "add item failed", reqID, "")
		}
		return
	}

	state := h.registry.Session(r.Context(), key).AddItem(r.Context(), item, req.Quantity)
	resp.OK(w, state, reqID, "")
}

// UpdateItem 设置购物车行项目的数量
// PUT /api/v1/cart/items
// 数量为0等价于删除该行项目。
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	key, ok := h.cartKey(w, r, reqID)
	if !ok {
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}
	if req.ProductID == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "productId is required", reqID, "")
		return
	}

	state := h.registry.Session(r.Context(), key).SetQuantity(r.Context(), req.ProductID, req.variant(), req.Quantity)
	resp.OK(w, state, reqID, "")
}

// RemoveItem 从购物车删除行项目
// DELETE /api/v1/cart/items
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	key, ok := h.cartKey(w, r, reqID)
	if !ok {
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}
	if req.ProductID == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "productId is required", reqID, "")
		return
	}

	state := h.registry.Session(r.Context(), key).RemoveItem(r.Context(), req.ProductID, req.variant())
	resp.OK(w, state, reqID, "")
}

// ClearCart 清空购物车
// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	key, ok := h.cartKey(w, r, reqID)
	if !ok {
		return
	}

	state := h.registry.Session(r.Context(), key).Clear(r.Context())
	resp.OK(w, state, reqID, "")
}
