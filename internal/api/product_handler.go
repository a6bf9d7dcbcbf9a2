// Package api 提供HTTP API处理器实现。
// API层负责处理HTTP请求/响应，进行数据验证和格式转换。
package api

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/marcdejesus/graph-market/internal/filter"
	"github.com/marcdejesus/graph-market/internal/middleware"
	"github.com/marcdejesus/graph-market/internal/resp"
	"github.com/marcdejesus/graph-market/internal/service"
)

// ProductHandler 商品相关的HTTP处理器
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler 创建商品处理器实例
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// ListProducts 获取商品列表
// GET /api/v1/products?category=tops,bottoms&min_price=20&in_stock=true&sort_field=price&sort_direction=desc
// 查询串即筛选状态：未识别的键被忽略，响应携带重新编码的规范查询串。
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	f, s := filter.Decode(r.URL.Query())

	result, err := h.productService.Browse(f, s)
	if err != nil {
		h.logger.Error("list products failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "list products failed", reqID, "")
		return
	}

	resp.OK(w, result, reqID, "")
}

// GetProduct 获取商品详情
// GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	// 从URL路径中提取商品ID
	id := pathTail(r.URL.Path, "/api/v1/products/")
	if id == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid product ID", reqID, "")
		return
	}

	product, err := h.productService.GetProduct(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "product not found", reqID, "")
			return
		}

		h.logger.Error("get product failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "get product failed", reqID, "")
		return
	}

	resp.OK(w, product, reqID, "")
}

// pathTail 提取前缀之后的单段路径参数；多段或为空时返回空串
func pathTail(path, prefix string) string {
	tail := strings.TrimPrefix(path, prefix)
	if tail == path || tail == "" || strings.Contains(tail, "/") {
		return ""
	}
	return tail
}
