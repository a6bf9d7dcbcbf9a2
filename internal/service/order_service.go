// Package service 订单操作的业务逻辑实现。
// 所有订单变更操作都返回统一的 OrderResult{success, message, order?}，
// 与外部GraphQL契约保持相同形状；支付处理只是桩实现，没有真实网关。
package service

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcdejesus/graph-market/internal/domain"
	"github.com/marcdejesus/graph-market/internal/repo"
)

// 订单相关业务错误
var (
	ErrOrderNotFound = errors.New("order not found")
	ErrPromoInvalid  = errors.New("promo code not recognized")
)

// 可用的促销码表；真实实现中来自后端配置
var promoCodes = map[string]float64{
	"SAVE10":  10,
	"SAVE20":  20,
	"WELCOME": 15,
}

// PlaceOrderInput 下单所需的全部数据，由结账编排器收集
type PlaceOrderInput struct {
	CartKey        string
	UserID         int64
	Items          []domain.CartItem
	ShippingInfo   domain.ShippingInfo
	Summary        domain.OrderSummary
	IdempotencyKey string
}

// OrderService 定义订单服务接口
type OrderService interface {
	// 变更操作，形状对齐GraphQL契约
	PlaceOrder(input PlaceOrderInput) *domain.OrderResult
	UpdateStatus(orderID string, status domain.OrderStatus) *domain.OrderResult
	Cancel(orderID string) *domain.OrderResult
	Reorder(orderID string) *domain.OrderResult
	ProcessPayment(orderID string) *domain.OrderResult

	// 查询操作
	GetOrder(orderID string) (*domain.Order, error)
	ListOrders(cartKey string) ([]*domain.Order, error)
	TrackingEvents(orderID string) ([]domain.TrackingEvent, error)

	// ResolvePromo 解析促销码，返回折扣百分比
	ResolvePromo(code string) (float64, error)
}

// orderService 实现OrderService接口
type orderService struct {
	orderRepo repo.OrderRepository
	logger    *zap.Logger

	// 幂等键 -> 订单ID，防止重复提交产生重复订单
	mu         sync.Mutex
	idempotent map[string]string
}

// NewOrderService 创建订单服务实例
func NewOrderService(orderRepo repo.OrderRepository, logger *zap.Logger) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		logger:     logger,
		idempotent: make(map[string]string),
	}
}

// fail 构造失败结果
func fail(message string) *domain.OrderResult {
	return &domain.OrderResult{Success: false, Message: message}
}

// PlaceOrder 创建订单。
// 相同幂等键的重复调用返回首次创建的订单而不是新建一单。
func (s *orderService) PlaceOrder(input PlaceOrderInput) *domain.OrderResult {
	if len(input.Items) == 0 {
		return fail("cart is empty")
	}

	s.mu.Lock()
	if input.IdempotencyKey != "" {
		if existingID, ok := s.idempotent[input.IdempotencyKey]; ok {
			s.mu.Unlock()
			existing, err := s.orderRepo.GetByID(existingID)
			if err != nil || existing == nil {
				return fail("order lookup failed")
			}
			return &domain.OrderResult{Success: true, Message: "order already placed", Order: existing}
		}
	}
	s.mu.Unlock()

	now := time.Now()
	order := &domain.Order{
		ID:           uuid.New().String(),
		UserID:       input.UserID,
		CartKey:      input.CartKey,
		Items:        input.Items,
		Status:       domain.OrderStatusPending,
		ShippingInfo: input.ShippingInfo,
		Summary:      input.Summary,
		PlacedAt:     now,
		UpdatedAt:    now,
		Tracking: []domain.TrackingEvent{{
			Status:      domain.OrderStatusPending,
			Description: "Order received",
			OccurredAt:  now,
		}},
	}

	if err := s.orderRepo.Create(order); err != nil {
		s.logger.Error("failed to create order", zap.Error(err))
		return fail("failed to create order")
	}

	if input.IdempotencyKey != "" {
		s.mu.Lock()
		s.idempotent[input.IdempotencyKey] = order.ID
		s.mu.Unlock()
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("cart_key", order.CartKey),
		zap.Float64("total", order.Summary.Total),
	)
	return &domain.OrderResult{Success: true, Message: "order placed", Order: order}
}

// UpdateStatus 推进订单状态并追加跟踪事件
func (s *orderService) UpdateStatus(orderID string, status domain.OrderStatus) *domain.OrderResult {
	if !domain.ValidOrderStatus(status) {
		return fail("unknown order status")
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil || order == nil {
		return fail("order not found")
	}

	order.Status = status
	order.UpdatedAt = time.Now()
	order.Tracking = append(order.Tracking, domain.TrackingEvent{
		Status:      status,
		Description: "Status updated to " + string(status),
		OccurredAt:  order.UpdatedAt,
	})

	if err := s.orderRepo.Update(order); err != nil {
		s.logger.Error("failed to update order", zap.Error(err))
		return fail("failed to update order")
	}
	return &domain.OrderResult{Success: true, Message: "status updated", Order: order}
}

// Cancel 取消订单；只有待支付/已支付状态允许取消
func (s *orderService) Cancel(orderID string) *domain.OrderResult {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil || order == nil {
		return fail("order not found")
	}
	if !order.Status.CanCancel() {
		return fail("order can no longer be cancelled")
	}
	return s.UpdateStatus(orderID, domain.OrderStatusCancelled)
}

// Reorder 基于历史订单创建一笔新的待支付订单
func (s *orderService) Reorder(orderID string) *domain.OrderResult {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil || order == nil {
		return fail("order not found")
	}

	return s.PlaceOrder(PlaceOrderInput{
		CartKey:      order.CartKey,
		UserID:       order.UserID,
		Items:        order.Items,
		ShippingInfo: order.ShippingInfo,
		Summary:      order.Summary,
	})
}

// ProcessPayment 处理支付（桩实现：总是成功并将订单置为已支付）。
// 真实的网关集成、重试与对账都属于本服务之外的后端职责。
func (s *orderService) ProcessPayment(orderID string) *domain.OrderResult {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil || order == nil {
		return fail("order not found")
	}
	if order.Status != domain.OrderStatusPending {
		return fail("order is not awaiting payment")
	}
	return s.UpdateStatus(orderID, domain.OrderStatusPaid)
}

// GetOrder 查询单个订单
func (s *orderService) GetOrder(orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders 查询购物车键名下的订单历史
func (s *orderService) ListOrders(cartKey string) ([]*domain.Order, error) {
	return s.orderRepo.ListByCartKey(cartKey)
}

// TrackingEvents 查询订单的跟踪事件
func (s *orderService) TrackingEvents(orderID string) ([]domain.TrackingEvent, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	return order.Tracking, nil
}

// ResolvePromo 解析促销码（大小写不敏感）
func (s *orderService) ResolvePromo(code string) (float64, error) {
	percent, ok := promoCodes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return 0, ErrPromoInvalid
	}
	return percent, nil
}
