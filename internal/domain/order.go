// Package domain 订单相关的领域模型。
// 订单操作的响应形状与外部GraphQL契约保持一致：{success, message, order?}。
package domain

import (
	"time"
)

// OrderStatus 定义订单状态类型
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus 判断状态是否在词汇表内
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanCancel 判断订单当前状态是否允许取消
func (s OrderStatus) CanCancel() bool {
	return s == OrderStatusPending || s == OrderStatusPaid
}

// Order 表示一笔已提交的订单
type Order struct {
	ID           string        `json:"id"`
	UserID       int64         `json:"userId,omitempty"`
	CartKey      string        `json:"cartKey"`
	Items        []CartItem    `json:"items"`
	Status       OrderStatus   `json:"status"`
	ShippingInfo ShippingInfo  `json:"shippingInfo"`
	Summary      OrderSummary  `json:"summary"`
	PlacedAt     time.Time     `json:"placedAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	Tracking     []TrackingEvent `json:"tracking,omitempty"`
}

// TrackingEvent 订单跟踪事件
type TrackingEvent struct {
	Status      OrderStatus `json:"status"`
	Description string      `json:"description"`
	OccurredAt  time.Time   `json:"occurredAt"`
}

// OrderResult 是所有订单操作的统一返回形状。
// Success=false 时 Message 说明原因，Order 可能为空。
type OrderResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   *Order `json:"order,omitempty"`
}

// PromoCode 促销码定义，折扣按订单小计的百分比计算
type PromoCode struct {
	Code    string  `json:"code"`
	Percent float64 `json:"percent"`
}
