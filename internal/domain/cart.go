// Package domain 定义店面业务的领域模型和核心业务规则。
// 领域模型是业务逻辑的核心，独立于外部依赖（存储、HTTP等）。
package domain

import (
	"errors"
	"fmt"
	"time"
)

// 购物车相关的领域错误
var (
	ErrInvalidSnapshot = errors.New("invalid cart snapshot")
)

// Variant 表示商品的可购买变体（尺码+颜色组合）。
// 空字段表示该商品没有对应维度的变体。
type Variant struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

// Key 返回变体的规范化标识，用于行项目匹配
func (v Variant) Key() string {
	if v.Size == "" && v.Color == "" {
		return ""
	}
	return v.Size + "/" + v.Color
}

// CartItem 表示购物车中的一个行项目。
// 行项目的唯一性由 (ProductID, Variant) 精确匹配决定。
type CartItem struct {
	ProductID   string  `json:"productId"`
	Variant     Variant `json:"variant,omitempty"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Quantity    int     `json:"quantity"`
	MaxQuantity int     `json:"maxQuantity"`
}

// LineKey 返回行项目的唯一标识
func (i *CartItem) LineKey() string {
	return i.ProductID + "#" + i.Variant.Key()
}

// Subtotal 返回行项目小计
func (i *CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Validate 校验单个行项目的不变量
func (i *CartItem) Validate() error {
	if i.ProductID == "" {
		return fmt.Errorf("%w: missing productId", ErrInvalidSnapshot)
	}
	if i.Price < 0 {
		return fmt.Errorf("%w: negative price for %s", ErrInvalidSnapshot, i.ProductID)
	}
	if i.MaxQuantity < 1 {
		return fmt.Errorf("%w: maxQuantity < 1 for %s", ErrInvalidSnapshot, i.ProductID)
	}
	if i.Quantity < 1 || i.Quantity > i.MaxQuantity {
		return fmt.Errorf("%w: quantity %d out of [1,%d] for %s",
			ErrInvalidSnapshot, i.Quantity, i.MaxQuantity, i.ProductID)
	}
	return nil
}

// CartState 表示购物车聚合。
// 字段的JSON名称即持久化快照的线上格式，保持向后兼容：
// items[].productId、quantity、maxQuantity 对任何消费方都是必需字段。
type CartState struct {
	Items       []CartItem `json:"items"`
	TotalItems  int        `json:"totalItems"`
	TotalAmount float64    `json:"totalAmount"`
	LastUpdated time.Time  `json:"lastUpdated"`
}

// EmptyCart 返回规范的空购物车状态
func EmptyCart() CartState {
	return CartState{Items: []CartItem{}}
}

// Validate 校验聚合不变量：行项目合法、行唯一、总计一致。
// 用于判定从存储加载的快照是否可信；不可信的快照应整体丢弃。
func (s *CartState) Validate() error {
	seen := make(map[string]struct{}, len(s.Items))
	items, amount := 0, 0.0
	for idx := range s.Items {
		it := &s.Items[idx]
		if err := it.Validate(); err != nil {
			return err
		}
		key := it.LineKey()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate line %s", ErrInvalidSnapshot, key)
		}
		seen[key] = struct{}{}
		items += it.Quantity
		amount += it.Subtotal()
	}
	if s.TotalItems != items {
		return fmt.Errorf("%w: totalItems %d != %d", ErrInvalidSnapshot, s.TotalItems, items)
	}
	// 浮点比较留出微小误差
	if diff := s.TotalAmount - amount; diff > 1e-6 || diff < -1e-6 {
		return fmt.Errorf("%w: totalAmount %.4f != %.4f", ErrInvalidSnapshot, s.TotalAmount, amount)
	}
	return nil
}

// Clone 返回状态的深拷贝，保证纯函数操作不共享底层切片
func (s CartState) Clone() CartState {
	out := s
	out.Items = make([]CartItem, len(s.Items))
	copy(out.Items, s.Items)
	return out
}
