// Package repo 订单数据的内存仓储实现。
package repo

import (
	"sort"
	"sync"

	"github.com/marcdejesus/graph-market/internal/domain"
)

// OrderRepository 定义订单数据访问接口
type OrderRepository interface {
	Create(order *domain.Order) error
	GetByID(id string) (*domain.Order, error)
	ListByCartKey(cartKey string) ([]*domain.Order, error)
	Update(order *domain.Order) error
}

// orderRepo 是 OrderRepository 的内存实现
type orderRepo struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository() OrderRepository {
	return &orderRepo{orders: make(map[string]*domain.Order)}
}

// Create 保存新订单
func (r *orderRepo) Create(order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return ErrDuplicateOrder
	}
	cp := cloneOrder(order)
	r.orders[order.ID] = cp
	return nil
}

// GetByID 按ID查找订单，未找到时返回 (nil, nil)
func (r *orderRepo) GetByID(id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

// ListByCartKey 返回某个购物车键名下的全部订单，新订单在前
func (r *orderRepo) ListByCartKey(cartKey string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Order, 0, 4)
	for _, o := range r.orders {
		if o.CartKey == cartKey {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PlacedAt.After(out[j].PlacedAt)
	})
	return out, nil
}

// Update 更新已存在的订单
func (r *orderRepo) Update(order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; !ok {
		return ErrNotFound
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

// cloneOrder 深拷贝订单，避免调用方共享内部切片
func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = make([]domain.CartItem, len(o.Items))
	copy(cp.Items, o.Items)
	cp.Tracking = make([]domain.TrackingEvent, len(o.Tracking))
	copy(cp.Tracking, o.Tracking)
	return &cp
}
