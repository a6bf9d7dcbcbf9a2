// Package repo 提供数据访问层实现。
// 仓储模式（Repository Pattern）将数据访问逻辑与业务逻辑分离；
// 本服务的目录和订单数据都是进程内的模拟数据，没有外部数据库权威，
// 接口形状保持不变，未来可替换为真实后端。
package repo

import (
	"sync"

	"github.com/marcdejesus/graph-market/internal/domain"
)

// ProductRepository 定义商品目录的只读访问接口
type ProductRepository interface {
	List() ([]*domain.Product, error)
	GetByID(id string) (*domain.Product, error)
}

// productRepo 是预置模拟数据的内存实现
type productRepo struct {
	mu       sync.RWMutex
	products []*domain.Product
	byID     map[string]*domain.Product
}

// NewProductRepository 创建内存目录仓储，加载预置商品数据
func NewProductRepository() ProductRepository {
	products := seedProducts()
	byID := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &productRepo{products: products, byID: byID}
}

// List 返回全部商品；返回拷贝切片，调用方可自由排序
func (r *productRepo) List() ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

// GetByID 按ID查找商品，未找到时返回 (nil, nil)
func (r *productRepo) GetByID(id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id], nil
}
