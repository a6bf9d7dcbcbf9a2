// Package service 商品浏览的业务逻辑实现。
package service

import (
	"errors"
	"fmt"

	"github.com/marcdejesus/graph-market/internal/domain"
	"github.com/marcdejesus/graph-market/internal/filter"
	"github.com/marcdejesus/graph-market/internal/repo"
)

// 商品相关业务错误
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrVariantNotOffered = errors.New("variant not offered for product")
	ErrOutOfStock        = errors.New("product out of stock")
)

// ProductService 定义商品浏览的业务逻辑接口
type ProductService interface {
	// Browse 按筛选和排序条件返回商品列表，
	// 响应携带重新编码的规范查询串，用于可分享链接
	Browse(f domain.FilterState, s domain.SortOptions) (*domain.ProductListResponse, error)

	// GetProduct 获取商品详情
	GetProduct(id string) (*domain.Product, error)

	// ResolveCartItem 将 (商品, 变体) 解析为可入车的行项目，
	// 校验变体在售且有货
	ResolveCartItem(productID string, variant domain.Variant) (domain.CartItem, error)
}

// productService 实现ProductService接口
type productService struct {
	productRepo repo.ProductRepository
}

// NewProductService 创建商品服务实例
func NewProductService(productRepo repo.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

// Browse 列出满足条件的商品
func (s *productService) Browse(f domain.FilterState, sortOpts domain.SortOptions) (*domain.ProductListResponse, error) {
	all, err := s.productRepo.List()
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	matched := filter.Apply(all, f, sortOpts)
	return &domain.ProductListResponse{
		Products: matched,
		Total:    len(matched),
		Query:    filter.Encode(f, sortOpts),
	}, nil
}

// GetProduct 获取商品详情
func (s *productService) GetProduct(id string) (*domain.Product, error) {
	p, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// ResolveCartItem 解析购物车行项目。
// 变体的尺码/颜色必须出现在商品的可选列表中；
// 库存为零的商品不能加入购物车。
func (s *productService) ResolveCartItem(productID string, variant domain.Variant) (domain.CartItem, error) {
	p, err := s.GetProduct(productID)
	if err != nil {
		return domain.CartItem{}, err
	}
	if !p.InStock() {
		return domain.CartItem{}, ErrOutOfStock
	}
	if variant.Size != "" && !contains(p.Sizes, variant.Size) {
		return domain.CartItem{}, ErrVariantNotOffered
	}
	if variant.Color != "" && !contains(p.Colors, variant.Color) {
		return domain.CartItem{}, ErrVariantNotOffered
	}
	return p.ToCartItem(variant), nil
}

// contains 判断字符串是否在列表中
func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
