// Package filter 筛选与排序在商品目录上的应用。
package filter

import (
	"sort"
	"strings"

	"github.com/marcdejesus/graph-market/internal/domain"
)

// Apply 对商品列表施加筛选条件并排序，返回新切片，不修改输入
func Apply(products []*domain.Product, f domain.FilterState, s domain.SortOptions) []*domain.Product {
	out := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if matches(p, f) {
			out = append(out, p)
		}
	}
	sortProducts(out, s)
	return out
}

// matches 判断单个商品是否满足全部筛选条件
func matches(p *domain.Product, f domain.FilterState) bool {
	if !tokenMatch(f.Category, p.Category) {
		return false
	}
	if !tokenMatch(f.Subcategory, p.Subcategory) {
		return false
	}
	if !anyOverlap(f.Sizes, p.Sizes) {
		return false
	}
	if !anyOverlap(f.Colors, p.Colors) {
		return false
	}
	if !tokenMatch(f.Brands, p.Brand) {
		return false
	}
	if !anyOverlap(f.Tags, p.Tags) {
		return false
	}

	price := int(p.EffectivePrice())
	if price < f.PriceRange.Min || price > f.PriceRange.Max {
		return false
	}
	if f.InStock && !p.InStock() {
		return false
	}
	if f.OnSale && !p.OnSale {
		return false
	}
	if f.Rating > 0 && p.Rating < float64(f.Rating) {
		return false
	}
	return true
}

// tokenMatch 空筛选列表放行一切；否则要求字段命中任一token（忽略大小写）
func tokenMatch(tokens []string, value string) bool {
	if len(tokens) == 0 {
		return true
	}
	for _, t := range tokens {
		if strings.EqualFold(t, value) {
			return true
		}
	}
	return false
}

// anyOverlap 空筛选列表放行一切；否则要求两个列表有交集
func anyOverlap(tokens, values []string) bool {
	if len(tokens) == 0 {
		return true
	}
	for _, t := range tokens {
		for _, v := range values {
			if strings.EqualFold(t, v) {
				return true
			}
		}
	}
	return false
}

// sortProducts 按排序选项原地排序，使用稳定排序保持同序元素的相对位置
func sortProducts(products []*domain.Product, s domain.SortOptions) {
	less := func(a, b *domain.Product) bool {
		switch s.Field {
		case domain.SortByPrice:
			return a.EffectivePrice() < b.EffectivePrice()
		case domain.SortByRating:
			return a.Rating < b.Rating
		case domain.SortByCreatedAt:
			return a.CreatedAt.Before(b.CreatedAt)
		case domain.SortByPopularity:
			return a.Popularity < b.Popularity
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}

	sort.SliceStable(products, func(i, j int) bool {
		if s.Direction == domain.SortDesc {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}
