// Package repo 预置的模拟目录数据。
package repo

import (
	"time"

	"github.com/marcdejesus/graph-market/internal/domain"
)

// fp 返回浮点数指针，用于促销价字段
func fp(v float64) *float64 { return &v }

// seedProducts 返回店面的预置商品目录。
// 数据覆盖筛选词汇表的各个维度（分类、尺码、颜色、品牌、标签、
// 促销、缺货），保证浏览和筛选功能开箱可用。
func seedProducts() []*domain.Product {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return []*domain.Product{
		{
			ID: "prod-001", Name: "Classic Crew Tee", Category: "tops", Subcategory: "t-shirts",
			Brand: "Everline", Price: 24, Sizes: []string{"XS", "S", "M", "L", "XL"},
			Colors: []string{"black", "white", "grey"}, Tags: []string{"basics", "cotton"},
			ImageURL: "/images/crew-tee.jpg", Rating: 4.6, Popularity: 98, Stock: 42,
			Description: "Midweight cotton tee with a relaxed fit.",
			CreatedAt:   base,
		},
		{
			ID: "prod-002", Name: "Slim Denim Jeans", Category: "bottoms", Subcategory: "jeans",
			Brand: "Northloom", Price: 78, Sizes: []string{"S", "M", "L"},
			Colors: []string{"indigo", "black"}, Tags: []string{"denim"},
			ImageURL: "/images/slim-jeans.jpg", Rating: 4.2, Popularity: 80, Stock: 17,
			CreatedAt: base.AddDate(0, 0, 5),
		},
		{
			ID: "prod-003", Name: "Linen Summer Dress", Category: "dresses", Subcategory: "midi",
			Brand: "Solstice", Price: 96, SalePrice: fp(64), OnSale: true,
			Sizes: []string{"XS", "S", "M"}, Colors: []string{"sage", "cream"},
			Tags: []string{"summer", "new"}, ImageURL: "/images/linen-dress.jpg",
			Rating: 4.8, Popularity: 91, Stock: 8,
			CreatedAt: base.AddDate(0, 1, 2),
		},
		{
			ID: "prod-004", Name: "Wool Overshirt", Category: "tops", Subcategory: "shirts",
			Brand: "Northloom", Price: 120, Sizes: []string{"M", "L", "XL"},
			Colors: []string{"charcoal", "rust"}, Tags: []string{"wool", "layering"},
			ImageURL: "/images/wool-overshirt.jpg", Rating: 4.4, Popularity: 64, Stock: 11,
			CreatedAt: base.AddDate(0, 0, 18),
		},
		{
			ID: "prod-005", Name: "Everyday Chino", Category: "bottoms", Subcategory: "chinos",
			Brand: "Everline", Price: 58, SalePrice: fp(45), OnSale: true,
			Sizes: []string{"S", "M", "L", "XL"}, Colors: []string{"khaki", "navy"},
			Tags: []string{"basics"}, ImageURL: "/images/chino.jpg",
			Rating: 4.1, Popularity: 73, Stock: 26,
			CreatedAt: base.AddDate(0, 0, 9),
		},
		{
			ID: "prod-006", Name: "Ribbed Beanie", Category: "accessories", Subcategory: "hats",
			Brand: "Solstice", Price: 18, Sizes: []string{"ONE"},
			Colors: []string{"black", "mustard"}, Tags: []string{"winter"},
			ImageURL: "/images/beanie.jpg", Rating: 3.9, Popularity: 55, Stock: 0,
			CreatedAt: base.AddDate(0, 0, 2),
		},
		{
			ID: "prod-007", Name: "Trail Running Jacket", Category: "outerwear", Subcategory: "jackets",
			Brand: "Altira", Price: 150, Sizes: []string{"S", "M", "L"},
			Colors: []string{"forest", "black"}, Tags: []string{"performance", "new"},
			ImageURL: "/images/trail-jacket.jpg", Rating: 4.7, Popularity: 88, Stock: 5,
			CreatedAt: base.AddDate(0, 1, 10),
		},
		{
			ID: "prod-008", Name: "Canvas Tote", Category: "accessories", Subcategory: "bags",
			Brand: "Everline", Price: 32, Sizes: []string{"ONE"},
			Colors: []string{"natural"}, Tags: []string{"basics", "cotton"},
			ImageURL: "/images/tote.jpg", Rating: 4.0, Popularity: 47, Stock: 60,
			CreatedAt: base.AddDate(0, 0, 25),
		},
	}
}
