// Package domain 定义商品目录的领域模型。
package domain

import (
	"time"
)

// Product 表示店面目录中的一件商品。
// 目录数据在本服务中是预置的模拟数据，没有真实的库存权威。
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	SalePrice   *float64  `json:"salePrice,omitempty"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	Sizes       []string  `json:"sizes,omitempty"`
	Colors      []string  `json:"colors,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Rating      float64   `json:"rating"`
	Popularity  int       `json:"popularity"`
	Stock       int       `json:"stock"`
	OnSale      bool      `json:"onSale"`
	CreatedAt   time.Time `json:"createdAt"`
}

// InStock 判断商品是否有货
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// EffectivePrice 返回当前生效价格（促销价优先）
func (p *Product) EffectivePrice() float64 {
	if p.OnSale && p.SalePrice != nil && *p.SalePrice >= 0 {
		return *p.SalePrice
	}
	return p.Price
}

// ToCartItem 将商品转换为购物车行项目。
// MaxQuantity 来自当前库存，作为每行数量的钳制上限。
func (p *Product) ToCartItem(variant Variant) CartItem {
	return CartItem{
		ProductID:   p.ID,
		Variant:     variant,
		Name:        p.Name,
		Price:       p.EffectivePrice(),
		ImageURL:    p.ImageURL,
		Quantity:    1,
		MaxQuantity: p.Stock,
	}
}

// ProductListResponse 商品浏览响应。
// Query 是筛选条件重新编码后的规范查询串，用于生成可分享链接。
type ProductListResponse struct {
	Products []*Product `json:"products"`
	Total    int        `json:"total"`
	Query    string     `json:"query,omitempty"`
}
