// Package domain 商品筛选与排序的领域模型。
package domain

// 价格区间的默认边界。
// 编码时处于默认值的边界会被省略，解码缺失时回填默认值。
const (
	MinPriceDefault = 0
	MaxPriceDefault = 999999
)

// PriceRange 价格区间，约束 Min <= Max 且均非负
type PriceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// IsDefault 判断区间是否未被用户收窄
func (p PriceRange) IsDefault() bool {
	return p.Min == MinPriceDefault && p.Max == MaxPriceDefault
}

// FilterState 表示商品浏览页的筛选条件。
// 每个列表字段是一组字符串token；状态完全由URL查询串派生，
// 并且可无损地编码回URL，保证筛选结果可分享、可收藏。
type FilterState struct {
	Category    []string   `json:"category,omitempty"`
	Subcategory []string   `json:"subcategory,omitempty"`
	Sizes       []string   `json:"sizes,omitempty"`
	Colors      []string   `json:"colors,omitempty"`
	Brands      []string   `json:"brands,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	PriceRange  PriceRange `json:"priceRange"`
	InStock     bool       `json:"inStock,omitempty"`
	OnSale      bool       `json:"onSale,omitempty"`
	Rating      int        `json:"rating,omitempty"`
}

// NewFilterState 返回处于全默认值的筛选状态
func NewFilterState() FilterState {
	return FilterState{
		PriceRange: PriceRange{Min: MinPriceDefault, Max: MaxPriceDefault},
	}
}

// IsZero 判断筛选状态是否未施加任何条件
func (f FilterState) IsZero() bool {
	return len(f.Category) == 0 && len(f.Subcategory) == 0 &&
		len(f.Sizes) == 0 && len(f.Colors) == 0 &&
		len(f.Brands) == 0 && len(f.Tags) == 0 &&
		f.PriceRange.IsDefault() && !f.InStock && !f.OnSale && f.Rating == 0
}

// SortField 排序字段
type SortField string

const (
	SortByName       SortField = "name"
	SortByPrice      SortField = "price"
	SortByRating     SortField = "rating"
	SortByCreatedAt  SortField = "createdAt"
	SortByPopularity SortField = "popularity"
)

// SortDirection 排序方向
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortOptions 排序选项
type SortOptions struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort 返回默认排序（按名称升序）
func DefaultSort() SortOptions {
	return SortOptions{Field: SortByName, Direction: SortAsc}
}

// IsDefault 判断排序是否处于默认值
func (s SortOptions) IsDefault() bool {
	return s == DefaultSort()
}

// ValidSortField 判断字段是否在识别的词汇表内
func ValidSortField(f SortField) bool {
	switch f {
	case SortByName, SortByPrice, SortByRating, SortByCreatedAt, SortByPopularity:
		return true
	}
	return false
}

// ValidSortDirection 判断方向是否合法
func ValidSortDirection(d SortDirection) bool {
	return d == SortAsc || d == SortDesc
}
