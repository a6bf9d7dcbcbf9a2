// Package filter 实现筛选/排序状态与URL查询串的双向编解码，
// 以及筛选排序在商品目录上的应用。
//
// 往返定律：对于只使用识别词汇表的状态f和排序s，
// Decode(Encode(f, s)) 必须精确还原 (f, s)；未识别的键在解码时被丢弃。
package filter

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/marcdejesus/graph-market/internal/domain"
)

// 识别的查询参数键
const (
	keyCategory      = "category"
	keySubcategory   = "subcategory"
	keySizes         = "sizes"
	keyColors        = "colors"
	keyBrands        = "brands"
	keyTags          = "tags"
	keyMinPrice      = "min_price"
	keyMaxPrice      = "max_price"
	keyInStock       = "in_stock"
	keyOnSale        = "on_sale"
	keyRating        = "rating"
	keySortField     = "sort_field"
	keySortDirection = "sort_direction"
)

// Decode 从URL查询参数解析筛选和排序状态。
// 未识别的键被忽略；数字字段格式错误按缺失处理（回填默认值），
// 不会被解释为零。
func Decode(values url.Values) (domain.FilterState, domain.SortOptions) {
	f := domain.NewFilterState()

	f.Category = splitTokens(values.Get(keyCategory))
	f.Subcategory = splitTokens(values.Get(keySubcategory))
	f.Sizes = splitTokens(values.Get(keySizes))
	f.Colors = splitTokens(values.Get(keyColors))
	f.Brands = splitTokens(values.Get(keyBrands))
	f.Tags = splitTokens(values.Get(keyTags))

	if n, ok := parseNonNegInt(values.Get(keyMinPrice)); ok {
		f.PriceRange.Min = n
	}
	if n, ok := parseNonNegInt(values.Get(keyMaxPrice)); ok {
		f.PriceRange.Max = n
	}
	// 区间倒置时恢复默认上界，保持 min <= max 不变量
	if f.PriceRange.Min > f.PriceRange.Max {
		f.PriceRange.Max = domain.MaxPriceDefault
		if f.PriceRange.Min > f.PriceRange.Max {
			f.PriceRange.Min = domain.MinPriceDefault
		}
	}

	// 布尔键只有字面量"true"才生效
	f.InStock = values.Get(keyInStock) == "true"
	f.OnSale = values.Get(keyOnSale) == "true"

	if n, ok := parseNonNegInt(values.Get(keyRating)); ok && n >= 1 && n <= 5 {
		f.Rating = n
	}

	s := domain.DefaultSort()
	if field := domain.SortField(values.Get(keySortField)); domain.ValidSortField(field) {
		s.Field = field
	}
	if dir := domain.SortDirection(values.Get(keySortDirection)); domain.ValidSortDirection(dir) {
		s.Direction = dir
	}

	return f, s
}

// DecodeString 解析原始查询串；解析失败时返回全默认状态
func DecodeString(query string) (domain.FilterState, domain.SortOptions) {
	values, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return domain.NewFilterState(), domain.DefaultSort()
	}
	return Decode(values)
}

// Encode 将筛选和排序状态编码为URL查询串。
// 处于默认值的键（空列表、默认价格边界、false布尔、默认排序）被省略，
// 保持URL最小化；列表值按插入顺序逗号连接。
func Encode(f domain.FilterState, s domain.SortOptions) string {
	var b strings.Builder

	appendList(&b, keyCategory, f.Category)
	appendList(&b, keySubcategory, f.Subcategory)
	appendList(&b, keySizes, f.Sizes)
	appendList(&b, keyColors, f.Colors)
	appendList(&b, keyBrands, f.Brands)
	appendList(&b, keyTags, f.Tags)

	if f.PriceRange.Min != domain.MinPriceDefault {
		appendParam(&b, keyMinPrice, strconv.Itoa(f.PriceRange.Min))
	}
	if f.PriceRange.Max != domain.MaxPriceDefault {
		appendParam(&b, keyMaxPrice, strconv.Itoa(f.PriceRange.Max))
	}
	if f.InStock {
		appendParam(&b, keyInStock, "true")
	}
	if f.OnSale {
		appendParam(&b, keyOnSale, "true")
	}
	if f.Rating > 0 {
		appendParam(&b, keyRating, strconv.Itoa(f.Rating))
	}
	if !s.IsDefault() {
		appendParam(&b, keySortField, string(s.Field))
		appendParam(&b, keySortDirection, string(s.Direction))
	}

	return b.String()
}

// splitTokens 拆分逗号分隔的token列表，保留原始顺序，丢弃空项
func splitTokens(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseNonNegInt 解析非负整数；空串或格式错误都返回 ok=false
func parseNonNegInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// appendList 追加逗号连接的列表参数，空列表被省略
func appendList(b *strings.Builder, key string, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	appendParam(b, key, strings.Join(tokens, ","))
}

// appendParam 追加单个查询参数，值做URL转义
func appendParam(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte('&')
	}
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))
}
