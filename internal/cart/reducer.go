// Package cart 实现购物车的状态归约和会话管理。
// 归约操作都是纯函数：输入状态不被修改，每次返回完整的新状态，
// 总计字段在每次变更后重新计算，数量始终钳制在 [1, maxQuantity]。
package cart

import (
	"time"

	"github.com/marcdejesus/graph-market/internal/domain"
)

// clampQuantity 将请求数量钳制到行项目允许的区间。
// 钳制是静默的：调用方应以归约后的状态为准，而不是自己的乐观假设。
func clampQuantity(q, max int) int {
	if q < 1 {
		return 1
	}
	if max >= 1 && q > max {
		return max
	}
	return q
}

// recompute 重算总计并更新时间戳，所有变更操作的收尾步骤
func recompute(state domain.CartState, now time.Time) domain.CartState {
	items, amount := 0, 0.0
	for i := range state.Items {
		items += state.Items[i].Quantity
		amount += state.Items[i].Subtotal()
	}
	state.TotalItems = items
	state.TotalAmount = amount
	state.LastUpdated = now
	return state
}

// findIndex 按 (productId, variant) 精确匹配查找行项目下标
func findIndex(state *domain.CartState, productID string, variant domain.Variant) int {
	for i := range state.Items {
		if state.Items[i].ProductID == productID && state.Items[i].Variant == variant {
			return i
		}
	}
	return -1
}

// AddItem 向购物车添加商品。
// 已存在相同 (productId, variant) 的行时增加其数量并钳制到上限，
// 否则追加新行；quantityToAdd 小于1时按1处理。
func AddItem(state domain.CartState, item domain.CartItem, quantityToAdd int) domain.CartState {
	if quantityToAdd < 1 {
		quantityToAdd = 1
	}
	next := state.Clone()

	if idx := findIndex(&next, item.ProductID, item.Variant); idx >= 0 {
		line := &next.Items[idx]
		line.Quantity = clampQuantity(line.Quantity+quantityToAdd, line.MaxQuantity)
	} else {
		item.Quantity = clampQuantity(quantityToAdd, item.MaxQuantity)
		next.Items = append(next.Items, item)
	}
	return recompute(next, time.Now())
}

// RemoveItem 删除匹配的行项目；不存在时是no-op而非错误
func RemoveItem(state domain.CartState, productID string, variant domain.Variant) domain.CartState {
	idx := findIndex(&state, productID, variant)
	if idx < 0 {
		return state
	}
	next := state.Clone()
	next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	return recompute(next, time.Now())
}

// SetQuantity 设置行项目数量。
// newQuantity <= 0 等价于 RemoveItem；否则钳制到 [1, maxQuantity]；
// 行不存在时是no-op。
func SetQuantity(state domain.CartState, productID string, variant domain.Variant, newQuantity int) domain.CartState {
	if newQuantity <= 0 {
		return RemoveItem(state, productID, variant)
	}
	idx := findIndex(&state, productID, variant)
	if idx < 0 {
		return state
	}
	next := state.Clone()
	line := &next.Items[idx]
	line.Quantity = clampQuantity(newQuantity, line.MaxQuantity)
	return recompute(next, time.Now())
}

// Clear 返回规范的空购物车状态
func Clear(_ domain.CartState) domain.CartState {
	next := domain.EmptyCart()
	return recompute(next, time.Now())
}

// FindItem 纯查找，不修改状态；返回行项目的副本
func FindItem(state domain.CartState, productID string, variant domain.Variant) (domain.CartItem, bool) {
	idx := findIndex(&state, productID, variant)
	if idx < 0 {
		return domain.CartItem{}, false
	}
	return state.Items[idx], true
}
