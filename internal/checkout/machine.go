// Package checkout 实现结账流程的线性步骤状态机。
// 流程固定为 cart -> shipping -> payment -> confirmation，无环、不可跳步，
// confirmation 是终态，没有出边。
package checkout

import (
	"github.com/marcdejesus/graph-market/internal/domain"
)

// StepSet 已完成步骤的集合
type StepSet map[domain.CheckoutStep]bool

// Clone 返回集合的拷贝
func (s StepSet) Clone() StepSet {
	out := make(StepSet, len(s))
	for k, v := range s {
		if v {
			out[k] = true
		}
	}
	return out
}

// maxForwardIndex 返回允许前进到的最远步骤下标：
// 已完成步骤连续前缀的长度（即第一个未完成步骤的下标）。
// 完成了前k个步骤就只能前进到第k+1个，不允许越过未完成步骤。
func maxForwardIndex(completed StepSet) int {
	idx := 0
	for _, step := range domain.CheckoutSteps {
		if !completed[step] {
			break
		}
		idx++
	}
	if idx >= len(domain.CheckoutSteps) {
		return len(domain.CheckoutSteps) - 1
	}
	return idx
}

// CanTransition 是步骤跳转合法性的纯函数判定，独立于任何编排状态：
// 向后（回看/编辑）总是允许；向前最多到达未完成步骤前缀的下一步。
func CanTransition(current domain.CheckoutStep, completed StepSet, target domain.CheckoutStep) bool {
	curIdx, tgtIdx := domain.StepIndex(current), domain.StepIndex(target)
	if curIdx < 0 || tgtIdx < 0 {
		return false
	}
	if tgtIdx <= curIdx {
		return true
	}
	return tgtIdx <= maxForwardIndex(completed)
}

// NextStep 返回固定顺序中的下一步；终态没有下一步
func NextStep(current domain.CheckoutStep) (domain.CheckoutStep, bool) {
	idx := domain.StepIndex(current)
	if idx < 0 || idx >= len(domain.CheckoutSteps)-1 {
		return "", false
	}
	return domain.CheckoutSteps[idx+1], true
}
