// Package checkout 结账编排器：组合购物车状态与步骤状态机，
// 负责步骤数据的校验、订单摘要的推导和步骤推进的门控。
package checkout

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/marcdejesus/graph-market/internal/domain"
)

// 编排错误定义。
// 步骤推进被拒绝不是错误（静默no-op）；这些错误只用于真正的误用。
var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrCheckoutExists  = errors.New("checkout already in progress")
	ErrNoCheckout      = errors.New("no active checkout")
	ErrStepIncomplete  = errors.New("prerequisite steps incomplete")
	ErrUnknownStep     = errors.New("unknown checkout step")
	ErrMissingStepData = errors.New("step data not provided")
)

// 配送方式的展示名与费用；订单满100免标准配送费
var shippingMethods = map[string]struct {
	label string
	cost  float64
}{
	"standard":  {label: "Standard (5-7 business days)", cost: 5.99},
	"express":   {label: "Express (2-3 business days)", cost: 14.99},
	"overnight": {label: "Overnight", cost: 29.99},
}

const freeShippingThreshold = 100.0

// CartReader 是编排器对购物车会话的最小依赖
type CartReader interface {
	Snapshot() domain.CartState
}

// Checkout 表示一次进行中的结账尝试。
// 仅存在于内存：下单成功或显式退出后被丢弃，不跨重启保留。
type Checkout struct {
	mu       sync.Mutex
	cart     CartReader
	state    domain.CheckoutState
	validate *validator.Validate
	logger   *zap.Logger

	promoCode    string
	promoPercent float64
}

// newCheckout 创建结账实例，起始步骤为cart
func newCheckout(cart CartReader, validate *validator.Validate, logger *zap.Logger) *Checkout {
	return &Checkout{
		cart: cart,
		state: domain.CheckoutState{
			CurrentStep:    domain.StepCart,
			CompletedSteps: make(map[domain.CheckoutStep]bool),
		},
		validate: validate,
		logger:   logger,
	}
}

// State 返回当前结账状态的拷贝（含最新订单摘要）
func (c *Checkout) State() domain.CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// snapshotLocked 构造状态拷贝，调用方持锁
func (c *Checkout) snapshotLocked() domain.CheckoutState {
	out := c.state
	out.CompletedSteps = StepSet(c.state.CompletedSteps).Clone()
	summary := c.summaryLocked()
	out.OrderSummary = &summary
	return out
}

// CompleteStep 将步骤标记为完成；不推进CurrentStep。
// shipping/payment步骤要求对应数据已通过校验，否则拒绝标记。
func (c *Checkout) CompleteStep(step domain.CheckoutStep) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if domain.StepIndex(step) < 0 {
		return ErrUnknownStep
	}
	switch step {
	case domain.StepCart:
		if c.cart.Snapshot().TotalItems == 0 {
			return ErrEmptyCart
		}
	case domain.StepShipping:
		if c.state.ShippingInfo == nil {
			return ErrMissingStepData
		}
	case domain.StepPayment:
		if c.state.PaymentInfo == nil {
			return ErrMissingStepData
		}
	}
	c.state.CompletedSteps[step] = true
	return nil
}

// GoToNextStep 推进到固定顺序中的下一步。
// 当前步骤未完成时静默拒绝（no-op）；终态上调用同样是no-op，
// 调用方应从返回的状态判断是否真的推进了。
func (c *Checkout) GoToNextStep() domain.CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.CompletedSteps[c.state.CurrentStep] {
		return c.snapshotLocked()
	}
	next, ok := NextStep(c.state.CurrentStep)
	if !ok {
		return c.snapshotLocked()
	}
	c.state.CurrentStep = next
	return c.snapshotLocked()
}

// GoToStep 跳转到指定步骤：向后随意（回看编辑），向前受状态机门控。
// 非法跳转静默拒绝；重新进入已完成的步骤不会清除其完成标记。
func (c *Checkout) GoToStep(step domain.CheckoutStep) domain.CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if CanTransition(c.state.CurrentStep, StepSet(c.state.CompletedSteps), step) {
		c.state.CurrentStep = step
	}
	return c.snapshotLocked()
}

// SetShippingInfo 校验并保存收货信息。
// 校验失败返回字段级错误、步骤保持未完成，用户在本步骤内重试；
// 校验通过则保存数据并把shipping标记为完成。
func (c *Checkout) SetShippingInfo(info domain.ShippingInfo) []domain.FieldError {
	c.mu.Lock()
	defer c.mu.Unlock()

	if errs := c.check(info, domain.StepShipping); len(errs) > 0 {
		return errs
	}
	c.state.ShippingInfo = &info
	c.state.CompletedSteps[domain.StepShipping] = true
	return nil
}

// SetPaymentInfo 校验并保存支付信息，语义与SetShippingInfo一致
func (c *Checkout) SetPaymentInfo(info domain.PaymentInfo) []domain.FieldError {
	c.mu.Lock()
	defer c.mu.Unlock()

	if errs := c.check(info, domain.StepPayment); len(errs) > 0 {
		return errs
	}
	c.state.PaymentInfo = &info
	c.state.CompletedSteps[domain.StepPayment] = true
	return nil
}

// ApplyPromo 记录已解析的促销码及其折扣百分比
func (c *Checkout) ApplyPromo(code string, percent float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.promoCode = code
	c.promoPercent = percent
}

// check 运行结构体校验并把结果映射为字段级错误
func (c *Checkout) check(v any, step domain.CheckoutStep) []domain.FieldError {
	err := c.validate.Struct(v)
	if err == nil {
		if c.state.FieldErrors != nil {
			delete(c.state.FieldErrors, step)
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// 非校验错误（如传入非结构体）按内部错误对待
		c.logger.Error("step validation failed unexpectedly", zap.Error(err))
		return []domain.FieldError{{Field: "", Message: "validation unavailable"}}
	}

	out := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, domain.FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	if c.state.FieldErrors == nil {
		c.state.FieldErrors = make(map[domain.CheckoutStep][]domain.FieldError)
	}
	c.state.FieldErrors[step] = out
	return out
}

// fieldMessage 将校验标签转成面向用户的提示
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "credit_card":
		return "must be a valid card number"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "too short or too small (min " + fe.Param() + ")"
	case "max":
		return "too long or too large (max " + fe.Param() + ")"
	default:
		return "invalid value"
	}
}

// summaryLocked 从当前购物车状态推导订单摘要，调用方持锁
func (c *Checkout) summaryLocked() domain.OrderSummary {
	cart := c.cart.Snapshot()

	summary := domain.OrderSummary{
		Subtotal:  cart.TotalAmount,
		ItemCount: cart.TotalItems,
		PromoCode: c.promoCode,
	}

	if c.state.ShippingInfo != nil {
		if m, ok := shippingMethods[c.state.ShippingInfo.Method]; ok {
			summary.ShippingCost = m.cost
			summary.ShippingLabel = m.label
			if c.state.ShippingInfo.Method == "standard" && cart.TotalAmount >= freeShippingThreshold {
				summary.ShippingCost = 0
			}
		}
	}
	if c.promoPercent > 0 {
		summary.Discount = summary.Subtotal * c.promoPercent / 100
	}
	summary.Total = summary.Subtotal + summary.ShippingCost - summary.Discount
	return summary
}

// ReadyToPlace 判断是否所有前置步骤都已完成、可以提交订单。
// 到达终态confirmation要求cart/shipping/payment全部完成且校验通过。
func (c *Checkout) ReadyToPlace() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, step := range domain.CheckoutSteps[:len(domain.CheckoutSteps)-1] {
		if !c.state.CompletedSteps[step] {
			return ErrStepIncomplete
		}
	}
	return nil
}

// Manager 管理所有活跃的结账尝试，按购物车键索引。
// CheckoutState是瞬态聚合：从不写入持久化存储。
type Manager struct {
	mu       sync.Mutex
	active   map[string]*Checkout
	validate *validator.Validate
	logger   *zap.Logger
}

// NewManager 创建结账管理器
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		active:   make(map[string]*Checkout),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Begin 为购物车键开启一次结账。
// 空购物车不能进入结账；同一键上已有进行中的结账时返回现有实例。
func (m *Manager) Begin(key string, cart CartReader) (*Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.active[key]; ok {
		return existing, nil
	}
	if cart.Snapshot().TotalItems == 0 {
		return nil, ErrEmptyCart
	}
	c := newCheckout(cart, m.validate, m.logger)
	m.active[key] = c
	return c, nil
}

// Get 返回键对应的进行中结账
func (m *Manager) Get(key string) (*Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.active[key]
	if !ok {
		return nil, ErrNoCheckout
	}
	return c, nil
}

// Discard 丢弃结账尝试（下单成功或用户显式退出时调用）
func (m *Manager) Discard(key string) {
	m.mu.Lock()
	delete(m.active, key)
	m.mu.Unlock()
}
