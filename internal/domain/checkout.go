// Package domain 结账流程的领域模型。
package domain

// CheckoutStep 表示结账流程中的一个阶段
type CheckoutStep string

const (
	StepCart         CheckoutStep = "cart"
	StepShipping     CheckoutStep = "shipping"
	StepPayment      CheckoutStep = "payment"
	StepConfirmation CheckoutStep = "confirmation"
)

// CheckoutSteps 是结账阶段的固定顺序，流程线性、不可跳步
var CheckoutSteps = []CheckoutStep{StepCart, StepShipping, StepPayment, StepConfirmation}

// StepIndex 返回阶段在固定顺序中的下标，未知阶段返回 -1
func StepIndex(step CheckoutStep) int {
	for i, s := range CheckoutSteps {
		if s == step {
			return i
		}
	}
	return -1
}

// ShippingInfo 收货信息，标记完成前必须通过校验
type ShippingInfo struct {
	FirstName  string `json:"firstName" validate:"required,max=64"`
	LastName   string `json:"lastName" validate:"required,max=64"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"omitempty,min=7,max=20"`
	Address    string `json:"address" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"omitempty,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,iso3166_1_alpha2"`
	Method     string `json:"method" validate:"required,oneof=standard express overnight"`
}

// PaymentInfo 支付信息。
// 仅承载结账表单所需的数据形状，不做真实的支付处理。
type PaymentInfo struct {
	CardholderName string `json:"cardholderName" validate:"required,max=128"`
	CardNumber     string `json:"cardNumber" validate:"required,credit_card"`
	ExpiryMonth    int    `json:"expiryMonth" validate:"required,min=1,max=12"`
	ExpiryYear     int    `json:"expiryYear" validate:"required,min=2024,max=2099"`
	CVV            string `json:"cvv" validate:"required,len=3|len=4"`
	BillingZip     string `json:"billingZip" validate:"omitempty,max=20"`
}

// OrderSummary 订单摘要，由购物车状态和结账选项推导
type OrderSummary struct {
	Subtotal      float64 `json:"subtotal"`
	ShippingCost  float64 `json:"shippingCost"`
	Discount      float64 `json:"discount"`
	Total         float64 `json:"total"`
	PromoCode     string  `json:"promoCode,omitempty"`
	ItemCount     int     `json:"itemCount"`
	ShippingLabel string  `json:"shippingLabel,omitempty"`
}

// CheckoutState 表示一次进行中的结账尝试。
// 仅存在于内存中，下单成功或显式退出后即被丢弃，不跨进程持久化。
type CheckoutState struct {
	CurrentStep    CheckoutStep                  `json:"currentStep"`
	CompletedSteps map[CheckoutStep]bool         `json:"completedSteps"`
	ShippingInfo   *ShippingInfo                 `json:"shippingInfo,omitempty"`
	PaymentInfo    *PaymentInfo                  `json:"paymentInfo,omitempty"`
	OrderSummary   *OrderSummary                 `json:"orderSummary,omitempty"`
	FieldErrors    map[CheckoutStep][]FieldError `json:"fieldErrors,omitempty"`
}

// FieldError 表示某个阶段内单个字段的校验错误，
// 错误只阻塞当前阶段的完成，可在阶段内重试修正。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
