package checkout

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/marcdejesus/graph-market/internal/domain"
)

// fakeCart is a minimal CartReader backed by a fixed state.
type fakeCart struct {
	state domain.CartState
}

func (f *fakeCart) Snapshot() domain.CartState { return f.state.Clone() }

func filledCart() *fakeCart {
	return &fakeCart{state: domain.CartState{
		Items: []domain.CartItem{{
			ProductID: "P1", Name: "Basic Tee", Price: 20, Quantity: 2, MaxQuantity: 5,
		}},
		TotalItems:  2,
		TotalAmount: 40,
	}}
}

func validShipping() domain.ShippingInfo {
	return domain.ShippingInfo{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Address:    "1 Analytical Way",
		City:       "London",
		PostalCode: "E1 6AN",
		Country:    "GB",
		Method:     "standard",
	}
}

func validPayment() domain.PaymentInfo {
	return domain.PaymentInfo{
		CardholderName: "Ada Lovelace",
		CardNumber:     "4242424242424242",
		ExpiryMonth:    12,
		ExpiryYear:     2030,
		CVV:            "123",
	}
}

func begin(t *testing.T) (*Manager, *Checkout) {
	t.Helper()
	m := NewManager(zap.NewNop())
	c, err := m.Begin("user:1", filledCart())
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	return m, c
}

func TestBegin_EmptyCartRefused(t *testing.T) {
	m := NewManager(zap.NewNop())
	empty := &fakeCart{state: domain.EmptyCart()}
	if _, err := m.Begin("user:1", empty); err != ErrEmptyCart {
		t.Fatalf("Begin(empty) error = %v, want ErrEmptyCart", err)
	}
}

func TestBegin_ReturnsExistingAttempt(t *testing.T) {
	m, c := begin(t)
	again, err := m.Begin("user:1", filledCart())
	if err != nil || again != c {
		t.Fatalf("second Begin() = %v, %v; want the existing checkout", again, err)
	}
}

func TestGoToNextStep_RefusedUntilComplete(t *testing.T) {
	_, c := begin(t)

	// current step not completed: silent no-op
	state := c.GoToNextStep()
	if state.CurrentStep != domain.StepCart {
		t.Fatalf("advanced past incomplete step to %s", state.CurrentStep)
	}

	if err := c.CompleteStep(domain.StepCart); err != nil {
		t.Fatalf("CompleteStep(cart) error: %v", err)
	}
	// completeStep does not advance by itself
	if got := c.State().CurrentStep; got != domain.StepCart {
		t.Fatalf("CompleteStep advanced to %s", got)
	}

	state = c.GoToNextStep()
	if state.CurrentStep != domain.StepShipping {
		t.Fatalf("CurrentStep = %s, want shipping", state.CurrentStep)
	}
}

func TestGoToNextStep_IdempotentAtTerminal(t *testing.T) {
	_, c := begin(t)
	driveToConfirmation(t, c)

	for i := 0; i < 3; i++ {
		state := c.GoToNextStep()
		if state.CurrentStep != domain.StepConfirmation {
			t.Fatalf("terminal state changed to %s", state.CurrentStep)
		}
	}
}

// driveToConfirmation walks a checkout through every step with valid data.
func driveToConfirmation(t *testing.T, c *Checkout) {
	t.Helper()
	if err := c.CompleteStep(domain.StepCart); err != nil {
		t.Fatalf("complete cart: %v", err)
	}
	c.GoToNextStep()
	if errs := c.SetShippingInfo(validShipping()); len(errs) > 0 {
		t.Fatalf("shipping rejected: %v", errs)
	}
	c.GoToNextStep()
	if errs := c.SetPaymentInfo(validPayment()); len(errs) > 0 {
		t.Fatalf("payment rejected: %v", errs)
	}
	state := c.GoToNextStep()
	if state.CurrentStep != domain.StepConfirmation {
		t.Fatalf("did not reach confirmation: %s", state.CurrentStep)
	}
}

func TestGoToStep_BackwardKeepsCompletion(t *testing.T) {
	_, c := begin(t)
	driveToConfirmation(t, c)

	// revisit shipping for edits
	state := c.GoToStep(domain.StepShipping)
	if state.CurrentStep != domain.StepShipping {
		t.Fatalf("backward navigation refused: %s", state.CurrentStep)
	}
	// later completed steps keep their status
	if !state.CompletedSteps[domain.StepPayment] {
		t.Fatalf("payment completion lost on backward navigation")
	}
	// and forward is allowed again since everything is still complete
	state = c.GoToStep(domain.StepPayment)
	if state.CurrentStep != domain.StepPayment {
		t.Fatalf("forward to completed step refused: %s", state.CurrentStep)
	}
}

func TestGoToStep_ForwardSkipRefused(t *testing.T) {
	_, c := begin(t)
	if err := c.CompleteStep(domain.StepCart); err != nil {
		t.Fatalf("complete cart: %v", err)
	}

	state := c.GoToStep(domain.StepPayment)
	if state.CurrentStep != domain.StepCart {
		t.Fatalf("skip to payment allowed: %s", state.CurrentStep)
	}
}

func TestSetShippingInfo_FieldErrors(t *testing.T) {
	_, c := begin(t)

	bad := validShipping()
	bad.Email = "not-an-email"
	bad.Country = "United Kingdom" // must be alpha-2

	errs := c.SetShippingInfo(bad)
	if len(errs) != 2 {
		t.Fatalf("field errors = %v, want 2 entries", errs)
	}

	state := c.State()
	if state.CompletedSteps[domain.StepShipping] {
		t.Fatalf("invalid shipping marked complete")
	}
	if len(state.FieldErrors[domain.StepShipping]) == 0 {
		t.Fatalf("field errors not recorded on the step")
	}

	// retry within the same step succeeds and clears the errors
	if errs := c.SetShippingInfo(validShipping()); len(errs) > 0 {
		t.Fatalf("valid retry rejected: %v", errs)
	}
	state = c.State()
	if !state.CompletedSteps[domain.StepShipping] {
		t.Fatalf("valid shipping not marked complete")
	}
	if len(state.FieldErrors[domain.StepShipping]) != 0 {
		t.Fatalf("stale field errors: %v", state.FieldErrors)
	}
}

func TestSetPaymentInfo_InvalidCard(t *testing.T) {
	_, c := begin(t)

	bad := validPayment()
	bad.CardNumber = "1234567890123456"
	if errs := c.SetPaymentInfo(bad); len(errs) == 0 {
		t.Fatalf("luhn-invalid card accepted")
	}
	if c.State().CompletedSteps[domain.StepPayment] {
		t.Fatalf("invalid payment marked complete")
	}
}

func TestCompleteStep_RequiresStepData(t *testing.T) {
	_, c := begin(t)

	if err := c.CompleteStep(domain.StepShipping); err != ErrMissingStepData {
		t.Fatalf("CompleteStep(shipping) = %v, want ErrMissingStepData", err)
	}
	if err := c.CompleteStep(domain.CheckoutStep("bogus")); err != ErrUnknownStep {
		t.Fatalf("CompleteStep(bogus) = %v, want ErrUnknownStep", err)
	}
}

func TestOrderSummary(t *testing.T) {
	_, c := begin(t) // subtotal 40, 2 items

	ship := validShipping()
	ship.Method = "express"
	if errs := c.SetShippingInfo(ship); len(errs) > 0 {
		t.Fatalf("shipping rejected: %v", errs)
	}
	c.ApplyPromo("SAVE10", 10)

	summary := c.State().OrderSummary
	if summary.Subtotal != 40 || summary.ItemCount != 2 {
		t.Fatalf("summary base: %+v", summary)
	}
	if summary.ShippingCost != 14.99 {
		t.Fatalf("shippingCost = %v", summary.ShippingCost)
	}
	if summary.Discount != 4 {
		t.Fatalf("discount = %v", summary.Discount)
	}
	if want := 50.99; math.Abs(summary.Total-want) > 1e-9 {
		t.Fatalf("total = %v, want %v", summary.Total, want)
	}
}

func TestOrderSummary_FreeStandardShipping(t *testing.T) {
	m := NewManager(zap.NewNop())
	cart := &fakeCart{state: domain.CartState{
		Items: []domain.CartItem{{
			ProductID: "P1", Price: 60, Quantity: 2, MaxQuantity: 5,
		}},
		TotalItems:  2,
		TotalAmount: 120,
	}}
	c, err := m.Begin("user:2", cart)
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}

	if errs := c.SetShippingInfo(validShipping()); len(errs) > 0 {
		t.Fatalf("shipping rejected: %v", errs)
	}
	if got := c.State().OrderSummary.ShippingCost; got != 0 {
		t.Fatalf("shippingCost = %v, want free over threshold", got)
	}
}

func TestReadyToPlace(t *testing.T) {
	_, c := begin(t)
	if err := c.ReadyToPlace(); err != ErrStepIncomplete {
		t.Fatalf("ReadyToPlace() = %v, want ErrStepIncomplete", err)
	}

	driveToConfirmation(t, c)
	if err := c.ReadyToPlace(); err != nil {
		t.Fatalf("ReadyToPlace() after full flow = %v", err)
	}
}

func TestManager_Discard(t *testing.T) {
	m, _ := begin(t)
	m.Discard("user:1")
	if _, err := m.Get("user:1"); err != ErrNoCheckout {
		t.Fatalf("Get() after Discard = %v, want ErrNoCheckout", err)
	}
}
