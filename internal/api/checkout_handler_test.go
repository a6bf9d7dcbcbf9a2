package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/marcdejesus/graph-market/internal/cart"
	"github.com/marcdejesus/graph-market/internal/checkout"
	"github.com/marcdejesus/graph-market/internal/domain"
	"github.com/marcdejesus/graph-market/internal/repo"
	"github.com/marcdejesus/graph-market/internal/resp"
	"github.com/marcdejesus/graph-market/internal/service"
	"github.com/marcdejesus/graph-market/internal/store"
)

// checkoutStack 结账处理器及其真实依赖
type checkoutStack struct {
	handler  *CheckoutHandler
	registry *cart.Registry
	orders   service.OrderService
}

func newCheckoutTestStack(t *testing.T) *checkoutStack {
	t.Helper()
	logger := zap.NewNop()
	registry := cart.NewRegistry(store.NewMemoryStore(), logger)
	orders := service.NewOrderService(repo.NewOrderRepository(), logger)
	manager := checkout.NewManager(logger)
	return &checkoutStack{
		handler:  NewCheckoutHandler(manager, registry, orders, logger),
		registry: registry,
		orders:   orders,
	}
}

// seedCart 向会话购物车放入一件商品
func (s *checkoutStack) seedCart(t *testing.T, sessionID string) {
	t.Helper()
	products := service.NewProductService(repo.NewProductRepository())
	item, err := products.ResolveCartItem("prod-002", domain.Variant{Size: "M", Color: "indigo"})
	if err != nil {
		t.Fatalf("resolve cart item: %v", err)
	}
	s.registry.Session(context.Background(), "session:"+sessionID).AddItem(context.Background(), item, 1)
}

func validShipping() domain.ShippingInfo {
	return domain.ShippingInfo{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Address:    "1 Analytical Way",
		City:       "London",
		PostalCode: "EC1A 1BB",
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

func decodeCheckoutState(t *testing.T, body resp.Body) domain.CheckoutState {
	t.Helper()
	data, _ := json.Marshal(body.Data)
	var state domain.CheckoutState
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("decode checkout state: %v", err)
	}
	return state
}

func TestCheckoutHandler_BeginRequiresNonEmptyCart(t *testing.T) {
	s := newCheckoutTestStack(t)

	w := doCart(t, s.handler.Begin, http.MethodPost, "/api/v1/checkout", "empty-sess", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400; body: %s", w.Code, w.Body.String())
	}
}

func TestCheckoutHandler_FullFlow(t *testing.T) {
	s := newCheckoutTestStack(t)
	const sess = "flow-sess"
	s.seedCart(t, sess)

	// 开启结账，起始步骤为cart
	w := doCart(t, s.handler.Begin, http.MethodPost, "/api/v1/checkout", sess, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("begin status = %d; body: %s", w.Code, w.Body.String())
	}
	state := decodeCheckoutState(t, decodeBody(t, w))
	if state.CurrentStep != domain.StepCart {
		t.Fatalf("CurrentStep = %q, want cart", state.CurrentStep)
	}

	// cart步骤完成前不能推进
	w = doCart(t, s.handler.NextStep, http.MethodPost, "/api/v1/checkout/next", sess, nil)
	state = decodeCheckoutState(t, decodeBody(t, w))
	if state.CurrentStep != domain.StepCart {
		t.Fatalf("advanced past incomplete cart step, at %q", state.CurrentStep)
	}

	// 完成cart并推进到shipping
	w = doCart(t, s.handler.CompleteStep, http.MethodPost, "/api/v1/checkout/steps/complete", sess, stepRequest{Step: "cart"})
	if w.Code != http.StatusOK {
		t.Fatalf("complete cart status = %d; body: %s", w.Code, w.Body.String())
	}
	w = doCart(t, s.handler.NextStep, http.MethodPost, "/api/v1/checkout/next", sess, nil)
	state = decodeCheckoutState(t, decodeBody(t, w))
	if state.CurrentStep != domain.StepShipping {
		t.Fatalf("CurrentStep = %q, want shipping", state.CurrentStep)
	}

	// 无效的收货信息返回422和字段级错误
	bad := validShipping()
	bad.Email = "not-an-email"
	w = doCart(t, s.handler.SetShipping, http.MethodPut, "/api/v1/checkout/shipping", sess, bad)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad shipping status = %d, want 422; body: %s", w.Code, w.Body.String())
	}

	// 有效的收货信息把shipping标记为完成
	w = doCart(t, s.handler.SetShipping, http.MethodPut, "/api/v1/checkout/shipping", sess, validShipping())
	if w.Code != http.StatusOK {
		t.Fatalf("shipping status = %d; body: %s", w.Code, w.Body.String())
	}
	state = decodeCheckoutState(t, decodeBody(t, w))
	if !state.CompletedSteps[domain.StepShipping] {
		t.Fatal("shipping step not marked complete")
	}

	// 支付信息
	w = doCart(t, s.handler.NextStep, http.MethodPost, "/api/v1/checkout/next", sess, nil)
	if st := decodeCheckoutState(t, decodeBody(t, w)); st.CurrentStep != domain.StepPayment {
		t.Fatalf("CurrentStep = %q, want payment", st.CurrentStep)
	}
	w = doCart(t, s.handler.SetPayment, http.MethodPut, "/api/v1/checkout/payment", sess, validPayment())
	if w.Code != http.StatusOK {
		t.Fatalf("payment status = %d; body: %s", w.Code, w.Body.String())
	}

	// 下单：成功后购物车被清空、结账被丢弃
	w = doCart(t, s.handler.PlaceOrder, http.MethodPost, "/api/v1/checkout/place", sess, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("place order status = %d; body: %s", w.Code, w.Body.String())
	}

	snap := s.registry.Session(context.Background(), "session:"+sess).Snapshot()
	if snap.TotalItems != 0 {
		t.Errorf("cart TotalItems after order = %d, want 0", snap.TotalItems)
	}
	w = doCart(t, s.handler.GetState, http.MethodGet, "/api/v1/checkout", sess, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("checkout state after order status = %d, want 404", w.Code)
	}

	orders, err := s.orders.ListOrders("session:" + sess)
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("len(orders) = %d, want 1", len(orders))
	}
	if orders[0].Status != domain.OrderStatusPending {
		t.Errorf("order status = %q, want pending", orders[0].Status)
	}
}

func TestCheckoutHandler_PlaceOrderRequiresAllSteps(t *testing.T) {
	s := newCheckoutTestStack(t)
	const sess = "incomplete-sess"
	s.seedCart(t, sess)

	doCart(t, s.handler.Begin, http.MethodPost, "/api/v1/checkout", sess, nil)
	doCart(t, s.handler.CompleteStep, http.MethodPost, "/api/v1/checkout/steps/complete", sess, stepRequest{Step: "cart"})

	w := doCart(t, s.handler.PlaceOrder, http.MethodPost, "/api/v1/checkout/place", sess, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("place order status = %d, want 400; body: %s", w.Code, w.Body.String())
	}
}

func TestCheckoutHandler_ApplyPromo(t *testing.T) {
	s := newCheckoutTestStack(t)
	const sess = "promo-sess"
	s.seedCart(t, sess)

	doCart(t, s.handler.Begin, http.MethodPost, "/api/v1/checkout", sess, nil)

	w := doCart(t, s.handler.ApplyPromo, http.MethodPost, "/api/v1/checkout/promo", sess, promoRequest{Code: "save10"})
	if w.Code != http.StatusOK {
		t.Fatalf("apply promo status = %d; body: %s", w.Code, w.Body.String())
	}
	state := decodeCheckoutState(t, decodeBody(t, w))
	if state.OrderSummary == nil {
		t.Fatal("OrderSummary is nil")
	}
	wantDiscount := state.OrderSummary.Subtotal * 0.10
	if state.OrderSummary.Discount != wantDiscount {
		t.Errorf("Discount = %v, want %v", state.OrderSummary.Discount, wantDiscount)
	}

	w = doCart(t, s.handler.ApplyPromo, http.MethodPost, "/api/v1/checkout/promo", sess, promoRequest{Code: "BOGUS"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bogus promo status = %d, want 400", w.Code)
	}
}

func TestCheckoutHandler_Discard(t *testing.T) {
	s := newCheckoutTestStack(t)
	const sess = "discard-sess"
	s.seedCart(t, sess)

	doCart(t, s.handler.Begin, http.MethodPost, "/api/v1/checkout", sess, nil)
	w := doCart(t, s.handler.Discard, http.MethodDelete, "/api/v1/checkout", sess, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("discard status = %d", w.Code)
	}

	// 结账被丢弃，购物车不受影响
	w = doCart(t, s.handler.GetState, http.MethodGet, "/api/v1/checkout", sess, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("state after discard status = %d, want 404", w.Code)
	}
	snap := s.registry.Session(context.Background(), "session:"+sess).Snapshot()
	if snap.TotalItems != 1 {
		t.Errorf("cart TotalItems after discard = %d, want 1", snap.TotalItems)
	}
}
