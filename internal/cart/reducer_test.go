package cart

import (
	"math"
	"testing"

	"github.com/marcdejesus/graph-market/internal/domain"
)

func itemP1(size string) domain.CartItem {
	return domain.CartItem{
		ProductID:   "P1",
		Variant:     domain.Variant{Size: size},
		Name:        "Basic Tee",
		Price:       20,
		Quantity:    1,
		MaxQuantity: 3,
	}
}

// checkTotals verifies the aggregate invariants after every mutation.
func checkTotals(t *testing.T, state domain.CartState) {
	t.Helper()
	items, amount := 0, 0.0
	for _, it := range state.Items {
		if it.Quantity < 1 || it.Quantity > it.MaxQuantity {
			t.Fatalf("quantity %d out of [1,%d] for %s", it.Quantity, it.MaxQuantity, it.ProductID)
		}
		items += it.Quantity
		amount += it.Price * float64(it.Quantity)
	}
	if state.TotalItems != items {
		t.Fatalf("totalItems = %d, want %d", state.TotalItems, items)
	}
	if math.Abs(state.TotalAmount-amount) > 1e-9 {
		t.Fatalf("totalAmount = %v, want %v", state.TotalAmount, amount)
	}
}

func TestAddItem_MergeAndClamp(t *testing.T) {
	state := domain.EmptyCart()

	// first add: one line, quantity 1, totalAmount 20.00
	state = AddItem(state, itemP1("M"), 1)
	checkTotals(t, state)
	if len(state.Items) != 1 || state.Items[0].Quantity != 1 || state.TotalAmount != 20 {
		t.Fatalf("after first add: %+v", state)
	}

	// same productId+size merges into the existing line
	state = AddItem(state, itemP1("M"), 1)
	checkTotals(t, state)
	if len(state.Items) != 1 || state.Items[0].Quantity != 2 || state.TotalAmount != 40 {
		t.Fatalf("after second add: %+v", state)
	}

	// two more adds clamp at maxQuantity 3, not 4
	state = AddItem(state, itemP1("M"), 1)
	state = AddItem(state, itemP1("M"), 1)
	checkTotals(t, state)
	if state.Items[0].Quantity != 3 || state.TotalAmount != 60 {
		t.Fatalf("after clamping adds: %+v", state)
	}

	// a different size is a separate line
	state = AddItem(state, itemP1("L"), 1)
	checkTotals(t, state)
	if len(state.Items) != 2 || state.TotalItems != 4 {
		t.Fatalf("after adding second variant: %+v", state)
	}
}

func TestAddItem_DefaultQuantityAndBulkClamp(t *testing.T) {
	state := domain.EmptyCart()

	// quantityToAdd below 1 falls back to 1
	state = AddItem(state, itemP1("M"), 0)
	checkTotals(t, state)
	if state.Items[0].Quantity != 1 {
		t.Fatalf("quantity = %d, want 1", state.Items[0].Quantity)
	}

	// bulk add on a fresh line clamps to maxQuantity
	state = AddItem(state, itemP1("S"), 10)
	checkTotals(t, state)
	if got, _ := FindItem(state, "P1", domain.Variant{Size: "S"}); got.Quantity != 3 {
		t.Fatalf("bulk add quantity = %d, want 3", got.Quantity)
	}
}

func TestAddItem_DoesNotMutateInput(t *testing.T) {
	orig := AddItem(domain.EmptyCart(), itemP1("M"), 2)
	origQty := orig.Items[0].Quantity

	_ = AddItem(orig, itemP1("M"), 1)
	_ = SetQuantity(orig, "P1", domain.Variant{Size: "M"}, 1)
	_ = RemoveItem(orig, "P1", domain.Variant{Size: "M"})

	if orig.Items[0].Quantity != origQty || len(orig.Items) != 1 {
		t.Fatalf("input state mutated: %+v", orig)
	}
}

func TestRemoveItem(t *testing.T) {
	state := AddItem(domain.EmptyCart(), itemP1("M"), 2)

	// removing an absent line is a no-op, not an error
	unchanged := RemoveItem(state, "P2", domain.Variant{})
	if len(unchanged.Items) != 1 {
		t.Fatalf("no-op remove changed state: %+v", unchanged)
	}

	state = RemoveItem(state, "P1", domain.Variant{Size: "M"})
	checkTotals(t, state)
	if len(state.Items) != 0 || state.TotalItems != 0 || state.TotalAmount != 0 {
		t.Fatalf("after remove: %+v", state)
	}
}

func TestSetQuantity(t *testing.T) {
	variant := domain.Variant{Size: "M"}

	tests := []struct {
		name      string
		quantity  int
		wantQty   int
		wantGone  bool
		wantTotal float64
	}{
		{name: "set within bounds", quantity: 2, wantQty: 2, wantTotal: 40},
		{name: "clamp above max", quantity: 99, wantQty: 3, wantTotal: 60},
		{name: "zero removes the line", quantity: 0, wantGone: true, wantTotal: 0},
		{name: "negative removes the line", quantity: -5, wantGone: true, wantTotal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := AddItem(domain.EmptyCart(), itemP1("M"), 1)
			state = SetQuantity(state, "P1", variant, tt.quantity)
			checkTotals(t, state)

			got, found := FindItem(state, "P1", variant)
			if tt.wantGone {
				if found {
					t.Fatalf("line still present: %+v", got)
				}
				if state.TotalItems != 0 {
					t.Fatalf("totalItems = %d, want 0", state.TotalItems)
				}
			} else {
				if !found || got.Quantity != tt.wantQty {
					t.Fatalf("quantity = %d (found=%v), want %d", got.Quantity, found, tt.wantQty)
				}
			}
			if state.TotalAmount != tt.wantTotal {
				t.Fatalf("totalAmount = %v, want %v", state.TotalAmount, tt.wantTotal)
			}
		})
	}
}

func TestSetQuantity_AbsentLineIsNoop(t *testing.T) {
	state := AddItem(domain.EmptyCart(), itemP1("M"), 1)
	next := SetQuantity(state, "P9", domain.Variant{}, 5)
	if len(next.Items) != 1 || next.TotalItems != 1 {
		t.Fatalf("no-op setQuantity changed state: %+v", next)
	}
}

func TestClear(t *testing.T) {
	state := AddItem(domain.EmptyCart(), itemP1("M"), 2)
	state = AddItem(state, itemP1("L"), 1)

	state = Clear(state)
	checkTotals(t, state)
	if len(state.Items) != 0 || state.TotalItems != 0 || state.TotalAmount != 0 {
		t.Fatalf("after clear: %+v", state)
	}
	if state.LastUpdated.IsZero() {
		t.Fatalf("clear did not stamp lastUpdated")
	}
}

func TestFindItem_DoesNotMutate(t *testing.T) {
	state := AddItem(domain.EmptyCart(), itemP1("M"), 2)

	got, found := FindItem(state, "P1", domain.Variant{Size: "M"})
	if !found || got.Quantity != 2 {
		t.Fatalf("FindItem() = %+v, %v", got, found)
	}

	// mutating the returned copy must not affect cart state
	got.Quantity = 99
	if state.Items[0].Quantity != 2 {
		t.Fatalf("FindItem leaked a reference into state")
	}

	if _, found := FindItem(state, "P1", domain.Variant{Size: "XL"}); found {
		t.Fatalf("FindItem() found a non-existent variant")
	}
}

// TestTotalsInvariantUnderMixedSequence drives a longer mutation sequence and
// verifies the totals invariant after every single step.
func TestTotalsInvariantUnderMixedSequence(t *testing.T) {
	other := domain.CartItem{
		ProductID: "P2", Name: "Socks", Price: 5.5, Quantity: 1, MaxQuantity: 10,
	}

	state := domain.EmptyCart()
	steps := []func(domain.CartState) domain.CartState{
		func(s domain.CartState) domain.CartState { return AddItem(s, itemP1("M"), 2) },
		func(s domain.CartState) domain.CartState { return AddItem(s, other, 4) },
		func(s domain.CartState) domain.CartState {
			return SetQuantity(s, "P2", domain.Variant{}, 7)
		},
		func(s domain.CartState) domain.CartState { return AddItem(s, itemP1("M"), 5) },
		func(s domain.CartState) domain.CartState {
			return RemoveItem(s, "P1", domain.Variant{Size: "M"})
		},
		func(s domain.CartState) domain.CartState {
			return SetQuantity(s, "P2", domain.Variant{}, 0)
		},
		func(s domain.CartState) domain.CartState { return AddItem(s, other, 1) },
		func(s domain.CartState) domain.CartState { return Clear(s) },
	}

	for i, step := range steps {
		state = step(state)
		checkTotals(t, state)
		if err := state.Validate(); err != nil && len(state.Items) > 0 {
			t.Fatalf("step %d broke invariants: %v", i, err)
		}
	}
}
