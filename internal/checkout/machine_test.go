package checkout

import (
	"testing"

	"github.com/marcdejesus/graph-market/internal/domain"
)

func TestCanTransition(t *testing.T) {
	none := StepSet{}
	cartDone := StepSet{domain.StepCart: true}
	throughPayment := StepSet{
		domain.StepCart:     true,
		domain.StepShipping: true,
		domain.StepPayment:  true,
	}

	tests := []struct {
		name      string
		current   domain.CheckoutStep
		completed StepSet
		target    domain.CheckoutStep
		want      bool
	}{
		{name: "stay on current step", current: domain.StepCart, completed: none, target: domain.StepCart, want: true},
		{name: "forward blocked until step complete", current: domain.StepCart, completed: none, target: domain.StepShipping, want: false},
		{name: "forward one past completed prefix", current: domain.StepCart, completed: cartDone, target: domain.StepShipping, want: true},
		{name: "skipping an incomplete step refused", current: domain.StepCart, completed: cartDone, target: domain.StepPayment, want: false},
		{name: "skip to terminal refused", current: domain.StepCart, completed: cartDone, target: domain.StepConfirmation, want: false},
		{name: "backward always allowed", current: domain.StepPayment, completed: cartDone, target: domain.StepCart, want: true},
		{name: "confirmation reachable when all prior complete", current: domain.StepPayment, completed: throughPayment, target: domain.StepConfirmation, want: true},
		{name: "unknown target refused", current: domain.StepCart, completed: throughPayment, target: domain.CheckoutStep("bogus"), want: false},
		{name: "unknown current refused", current: domain.CheckoutStep("bogus"), completed: throughPayment, target: domain.StepCart, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanTransition(tt.current, tt.completed, tt.target)
			if got != tt.want {
				t.Fatalf("CanTransition(%s, %v, %s) = %v, want %v",
					tt.current, tt.completed, tt.target, got, tt.want)
			}
		})
	}
}

func TestNextStep(t *testing.T) {
	tests := []struct {
		current domain.CheckoutStep
		want    domain.CheckoutStep
		ok      bool
	}{
		{current: domain.StepCart, want: domain.StepShipping, ok: true},
		{current: domain.StepShipping, want: domain.StepPayment, ok: true},
		{current: domain.StepPayment, want: domain.StepConfirmation, ok: true},
		{current: domain.StepConfirmation, ok: false}, // terminal, no outgoing transition
		{current: domain.CheckoutStep("bogus"), ok: false},
	}

	for _, tt := range tests {
		got, ok := NextStep(tt.current)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Fatalf("NextStep(%s) = %s, %v; want %s, %v", tt.current, got, ok, tt.want, tt.ok)
		}
	}
}
