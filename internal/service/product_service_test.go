package service

import (
	"errors"
	"testing"

	"github.com/marcdejesus/graph-market/internal/domain"
	"github.com/marcdejesus/graph-market/internal/repo"
)

func TestBrowse(t *testing.T) {
	svc := NewProductService(repo.NewProductRepository())

	f := domain.NewFilterState()
	f.Category = []string{"tops"}
	s := domain.DefaultSort()

	resp, err := svc.Browse(f, s)
	if err != nil {
		t.Fatalf("Browse() error = %v", err)
	}
	if resp.Total == 0 {
		t.Fatal("Browse() returned no products for category tops")
	}
	for _, p := range resp.Products {
		if p.Category != "tops" {
			t.Errorf("Browse() returned product %s with category %q", p.ID, p.Category)
		}
	}
	if resp.Query != "category=tops" {
		t.Errorf("Browse() query = %q, want %q", resp.Query, "category=tops")
	}
}

func TestGetProduct(t *testing.T) {
	svc := NewProductService(repo.NewProductRepository())

	p, err := svc.GetProduct("prod-001")
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}
	if p.Name == "" {
		t.Error("GetProduct() returned product without name")
	}

	if _, err := svc.GetProduct("prod-999"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("GetProduct(unknown) error = %v, want ErrProductNotFound", err)
	}
}

func TestResolveCartItem(t *testing.T) {
	svc := NewProductService(repo.NewProductRepository())

	tests := []struct {
		name      string
		productID string
		variant   domain.Variant
		wantErr   error
	}{
		{"valid variant", "prod-001", domain.Variant{Size: "M", Color: "black"}, nil},
		{"size only", "prod-001", domain.Variant{Size: "L"}, nil},
		{"unknown product", "prod-999", domain.Variant{}, ErrProductNotFound},
		{"size not offered", "prod-001", domain.Variant{Size: "XXL"}, ErrVariantNotOffered},
		{"color not offered", "prod-001", domain.Variant{Color: "neon"}, ErrVariantNotOffered},
		{"out of stock", "prod-006", domain.Variant{Size: "ONE"}, ErrOutOfStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := svc.ResolveCartItem(tt.productID, tt.variant)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ResolveCartItem() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if item.ProductID != tt.productID {
				t.Errorf("item.ProductID = %q, want %q", item.ProductID, tt.productID)
			}
			if item.MaxQuantity <= 0 {
				t.Errorf("item.MaxQuantity = %d, want > 0", item.MaxQuantity)
			}
		})
	}
}

func TestResolveCartItemUsesSalePrice(t *testing.T) {
	svc := NewProductService(repo.NewProductRepository())

	// prod-003 is on sale at 64 instead of 96
	item, err := svc.ResolveCartItem("prod-003", domain.Variant{Size: "S", Color: "sage"})
	if err != nil {
		t.Fatalf("ResolveCartItem() error = %v", err)
	}
	if item.Price != 64 {
		t.Errorf("item.Price = %v, want sale price 64", item.Price)
	}
}
