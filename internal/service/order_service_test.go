package service

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/storefront/internal/models"
	"github.com/Lixing-Zhang/storefront/internal/repository"
)

func testProducts() *repository.InMemoryProductRepository {
	return repository.NewInMemoryProductRepositoryFrom([]models.Product{
		{ID: "p1", Title: "+1 час в сутках", Price: models.Price(750), Category: "софт-скил"},
		{ID: "p2", Title: "HEX-леденец", Price: models.Price(1450), Category: "другое"},
		{ID: "p3", Title: "Мамка-таймер", Category: "софт-скил"},
	})
}

func validRequest(items ...string) models.OrderRequest {
	return models.OrderRequest{
		Payment: models.PaymentOnline,
		Email:   "user@example.com",
		Phone:   "+71234567890",
		Address: "1 Main St",
		Total:   decimal.NewFromInt(750),
		Items:   items,
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	orderService := NewOrderService(testProducts(), repository.NewInMemoryOrderStore())

	tests := []struct {
		name      string
		req       models.OrderRequest
		wantErr   error
		wantTotal int64
	}{
		{
			name:      "valid order with single item",
			req:       validRequest("p1"),
			wantTotal: 750,
		},
		{
			name: "valid order with multiple items",
			req: func() models.OrderRequest {
				r := validRequest("p1", "p2")
				r.Total = decimal.NewFromInt(2200)
				return r
			}(),
			wantTotal: 2200,
		},
		{
			name: "phone with spaces",
			req: func() models.OrderRequest {
				r := validRequest("p1")
				r.Phone = "+7 123 456 78 90"
				return r
			}(),
			wantTotal: 750,
		},
		{
			name:    "empty order",
			req:     validRequest(),
			wantErr: ErrEmptyOrder,
		},
		{
			name:    "unknown product",
			req:     validRequest("p9"),
			wantErr: ErrInvalidProduct,
		},
		{
			name: "priceless product",
			req: func() models.OrderRequest {
				r := validRequest("p1", "p3")
				return r
			}(),
			wantErr: ErrPricelessItem,
		},
		{
			name:    "duplicate product",
			req:     validRequest("p1", "p1"),
			wantErr: ErrDuplicateItem,
		},
		{
			name: "total mismatch",
			req: func() models.OrderRequest {
				r := validRequest("p1")
				r.Total = decimal.NewFromInt(1)
				return r
			}(),
			wantErr: ErrTotalMismatch,
		},
		{
			name: "missing address",
			req: func() models.OrderRequest {
				r := validRequest("p1")
				r.Address = ""
				return r
			}(),
			wantErr: ErrInvalidOrder,
		},
		{
			name: "unknown payment method",
			req: func() models.OrderRequest {
				r := validRequest("p1")
				r.Payment = "barter"
				return r
			}(),
			wantErr: ErrInvalidOrder,
		},
		{
			name: "bad email",
			req: func() models.OrderRequest {
				r := validRequest("p1")
				r.Email = "nope"
				return r
			}(),
			wantErr: ErrInvalidOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := orderService.CreateOrder(context.Background(), tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CreateOrder() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("CreateOrder() unexpected error = %v", err)
				return
			}

			if resp == nil {
				t.Error("CreateOrder() returned nil response")
				return
			}

			if resp.ID == "" {
				t.Error("CreateOrder() order ID is empty")
			}

			if !resp.Total.Equal(decimal.NewFromInt(tt.wantTotal)) {
				t.Errorf("CreateOrder() total = %s, want %d", resp.Total, tt.wantTotal)
			}
		})
	}
}

func TestOrderService_UnknownPaymentMessage(t *testing.T) {
	orderService := NewOrderService(testProducts(), repository.NewInMemoryOrderStore())

	req := validRequest("p1")
	req.Payment = "bitcoin"

	_, err := orderService.CreateOrder(context.Background(), req)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("CreateOrder() error = %v, want *ValidationError", err)
	}
	if got := verr.Errors[models.FieldPayment]; got != models.MsgPaymentUnknown {
		t.Errorf("payment error = %q, want %q", got, models.MsgPaymentUnknown)
	}
}

func TestOrderService_ValidationErrorFields(t *testing.T) {
	orderService := NewOrderService(testProducts(), repository.NewInMemoryOrderStore())

	req := validRequest("p1")
	req.Payment = ""
	req.Phone = "8 800"

	_, err := orderService.CreateOrder(context.Background(), req)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("CreateOrder() error = %v, want *ValidationError", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("got %d field errors, want 2: %v", len(verr.Errors), verr.Errors)
	}
	if verr.Errors[models.FieldPayment] != models.MsgPaymentRequired {
		t.Errorf("payment error = %q", verr.Errors[models.FieldPayment])
	}
	if verr.Errors[models.FieldPhone] != models.MsgPhoneFormat {
		t.Errorf("phone error = %q", verr.Errors[models.FieldPhone])
	}

	want := "invalid order data: payment: must choose a payment method; phone: invalid phone format"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestOrderService_StoresOrder(t *testing.T) {
	store := repository.NewInMemoryOrderStore()
	orderService := NewOrderService(testProducts(), store)
	ctx := context.Background()

	resp, err := orderService.CreateOrder(ctx, validRequest("p1"))
	if err != nil {
		t.Fatalf("CreateOrder() unexpected error = %v", err)
	}

	order, err := orderService.GetOrder(ctx, resp.ID)
	if err != nil {
		t.Fatalf("GetOrder() unexpected error = %v", err)
	}
	if order.Request.Email != "user@example.com" {
		t.Errorf("stored email = %q", order.Request.Email)
	}
	if order.CreatedAt.IsZero() {
		t.Error("stored order has no creation time")
	}

	if _, err := orderService.GetOrder(ctx, "missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("GetOrder() error = %v, want %v", err, ErrOrderNotFound)
	}
}

func TestProductService_ListProducts(t *testing.T) {
	productService := NewProductService(testProducts())

	tests := []struct {
		name    string
		filter  ProductFilter
		wantIDs []string
	}{
		{name: "everything", wantIDs: []string{"p1", "p2", "p3"}},
		{name: "by kind", filter: ProductFilter{Kind: models.CategorySoft}, wantIDs: []string{"p1", "p3"}},
		{name: "purchasable only", filter: ProductFilter{Purchasable: true}, wantIDs: []string{"p1", "p2"}},
		{name: "kind and purchasable", filter: ProductFilter{Kind: models.CategorySoft, Purchasable: true}, wantIDs: []string{"p1"}},
		{name: "no match", filter: ProductFilter{Kind: models.CategoryButton}, wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := productService.ListProducts(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("ListProducts() unexpected error = %v", err)
			}
			if list.Total != len(tt.wantIDs) || len(list.Items) != len(tt.wantIDs) {
				t.Fatalf("ListProducts() total = %d, items = %d, want %d", list.Total, len(list.Items), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if list.Items[i].ID != id {
					t.Errorf("ListProducts() item %d = %q, want %q", i, list.Items[i].ID, id)
				}
			}
		})
	}
}
