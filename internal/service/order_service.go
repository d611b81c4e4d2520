package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/storefront/internal/models"
	"github.com/Lixing-Zhang/storefront/internal/repository"
)

var (
	ErrInvalidProduct = errors.New("invalid product")
	ErrPricelessItem  = errors.New("product has no price")
	ErrDuplicateItem  = errors.New("product ordered twice")
	ErrEmptyOrder     = errors.New("order must contain at least one item")
	ErrInvalidOrder   = errors.New("invalid order data")
	ErrTotalMismatch  = errors.New("order total does not match item prices")
	ErrOrderNotFound  = errors.New("order not found")
)

// ValidationError carries the field errors of a rejected order. It matches
// ErrInvalidOrder.
type ValidationError struct {
	Errors models.ValidationErrors
}

// fieldOrder is the order the fields appear in on the storefront forms
var fieldOrder = []models.Field{models.FieldPayment, models.FieldAddress, models.FieldEmail, models.FieldPhone}

func (e *ValidationError) Error() string {
	var parts []string
	for _, f := range fieldOrder {
		if msg, ok := e.Errors[f]; ok {
			parts = append(parts, string(f)+": "+msg)
		}
	}
	return ErrInvalidOrder.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidOrder
}

// ProductRepository interface for product data access
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// OrderService handles order business logic
type OrderService struct {
	productRepo ProductRepository
	store       repository.OrderStore
	now         func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(productRepo ProductRepository, store repository.OrderStore) *OrderService {
	return &OrderService{
		productRepo: productRepo,
		store:       store,
		now:         time.Now,
	}
}

// CreateOrder validates the order the way the storefront does, checks the
// total against the catalog prices and stores it
func (s *OrderService) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.OrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	errs := models.ValidatePayment(req.Payment, req.Address)
	for f, msg := range models.ValidateContact(req.Email, req.Phone) {
		errs[f] = msg
	}
	if !errs.Valid() {
		return nil, &ValidationError{Errors: errs}
	}

	total := decimal.Zero
	seen := make(map[string]bool, len(req.Items))
	for _, id := range req.Items {
		if seen[id] {
			return nil, errors.Wrapf(ErrDuplicateItem, "id %q", id)
		}
		seen[id] = true

		product, err := s.productRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, errors.Wrapf(ErrInvalidProduct, "id %q", id)
			}
			return nil, errors.Wrap(err, "get product")
		}
		if !product.Purchasable() {
			return nil, errors.Wrapf(ErrPricelessItem, "id %q", id)
		}
		total = total.Add(product.Price.Decimal)
	}

	if !total.Equal(req.Total) {
		return nil, errors.Wrapf(ErrTotalMismatch, "got %s, want %s", req.Total, total)
	}

	order := models.Order{
		ID:        generateOrderID(),
		Request:   req,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, order); err != nil {
		return nil, errors.Wrap(err, "save order")
	}

	return &models.OrderResponse{
		ID:    order.ID,
		Total: total,
	}, nil
}

// GetOrder returns a previously placed order
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.store.Get(ctx, id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// generateOrderID generates a unique order ID using UUID
func generateOrderID() string {
	return uuid.New().String()
}
