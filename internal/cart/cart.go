// Package cart holds the order being put together during a checkout:
// the selected products plus the staged payment and contact fields.
package cart

import (
	"context"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/storefront/internal/eventbus"
	"github.com/Lixing-Zhang/storefront/internal/models"
)

// Cart is the in-progress order. Every mutation is announced on the bus.
// Unset staged fields are empty strings.
type Cart struct {
	bus *eventbus.Bus

	mu      sync.RWMutex
	items   []models.Product
	payment models.PaymentMethod
	address string
	email   string
	phone   string
}

// New creates an empty cart
func New(bus *eventbus.Bus) *Cart {
	return &Cart{bus: bus}
}

// AddItem appends product unless its id is already in the cart.
// order:count-changed is emitted either way.
func (c *Cart) AddItem(ctx context.Context, product models.Product) error {
	c.mu.Lock()
	if c.indexOf(product.ID) < 0 {
		c.items = append(c.items, product)
	}
	count := len(c.items)
	c.mu.Unlock()

	return c.emitCount(ctx, count)
}

// RemoveItem drops the item with id if present. order:count-changed is
// emitted either way.
func (c *Cart) RemoveItem(ctx context.Context, id string) error {
	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.items = slices.Delete(c.items, i, i+1)
	}
	count := len(c.items)
	c.mu.Unlock()

	return c.emitCount(ctx, count)
}

func (c *Cart) emitCount(ctx context.Context, count int) error {
	return c.bus.Emit(ctx, models.EventCountChanged, models.Count{Count: count})
}

// indexOf must be called with mu held
func (c *Cart) indexOf(id string) int {
	return slices.IndexFunc(c.items, func(p models.Product) bool { return p.ID == id })
}

// Contains reports whether a product with id is in the cart
func (c *Cart) Contains(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexOf(id) >= 0
}

// ItemCount returns the number of distinct products in the cart
func (c *Cart) ItemCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Total sums the item prices, counting a null price as zero
func (c *Cart) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total()
}

func (c *Cart) total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range c.items {
		total = total.Add(p.PriceOrZero())
	}
	return total
}

// Items returns the products in insertion order
func (c *Cart) Items() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Priceless returns the items that have no price and cannot be paid for
func (c *Cart) Priceless() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Product
	for _, p := range c.items {
		if !p.Price.Valid {
			out = append(out, p)
		}
	}
	return out
}

// SetPaymentInfo stages the payment method and delivery address together
// and emits order:payment-changed
func (c *Cart) SetPaymentInfo(ctx context.Context, payment models.PaymentMethod, address string) error {
	c.mu.Lock()
	c.payment = payment
	c.address = address
	c.mu.Unlock()

	return c.bus.Emit(ctx, models.EventPaymentChanged, models.PaymentInfo{Payment: payment, Address: address})
}

// SetContactInfo stages the email and phone together and emits
// order:contact-changed
func (c *Cart) SetContactInfo(ctx context.Context, email, phone string) error {
	c.mu.Lock()
	c.email = email
	c.phone = phone
	c.mu.Unlock()

	return c.bus.Emit(ctx, models.EventContactChanged, models.ContactInfo{Email: email, Phone: phone})
}

// Payment returns the staged payment method
func (c *Cart) Payment() models.PaymentMethod {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.payment
}

// Address returns the staged delivery address
func (c *Cart) Address() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.address
}

// Email returns the staged email
func (c *Cart) Email() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.email
}

// Phone returns the staged phone
func (c *Cart) Phone() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phone
}

// ValidatePayment checks the staged payment fields and emits the result as
// order:payment-validated. Invalid data is reported through the returned
// map, never as an error; the error is from emission only.
func (c *Cart) ValidatePayment(ctx context.Context) (models.ValidationErrors, error) {
	c.mu.RLock()
	errs := models.ValidatePayment(c.payment, c.address)
	c.mu.RUnlock()

	return errs, c.bus.Emit(ctx, models.EventPaymentValidated, errs)
}

// ValidateContact checks the staged contact fields and emits the result as
// order:contact-validated
func (c *Cart) ValidateContact(ctx context.Context) (models.ValidationErrors, error) {
	c.mu.RLock()
	errs := models.ValidateContact(c.email, c.phone)
	c.mu.RUnlock()

	return errs, c.bus.Emit(ctx, models.EventContactValidated, errs)
}

// Build snapshots the cart into an order request. It fails with a
// *BuildError when the cart is empty or a staged field is unset, and leaves
// the cart untouched either way.
func (c *Cart) Build() (models.OrderRequest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var buildErr BuildError
	buildErr.Empty = len(c.items) == 0
	for _, f := range []struct {
		field models.Field
		set   bool
	}{
		{models.FieldPayment, c.payment != ""},
		{models.FieldEmail, c.email != ""},
		{models.FieldPhone, c.phone != ""},
		{models.FieldAddress, c.address != ""},
	} {
		if !f.set {
			buildErr.Missing = append(buildErr.Missing, f.field)
		}
	}
	if buildErr.Empty || len(buildErr.Missing) > 0 {
		return models.OrderRequest{}, &buildErr
	}

	ids := make([]string, len(c.items))
	for i, p := range c.items {
		ids[i] = p.ID
	}
	return models.OrderRequest{
		Payment: c.payment,
		Email:   c.email,
		Phone:   c.phone,
		Address: c.address,
		Total:   c.total(),
		Items:   ids,
	}, nil
}

// Reset empties the cart, clears every staged field and emits order:reset
func (c *Cart) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.items = nil
	c.payment = ""
	c.address = ""
	c.email = ""
	c.phone = ""
	c.mu.Unlock()

	return c.bus.Emit(ctx, models.EventOrderReset, nil)
}
