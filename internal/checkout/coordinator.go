// Package checkout sequences the storefront stages. The coordinator holds
// no business state of its own: it is a fixed table of intent events mapped
// to catalog and cart calls and the view requests that follow them.
package checkout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Lixing-Zhang/storefront/internal/cart"
	"github.com/Lixing-Zhang/storefront/internal/catalog"
	"github.com/Lixing-Zhang/storefront/internal/eventbus"
	"github.com/Lixing-Zhang/storefront/internal/models"
)

// DefaultSubmitTimeout bounds a single order placement
const DefaultSubmitTimeout = 10 * time.Second

// OrderPlacer submits a built order to the storefront API
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order models.OrderRequest) (models.OrderResponse, error)
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLogger sets the logger used for dropped intents and failed orders
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithResetOnFailure controls whether a failed order placement closes the
// overlay and resets the cart (true, the default) or keeps the customer on
// the contact stage with their data.
func WithResetOnFailure(reset bool) Option {
	return func(c *Coordinator) {
		c.resetOnFailure = reset
	}
}

// WithSubmitTimeout bounds each order placement. Zero disables the bound.
func WithSubmitTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.submitTimeout = d
	}
}

// Coordinator drives a checkout through the bus
type Coordinator struct {
	bus     *eventbus.Bus
	catalog *catalog.Catalog
	cart    *cart.Cart
	placer  OrderPlacer

	logger         *slog.Logger
	resetOnFailure bool
	submitTimeout  time.Duration

	mu       sync.Mutex
	stage    models.Stage
	checkout bool
	subs     []eventbus.Subscription
}

// New creates a coordinator. Call Start to attach it to the bus.
func New(bus *eventbus.Bus, cat *catalog.Catalog, c *cart.Cart, placer OrderPlacer, opts ...Option) *Coordinator {
	co := &Coordinator{
		bus:            bus,
		catalog:        cat,
		cart:           c,
		placer:         placer,
		logger:         slog.Default(),
		resetOnFailure: true,
		submitTimeout:  DefaultSubmitTimeout,
		stage:          models.StageClosed,
	}
	for _, opt := range opts {
		opt(co)
	}
	return co
}

// Start subscribes every route of the wiring table. Calling it twice is a no-op.
func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.subs) > 0 {
		return
	}
	for _, r := range c.routes() {
		c.subs = append(c.subs, c.bus.Subscribe(r.Event, r.handle))
	}
}

// Stop detaches the coordinator from the bus
func (c *Coordinator) Stop() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
}

// Stage returns the current checkout stage
func (c *Coordinator) Stage() models.Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// moveTo switches to next when the stage machine allows it
func (c *Coordinator) moveTo(ctx context.Context, next models.Stage) bool {
	c.mu.Lock()
	from := c.stage
	ok := from.CanTransitionTo(next)
	if ok {
		c.stage = next
	}
	c.mu.Unlock()

	if !ok {
		c.logger.WarnContext(ctx, "stage transition refused", "from", from, "to", next)
	}
	return ok
}

// openModal moves to stage and asks the overlay to show it
func (c *Coordinator) openModal(ctx context.Context, stage models.Stage) (bool, error) {
	if !c.moveTo(ctx, stage) {
		return false, nil
	}
	return true, c.bus.Emit(ctx, models.EventModalOpen, models.ModalState{Stage: stage})
}

// beginCheckout marks a checkout as open so that exactly one reset follows it
func (c *Coordinator) beginCheckout() {
	c.mu.Lock()
	c.checkout = true
	c.mu.Unlock()
}

// endCheckout reports whether a checkout was open and closes it
func (c *Coordinator) endCheckout() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	open := c.checkout
	c.checkout = false
	return open
}

func (c *Coordinator) placeOrder(ctx context.Context, order models.OrderRequest) error {
	submitCtx := ctx
	if c.submitTimeout > 0 {
		var cancel context.CancelFunc
		submitCtx, cancel = context.WithTimeout(ctx, c.submitTimeout)
		defer cancel()
	}

	resp, err := c.placer.PlaceOrder(submitCtx, order)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to place order",
			"error", err,
			"items", len(order.Items),
			"total", order.Total.String(),
		)
		return c.orderFailed(ctx)
	}

	c.logger.InfoContext(ctx, "order placed", "order_id", resp.ID, "total", resp.Total.String())

	if !c.moveTo(ctx, models.StageConfirmation) {
		return nil
	}
	if err := c.bus.Emit(ctx, models.EventCheckoutFinished, resp); err != nil {
		return err
	}
	if err := c.bus.Emit(ctx, models.EventViewSuccess, successView(resp)); err != nil {
		return err
	}
	if err := c.bus.Emit(ctx, models.EventModalOpen, models.ModalState{Stage: models.StageConfirmation}); err != nil {
		return err
	}
	return c.bus.Emit(ctx, models.EventOrderFinished, nil)
}

func (c *Coordinator) orderFailed(ctx context.Context) error {
	if !c.resetOnFailure {
		return c.bus.Emit(ctx, models.EventViewContactForm, models.FormState{
			SubmitEnabled: true,
			ErrorText:     MsgOrderFailed,
		})
	}

	c.moveTo(ctx, models.StageClosed)
	if err := c.bus.Emit(ctx, models.EventViewModalClose, nil); err != nil {
		return err
	}
	return c.bus.Emit(ctx, models.EventOrderFinished, nil)
}
