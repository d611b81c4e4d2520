package checkout

import (
	"context"
	"slices"

	"github.com/Lixing-Zhang/storefront/internal/eventbus"
	"github.com/Lixing-Zhang/storefront/internal/models"
)

// Route is one row of the wiring table: the event the coordinator listens
// to and the events its handler may emit in response
type Route struct {
	Event string
	Emits []string
}

type route struct {
	Route
	handle eventbus.Handler
}

// Routes returns the wiring table in subscription order
func (c *Coordinator) Routes() []Route {
	rs := c.routes()
	out := make([]Route, len(rs))
	for i, r := range rs {
		out[i] = Route{Event: r.Event, Emits: slices.Clone(r.Emits)}
	}
	return out
}

func (c *Coordinator) routes() []route {
	return []route{
		{Route{models.EventCatalogChanged, nil}, c.onCatalogChanged},
		{Route{models.EventProductSelect, []string{models.EventPreviewChanged}},
			eventbus.Typed(c.onProductSelect)},
		{Route{models.EventPreviewChanged, []string{models.EventViewPreview, models.EventModalOpen}},
			eventbus.Typed(c.onPreviewChanged)},
		{Route{models.EventPreviewAdd, []string{models.EventCountChanged, models.EventViewPreview, models.EventViewBasket}},
			eventbus.Typed(c.onPreviewAdd)},
		{Route{models.EventPreviewRemove, []string{models.EventCountChanged, models.EventViewPreview, models.EventViewBasket}},
			eventbus.Typed(c.onPreviewRemove)},
		{Route{models.EventCountChanged, []string{models.EventViewCounter}},
			eventbus.Typed(c.onCountChanged)},
		{Route{models.EventBasketOpen, []string{models.EventViewBasket, models.EventModalOpen}},
			c.onBasketOpen},
		{Route{models.EventBasketRemove, []string{models.EventCountChanged, models.EventViewBasket}},
			eventbus.Typed(c.onBasketRemove)},
		{Route{models.EventBasketOrder, []string{models.EventViewPaymentForm, models.EventModalOpen}},
			c.onBasketOrder},
		{Route{models.EventPaymentInput, []string{models.EventPaymentChanged, models.EventPaymentValidated}},
			eventbus.Typed(c.onPaymentInput)},
		{Route{models.EventPaymentValidated, []string{models.EventViewPaymentForm}},
			eventbus.Typed(c.onPaymentValidated)},
		{Route{models.EventPaymentSubmit, []string{models.EventPaymentValidated, models.EventViewContactForm, models.EventModalOpen}},
			c.onPaymentSubmit},
		{Route{models.EventContactInput, []string{models.EventContactChanged, models.EventContactValidated}},
			eventbus.Typed(c.onContactInput)},
		{Route{models.EventContactValidated, []string{models.EventViewContactForm}},
			eventbus.Typed(c.onContactValidated)},
		{Route{models.EventContactSubmit, []string{
			models.EventPaymentValidated, models.EventContactValidated,
			models.EventCheckoutFinished, models.EventViewSuccess, models.EventModalOpen,
			models.EventViewModalClose, models.EventViewContactForm, models.EventOrderFinished,
		}}, c.onContactSubmit},
		{Route{models.EventModalClose, nil}, c.onModalClose},
		{Route{models.EventCheckoutCancel, []string{models.EventViewModalClose, models.EventOrderFinished}},
			c.onCheckoutCancel},
		{Route{models.EventOrderFinished, []string{models.EventOrderReset, models.EventViewCounter, models.EventViewFormsClear}},
			c.onOrderFinished},
	}
}

func (c *Coordinator) onCatalogChanged(ctx context.Context, _ eventbus.Event) error {
	if c.Stage() == models.StageClosed {
		c.moveTo(ctx, models.StageBrowsing)
	}
	return nil
}

func (c *Coordinator) onProductSelect(ctx context.Context, ref models.ProductRef) error {
	if err := c.catalog.SetPreview(ctx, ref.ID); err != nil {
		c.logger.WarnContext(ctx, "preview lookup failed", "product_id", ref.ID, "error", err)
		return err
	}
	return nil
}

func (c *Coordinator) onPreviewChanged(ctx context.Context, p models.Product) error {
	if !c.moveTo(ctx, models.StagePreviewOpen) {
		return nil
	}
	if err := c.bus.Emit(ctx, models.EventViewPreview, previewView(p, c.cart.Contains(p.ID))); err != nil {
		return err
	}
	return c.bus.Emit(ctx, models.EventModalOpen, models.ModalState{Stage: models.StagePreviewOpen})
}

func (c *Coordinator) onPreviewAdd(ctx context.Context, ref models.ProductRef) error {
	p, err := c.catalog.GetByID(ref.ID)
	if err != nil {
		c.logger.WarnContext(ctx, "add of unknown product", "product_id", ref.ID, "error", err)
		return err
	}
	if !p.Purchasable() {
		c.logger.WarnContext(ctx, "product cannot be bought", "product_id", p.ID)
		return nil
	}
	if err := c.cart.AddItem(ctx, p); err != nil {
		return err
	}
	return c.refreshPreviewAndBasket(ctx, p)
}

func (c *Coordinator) onPreviewRemove(ctx context.Context, ref models.ProductRef) error {
	if err := c.cart.RemoveItem(ctx, ref.ID); err != nil {
		return err
	}
	p, err := c.catalog.GetByID(ref.ID)
	if err != nil {
		return c.bus.Emit(ctx, models.EventViewBasket, basketView(c.cart))
	}
	return c.refreshPreviewAndBasket(ctx, p)
}

func (c *Coordinator) refreshPreviewAndBasket(ctx context.Context, p models.Product) error {
	if c.Stage() == models.StagePreviewOpen {
		if err := c.bus.Emit(ctx, models.EventViewPreview, previewView(p, c.cart.Contains(p.ID))); err != nil {
			return err
		}
	}
	return c.bus.Emit(ctx, models.EventViewBasket, basketView(c.cart))
}

func (c *Coordinator) onCountChanged(ctx context.Context, count models.Count) error {
	return c.bus.Emit(ctx, models.EventViewCounter, count)
}

func (c *Coordinator) onBasketOpen(ctx context.Context, _ eventbus.Event) error {
	if !c.moveTo(ctx, models.StageBasketOpen) {
		return nil
	}
	if err := c.bus.Emit(ctx, models.EventViewBasket, basketView(c.cart)); err != nil {
		return err
	}
	return c.bus.Emit(ctx, models.EventModalOpen, models.ModalState{Stage: models.StageBasketOpen})
}

func (c *Coordinator) onBasketRemove(ctx context.Context, ref models.ProductRef) error {
	if err := c.cart.RemoveItem(ctx, ref.ID); err != nil {
		return err
	}
	return c.bus.Emit(ctx, models.EventViewBasket, basketView(c.cart))
}

func (c *Coordinator) onBasketOrder(ctx context.Context, _ eventbus.Event) error {
	if c.cart.ItemCount() == 0 {
		c.logger.WarnContext(ctx, "order requested for an empty basket")
		return nil
	}
	if priceless := c.cart.Priceless(); len(priceless) > 0 {
		c.logger.WarnContext(ctx, "basket holds products without a price", "count", len(priceless))
		return nil
	}
	if !c.moveTo(ctx, models.StagePaymentEntry) {
		return nil
	}
	c.beginCheckout()

	form := models.FormState{
		SubmitEnabled: models.ValidatePayment(c.cart.Payment(), c.cart.Address()).Valid(),
	}
	if err := c.bus.Emit(ctx, models.EventViewPaymentForm, form); err != nil {
		return err
	}
	return c.bus.Emit(ctx, models.EventModalOpen, models.ModalState{Stage: models.StagePaymentEntry})
}

func (c *Coordinator) onPaymentInput(ctx context.Context, info models.PaymentInfo) error {
	if err := c.cart.SetPaymentInfo(ctx, info.Payment, info.Address); err != nil {
		return err
	}
	_, err := c.cart.ValidatePayment(ctx)
	return err
}

func (c *Coordinator) onPaymentValidated(ctx context.Context, errs models.ValidationErrors) error {
	return c.bus.Emit(ctx, models.EventViewPaymentForm, paymentForm(errs))
}

func (c *Coordinator) onPaymentSubmit(ctx context.Context, _ eventbus.Event) error {
	if stage := c.Stage(); stage != models.StagePaymentEntry {
		c.logger.WarnContext(ctx, "payment submitted outside the payment stage", "stage", stage)
		return nil
	}
	errs, err := c.cart.ValidatePayment(ctx)
	if err != nil {
		return err
	}
	if !errs.Valid() {
		c.logger.InfoContext(ctx, "payment submit blocked", "errors", errs)
		return nil
	}
	if !c.moveTo(ctx, models.StageContactEntry) {
		return nil
	}

	form := models.FormState{
		SubmitEnabled: models.ValidateContact(c.cart.Email(), c.cart.Phone()).Valid(),
	}
	if err := c.bus.Emit(ctx, models.EventViewContactForm, form); err != nil {
		return err
	}
	return c.bus.Emit(ctx, models.EventModalOpen, models.ModalState{Stage: models.StageContactEntry})
}

func (c *Coordinator) onContactInput(ctx context.Context, info models.ContactInfo) error {
	if err := c.cart.SetContactInfo(ctx, info.Email, info.Phone); err != nil {
		return err
	}
	_, err := c.cart.ValidateContact(ctx)
	return err
}

func (c *Coordinator) onContactValidated(ctx context.Context, errs models.ValidationErrors) error {
	return c.bus.Emit(ctx, models.EventViewContactForm, contactForm(errs))
}

func (c *Coordinator) onContactSubmit(ctx context.Context, _ eventbus.Event) error {
	if stage := c.Stage(); stage != models.StageContactEntry {
		c.logger.WarnContext(ctx, "contact submitted outside the contact stage", "stage", stage)
		return nil
	}

	paymentErrs, err := c.cart.ValidatePayment(ctx)
	if err != nil {
		return err
	}
	contactErrs, err := c.cart.ValidateContact(ctx)
	if err != nil {
		return err
	}
	if !paymentErrs.Valid() || !contactErrs.Valid() {
		c.logger.InfoContext(ctx, "contact submit blocked", "payment_errors", paymentErrs, "contact_errors", contactErrs)
		return nil
	}

	order, err := c.cart.Build()
	if err != nil {
		c.logger.WarnContext(ctx, "order could not be built", "error", err)
		return nil
	}
	return c.placeOrder(ctx, order)
}

func (c *Coordinator) onModalClose(ctx context.Context, _ eventbus.Event) error {
	c.moveTo(ctx, models.StageBrowsing)
	return nil
}

func (c *Coordinator) onCheckoutCancel(ctx context.Context, _ eventbus.Event) error {
	if !c.Stage().InCheckout() {
		return nil
	}
	c.moveTo(ctx, models.StageClosed)
	if err := c.bus.Emit(ctx, models.EventViewModalClose, nil); err != nil {
		return err
	}
	return c.bus.Emit(ctx, models.EventOrderFinished, nil)
}

func (c *Coordinator) onOrderFinished(ctx context.Context, _ eventbus.Event) error {
	if !c.endCheckout() {
		c.logger.DebugContext(ctx, "order finished without an open checkout, ignoring")
		return nil
	}
	if err := c.cart.Reset(ctx); err != nil {
		return err
	}
	if err := c.bus.Emit(ctx, models.EventViewCounter, models.Count{Count: 0}); err != nil {
		return err
	}
	return c.bus.Emit(ctx, models.EventViewFormsClear, nil)
}
