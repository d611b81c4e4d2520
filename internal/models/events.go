package models

import "github.com/shopspring/decimal"

// State-change events emitted by the catalog and the cart
const (
	EventCatalogChanged   = "catalog:changed"
	EventPreviewChanged   = "preview:changed"
	EventCountChanged     = "order:count-changed"
	EventPaymentChanged   = "order:payment-changed"
	EventContactChanged   = "order:contact-changed"
	EventPaymentValidated = "order:payment-validated"
	EventContactValidated = "order:contact-validated"
	EventOrderReset       = "order:reset"
	EventOrderFinished    = "order:finished"
)

// Intent events emitted by view components
const (
	EventProductSelect  = "product:select"
	EventPreviewAdd     = "preview:add"
	EventPreviewRemove  = "preview:remove"
	EventBasketOpen     = "basket:open"
	EventBasketRemove   = "basket:remove"
	EventBasketOrder    = "basket:order"
	EventPaymentInput   = "payment:input"
	EventPaymentSubmit  = "payment:submit"
	EventContactInput   = "contact:input"
	EventContactSubmit  = "contact:submit"
	EventModalClose     = "modal:close"
	EventCheckoutCancel = "checkout:cancel"
)

// View requests emitted by the checkout coordinator
const (
	EventModalOpen        = "modal:open"
	EventViewModalClose   = "view:modal-close"
	EventViewPreview      = "view:preview"
	EventViewBasket       = "view:basket"
	EventViewCounter      = "view:counter"
	EventViewPaymentForm  = "view:payment-form"
	EventViewContactForm  = "view:contact-form"
	EventViewSuccess      = "view:success"
	EventViewFormsClear   = "view:forms-clear"
	EventCheckoutFinished = "checkout:finished"
)

// ProductRef identifies a product in intent payloads
type ProductRef struct {
	ID string `json:"id"`
}

// Count carries the number of items in the cart
type Count struct {
	Count int `json:"count"`
}

// PaymentInfo is the staged payment stage data
type PaymentInfo struct {
	Payment PaymentMethod `json:"payment"`
	Address string        `json:"address"`
}

// ContactInfo is the staged contact stage data
type ContactInfo struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ModalState tells the overlay which stage it now shows
type ModalState struct {
	Stage Stage `json:"stage"`
}

// PreviewView is what the product preview renders
type PreviewView struct {
	Product     Product      `json:"product"`
	Kind        CategoryKind `json:"kind"`
	PriceText   string       `json:"priceText"`
	Purchasable bool         `json:"purchasable"`
	InCart      bool         `json:"inCart"`
}

// BasketLine is a single row of the basket, indexed from 1
type BasketLine struct {
	Index     int                 `json:"index"`
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Price     decimal.NullDecimal `json:"price"`
	PriceText string              `json:"priceText"`
}

// BasketView is what the basket renders
type BasketView struct {
	Items     []BasketLine    `json:"items"`
	Total     decimal.Decimal `json:"total"`
	TotalText string          `json:"totalText"`
	Empty     bool            `json:"empty"`
}

// FormState toggles a form's submit button and error text
type FormState struct {
	SubmitEnabled bool             `json:"submitEnabled"`
	ErrorText     string           `json:"errorText"`
	Errors        ValidationErrors `json:"errors"`
}

// SuccessView is what the confirmation screen renders
type SuccessView struct {
	OrderID string          `json:"orderId"`
	Total   decimal.Decimal `json:"total"`
	Text    string          `json:"text"`
}
