package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer pays for an order
type PaymentMethod string

const (
	PaymentOnline  PaymentMethod = "online"
	PaymentReceive PaymentMethod = "receive"
)

// Known reports whether m is one of the supported payment methods
func (m PaymentMethod) Known() bool {
	return m == PaymentOnline || m == PaymentReceive
}

// OrderRequest is the body of POST /order.
// Schema matches the storefront API
type OrderRequest struct {
	Payment PaymentMethod   `json:"payment"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone"`
	Address string          `json:"address"`
	Total   decimal.Decimal `json:"total"`
	Items   []string        `json:"items"`
}

// OrderResponse is returned by POST /order on success
type OrderResponse struct {
	ID    string          `json:"id"`
	Total decimal.Decimal `json:"total"`
}

// ProductList is the envelope of GET /products
type ProductList struct {
	Total int       `json:"total"`
	Items []Product `json:"items"`
}

// Order is a placed order as kept by the API server
type Order struct {
	ID        string       `json:"id"`
	Request   OrderRequest `json:"request"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ErrorResponse is the body the storefront API answers failures with
type ErrorResponse struct {
	Error string `json:"error"`
}
