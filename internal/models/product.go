package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyUnit is the single currency the storefront prices in
const CurrencyUnit = "synapses"

func init() {
	// Prices travel as JSON numbers on the storefront API.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a catalog item as served by the storefront API.
// A null price marks the product as priceless: it can be shown but not bought.
type Product struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Price       decimal.NullDecimal `json:"price"`
	Description string              `json:"description"`
	Image       string              `json:"image"`
	Category    string              `json:"category"`
}

// Purchasable reports whether the product has a positive price
func (p Product) Purchasable() bool {
	return p.Price.Valid && p.Price.Decimal.IsPositive()
}

// PriceOrZero returns the price, treating a null price as zero
func (p Product) PriceOrZero() decimal.Decimal {
	if !p.Price.Valid {
		return decimal.Zero
	}
	return p.Price.Decimal
}

// Kind maps the free-text category onto its display kind
func (p Product) Kind() CategoryKind {
	return KindOf(p.Category)
}

// WithImageBase returns a copy of the product with its image resolved against base
func (p Product) WithImageBase(base string) Product {
	p.Image = ResolveImage(base, p.Image)
	return p
}

// Price builds a non-null price from whole synapses
func Price(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

// FormatPrice renders a price the way the storefront shows it
func FormatPrice(price decimal.NullDecimal) string {
	if !price.Valid {
		return "Priceless"
	}
	return FormatAmount(price.Decimal)
}

// FormatAmount renders an amount followed by the currency unit
func FormatAmount(amount decimal.Decimal) string {
	return amount.String() + " " + CurrencyUnit
}

// ResolveImage prefixes a relative image path with the CDN base.
// Absolute URLs and empty paths are returned unchanged.
func ResolveImage(base, path string) string {
	if path == "" || base == "" {
		return path
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// CategoryKind is the visual kind a category label maps to
type CategoryKind string

const (
	CategorySoft       CategoryKind = "soft"
	CategoryHard       CategoryKind = "hard"
	CategoryOther      CategoryKind = "other"
	CategoryAdditional CategoryKind = "additional"
	CategoryButton     CategoryKind = "button"
)

// categoryKinds covers the labels the storefront API uses plus English aliases
var categoryKinds = map[string]CategoryKind{
	"софт-скил":      CategorySoft,
	"soft-skill":     CategorySoft,
	"хард-скил":      CategoryHard,
	"hard-skill":     CategoryHard,
	"другое":         CategoryOther,
	"other":          CategoryOther,
	"дополнительное": CategoryAdditional,
	"additional":     CategoryAdditional,
	"кнопка":         CategoryButton,
	"button":         CategoryButton,
}

// KindOf returns the kind for a category label, falling back to CategoryOther
func KindOf(category string) CategoryKind {
	if kind, ok := categoryKinds[strings.ToLower(strings.TrimSpace(category))]; ok {
		return kind
	}
	return CategoryOther
}
