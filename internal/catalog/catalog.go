// Package catalog holds the product list fetched for a storefront session.
package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/storefront/internal/eventbus"
	"github.com/Lixing-Zhang/storefront/internal/models"
)

var (
	// ErrNotFound is returned for lookups on an absent id or before the catalog is loaded
	ErrNotFound = errors.New("product not found")
)

// Catalog is the single source of truth for the session's products
type Catalog struct {
	bus *eventbus.Bus

	mu       sync.RWMutex
	loaded   bool
	products []models.Product
	byID     map[string]int
	preview  *models.Product
}

// New creates an empty catalog that announces its changes on bus
func New(bus *eventbus.Bus) *Catalog {
	return &Catalog{
		bus:  bus,
		byID: make(map[string]int),
	}
}

// SetAll replaces the product list and emits catalog:changed with the new list.
// Later calls win. A repeated id keeps its first position and its last value.
func (c *Catalog) SetAll(ctx context.Context, products []models.Product) error {
	list := make([]models.Product, 0, len(products))
	index := make(map[string]int, len(products))
	for _, p := range products {
		if i, ok := index[p.ID]; ok {
			list[i] = p
			continue
		}
		index[p.ID] = len(list)
		list = append(list, p)
	}

	c.mu.Lock()
	c.products = list
	c.byID = index
	c.loaded = true
	c.mu.Unlock()

	return c.bus.Emit(ctx, models.EventCatalogChanged, slices.Clone(list))
}

// GetAll returns the full list, or ErrNotFound when nothing has been loaded
func (c *Catalog) GetAll() ([]models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return nil, errors.Wrap(ErrNotFound, "catalog not loaded")
	}
	return slices.Clone(c.products), nil
}

// GetByID looks a product up in the current list
func (c *Catalog) GetByID(id string) (models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, errors.Wrapf(ErrNotFound, "id %q", id)
	}
	return c.products[i], nil
}

// SetPreview makes the product with id the current preview and emits
// preview:changed. An unknown id returns ErrNotFound and emits nothing.
func (c *Catalog) SetPreview(ctx context.Context, id string) error {
	product, err := c.GetByID(id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.preview = &product
	c.mu.Unlock()

	return c.bus.Emit(ctx, models.EventPreviewChanged, product)
}

// Preview returns the current preview target, if any
func (c *Catalog) Preview() (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.preview == nil {
		return models.Product{}, false
	}
	return *c.preview, true
}

// Len returns the number of products held
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}
