package service

import (
	"context"

	"github.com/Lixing-Zhang/storefront/internal/models"
	"github.com/Lixing-Zhang/storefront/internal/repository"
)

// ProductFilter narrows the catalog listing. The zero value matches everything.
type ProductFilter struct {
	Kind        models.CategoryKind
	Purchasable bool
}

func (f ProductFilter) match(p models.Product) bool {
	if f.Kind != "" && p.Kind() != f.Kind {
		return false
	}
	if f.Purchasable && !p.Purchasable() {
		return false
	}
	return true
}

// ProductService serves the storefront catalog
type ProductService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ListProducts returns the catalog in the list envelope, keeping repository order
func (s *ProductService) ListProducts(ctx context.Context, filter ProductFilter) (*models.ProductList, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.Product, 0, len(products))
	for _, p := range products {
		if filter.match(p) {
			items = append(items, p)
		}
	}
	return &models.ProductList{Total: len(items), Items: items}, nil
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}
