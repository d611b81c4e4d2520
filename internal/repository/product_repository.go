package repository

import (
	"context"
	"encoding/json"
	"os"
	"slices"

	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/storefront/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// InMemoryProductRepository implements ProductRepository with in-memory storage.
// Products are listed in the order they were seeded.
type InMemoryProductRepository struct {
	products []models.Product
	byID     map[string]int
}

// NewInMemoryProductRepository creates a new in-memory product repository with seed data
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return NewInMemoryProductRepositoryFrom(seedProducts())
}

// NewInMemoryProductRepositoryFrom creates a repository holding products.
// A later duplicate id replaces the earlier entry in place.
func NewInMemoryProductRepositoryFrom(products []models.Product) *InMemoryProductRepository {
	r := &InMemoryProductRepository{byID: make(map[string]int, len(products))}
	for _, p := range products {
		if i, ok := r.byID[p.ID]; ok {
			r.products[i] = p
			continue
		}
		r.byID[p.ID] = len(r.products)
		r.products = append(r.products, p)
	}
	return r
}

// LoadProductsFile reads a product seed file. It accepts either a bare JSON
// array or the {"total", "items"} envelope served by GET /products.
func LoadProductsFile(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read products file")
	}

	var list []models.Product
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var envelope models.ProductList
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return envelope.Items, nil
}

// GetAll returns all products
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return slices.Clone(r.products), nil
}

// GetByID returns a product by its ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	i, exists := r.byID[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	product := r.products[i]
	return &product, nil
}

// seedProducts is the default storefront assortment. Images are relative to the CDN.
func seedProducts() []models.Product {
	return []models.Product{
		{
			ID:          "854cef69-976d-4c2a-a18c-2aa45046c390",
			Title:       "+1 час в сутках",
			Price:       models.Price(750),
			Description: "Если планируете решать задачи в тренажёре, берите два.",
			Image:       "/5_Dots.svg",
			Category:    "софт-скил",
		},
		{
			ID:          "c101ab44-ed99-4a54-990d-47aa2bb4e7d9",
			Title:       "HEX-леденец",
			Price:       models.Price(1450),
			Description: "Лизните этот леденец, чтобы мгновенно запоминать и узнавать любой цветовой код CSS.",
			Image:       "/Shell.svg",
			Category:    "другое",
		},
		{
			ID:          "b06cde61-912f-4663-9751-09956c0eed67",
			Title:       "Мамка-таймер",
			Description: "Будет стоять над душой и не давать прокрастинировать.",
			Image:       "/Asterisk_2.svg",
			Category:    "софт-скил",
		},
		{
			ID:          "412bcf81-7e75-4e70-bdb9-d3c73c9803b7",
			Title:       "Фреймворк куки судьбы",
			Price:       models.Price(2500),
			Description: "Откройте эти куки, чтобы узнать, какой фреймворк вы должны изучить дальше.",
			Image:       "/Soft_Flower.svg",
			Category:    "дополнительное",
		},
		{
			ID:          "1c521d84-c48d-48fa-8cfb-9d911fa515fd",
			Title:       "Кнопка «Замьютить кота»",
			Price:       models.Price(2000),
			Description: "Если орёт кот, нажмите кнопку.",
			Image:       "/mute-cat.svg",
			Category:    "кнопка",
		},
		{
			ID:          "f3867296-45c7-4603-bd34-29cea3a061d5",
			Title:       "Бэкенд-антистресс",
			Price:       models.Price(1000),
			Description: "Сжимайте мячик, чтобы снизить стресс от тем по бэкенду.",
			Image:       "/Polygon.svg",
			Category:    "другое",
		},
		{
			ID:          "54df7dcb-1213-4b3c-ab61-92ed5f845535",
			Title:       "Портативный телепорт",
			Price:       models.Price(100000),
			Description: "Измените локацию для поиска работы.",
			Image:       "/Butterfly.svg",
			Category:    "другое",
		},
		{
			ID:          "90973ae5-285c-4b6f-a6d0-65d1d760b102",
			Title:       "UI/UX-карандаш",
			Price:       models.Price(10000),
			Description: "Очень полезный навык для фронтендера.",
			Image:       "/Leaf.svg",
			Category:    "хард-скил",
		},
	}
}
