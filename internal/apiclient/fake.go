package apiclient

import (
	"context"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/storefront/internal/models"
)

// FakePlacer accepts every order without a network round trip, answering
// with a fresh id and the order's own total
type FakePlacer struct{}

// PlaceOrder implements checkout.OrderPlacer
func (FakePlacer) PlaceOrder(ctx context.Context, order models.OrderRequest) (models.OrderResponse, error) {
	if err := ctx.Err(); err != nil {
		return models.OrderResponse{}, err
	}
	return models.OrderResponse{
		ID:    uuid.NewString(),
		Total: order.Total,
	}, nil
}
