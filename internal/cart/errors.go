package cart

import (
	"strings"

	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/storefront/internal/models"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrIncompleteOrder = errors.New("order data is incomplete")
)

// BuildError reports why an order could not be built. When the cart is empty
// and staged fields are missing it matches both ErrEmptyCart and
// ErrIncompleteOrder.
type BuildError struct {
	Empty   bool
	Missing []models.Field
}

func (e *BuildError) Error() string {
	var parts []string
	if e.Empty {
		parts = append(parts, ErrEmptyCart.Error())
	}
	if len(e.Missing) > 0 {
		names := make([]string, len(e.Missing))
		for i, f := range e.Missing {
			names[i] = string(f)
		}
		parts = append(parts, ErrIncompleteOrder.Error()+": missing "+strings.Join(names, ", "))
	}
	return strings.Join(parts, "; ")
}

// Is matches the sentinel errors the build failed with
func (e *BuildError) Is(target error) bool {
	switch target {
	case ErrEmptyCart:
		return e.Empty
	case ErrIncompleteOrder:
		return len(e.Missing) > 0
	}
	return false
}
