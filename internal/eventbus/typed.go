package eventbus

import (
	"context"

	"github.com/go-faster/errors"
)

// On registers a handler that receives the payload already asserted to T
func On[T any](b *Bus, name string, h func(ctx context.Context, payload T) error) Subscription {
	return b.Subscribe(name, Typed(h))
}

// Typed adapts a payload handler to a Handler. A payload of another type
// fails with ErrPayloadType.
func Typed[T any](h func(ctx context.Context, payload T) error) Handler {
	return func(ctx context.Context, e Event) error {
		payload, err := PayloadOf[T](e)
		if err != nil {
			return err
		}
		return h(ctx, payload)
	}
}

// PayloadOf asserts the payload of e to T. A non-nil *T is accepted as well.
func PayloadOf[T any](e Event) (T, error) {
	if p, ok := e.Payload.(T); ok {
		return p, nil
	}
	if p, ok := e.Payload.(*T); ok && p != nil {
		return *p, nil
	}
	var zero T
	return zero, errors.Wrapf(ErrPayloadType, "%s: want %T, got %T", e.Name, zero, e.Payload)
}
