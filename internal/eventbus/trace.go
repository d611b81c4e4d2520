package eventbus

import (
	"context"
	"log/slog"
)

// Trace returns a match-all handler that logs every emission at debug level
func Trace(logger *slog.Logger) Handler {
	return func(ctx context.Context, e Event) error {
		if _, empty := e.Payload.(Empty); empty {
			logger.DebugContext(ctx, "event", "name", e.Name)
			return nil
		}
		logger.DebugContext(ctx, "event", "name", e.Name, "payload", e.Payload)
		return nil
	}
}
