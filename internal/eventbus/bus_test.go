package eventbus

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(calls *[]string, tag string) Handler {
	return func(_ context.Context, e Event) error {
		*calls = append(*calls, tag+":"+e.Name)
		return nil
	}
}

func TestEmit_RegistrationOrder(t *testing.T) {
	bus := New()
	var calls []string

	bus.Subscribe("a", record(&calls, "first"))
	bus.Subscribe("a", record(&calls, "second"))
	bus.Subscribe("b", record(&calls, "other"))
	bus.Subscribe("a", record(&calls, "third"))

	require.NoError(t, bus.Emit(context.Background(), "a", nil))
	assert.Equal(t, []string{"first:a", "second:a", "third:a"}, calls)
}

func TestEmit_NoSubscribers(t *testing.T) {
	bus := New()
	assert.NoError(t, bus.Emit(context.Background(), "nobody:listens", 42))
	assert.Equal(t, 0, bus.Len("nobody:listens"))
}

func TestEmit_DefaultPayload(t *testing.T) {
	bus := New()
	var got any
	bus.Subscribe("x", func(_ context.Context, e Event) error {
		got = e.Payload
		return nil
	})

	require.NoError(t, bus.Emit(context.Background(), "x", nil))
	assert.Equal(t, Empty{}, got)
}

func TestSubscribeAll_ReceivesNameAndPayload(t *testing.T) {
	bus := New()
	var events []Event
	bus.SubscribeAll(func(_ context.Context, e Event) error {
		events = append(events, e)
		return nil
	})

	ctx := context.Background()
	require.NoError(t, bus.Emit(ctx, "one", 1))
	require.NoError(t, bus.Emit(ctx, "two", "payload"))

	require.Len(t, events, 2)
	assert.Equal(t, Event{Name: "one", Payload: 1}, events[0])
	assert.Equal(t, Event{Name: "two", Payload: "payload"}, events[1])
}

func TestSubscribe_StarIsMatchAll(t *testing.T) {
	bus := New()
	var calls []string
	bus.Subscribe(MatchAll, record(&calls, "all"))

	require.NoError(t, bus.Emit(context.Background(), "anything", nil))
	assert.Equal(t, []string{"all:anything"}, calls)
}

func TestSubscribePattern(t *testing.T) {
	bus := New()
	var calls []string
	bus.SubscribePattern(regexp.MustCompile(`^order:`), record(&calls, "order"))

	ctx := context.Background()
	require.NoError(t, bus.Emit(ctx, "order:reset", nil))
	require.NoError(t, bus.Emit(ctx, "catalog:changed", nil))
	require.NoError(t, bus.Emit(ctx, "order:count-changed", nil))

	assert.Equal(t, []string{"order:order:reset", "order:order:count-changed"}, calls)
}

func TestEmit_ReentrantDepthFirst(t *testing.T) {
	bus := New()
	var calls []string
	ctx := context.Background()

	bus.Subscribe("outer", func(ctx context.Context, e Event) error {
		calls = append(calls, "outer-1")
		return bus.Emit(ctx, "inner", nil)
	})
	bus.Subscribe("outer", record(&calls, "outer-2"))
	bus.Subscribe("inner", func(ctx context.Context, e Event) error {
		calls = append(calls, "inner-1")
		return bus.Emit(ctx, "innermost", nil)
	})
	bus.Subscribe("inner", record(&calls, "inner-2"))
	bus.Subscribe("innermost", record(&calls, "innermost"))

	require.NoError(t, bus.Emit(ctx, "outer", nil))
	assert.Equal(t, []string{
		"outer-1",
		"inner-1",
		"innermost:innermost",
		"inner-2:inner",
		"outer-2:outer",
	}, calls)
}

func TestEmit_HandlerErrorPropagates(t *testing.T) {
	bus := New()
	boom := errors.New("boom")
	var calls []string
	ctx := context.Background()

	bus.Subscribe("outer", func(ctx context.Context, e Event) error {
		return bus.Emit(ctx, "inner", nil)
	})
	bus.Subscribe("outer", record(&calls, "after"))
	bus.Subscribe("inner", func(context.Context, Event) error { return boom })

	err := bus.Emit(ctx, "outer", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "handle outer")
	assert.Contains(t, err.Error(), "handle inner")
	assert.Empty(t, calls, "handlers after a failing one must not run")
}

func TestUnsubscribe(t *testing.T) {
	bus := New()
	var calls []string
	ctx := context.Background()

	sub := bus.Subscribe("a", record(&calls, "gone"))
	bus.Subscribe("a", record(&calls, "kept"))

	assert.True(t, sub.Unsubscribe())
	assert.False(t, bus.Unsubscribe(sub), "second removal is a no-op")

	require.NoError(t, bus.Emit(ctx, "a", nil))
	assert.Equal(t, []string{"kept:a"}, calls)
	assert.False(t, Subscription{}.Unsubscribe())
}

func TestUnsubscribe_DuringEmission(t *testing.T) {
	bus := New()
	var calls []string
	var later Subscription

	bus.Subscribe("a", func(context.Context, Event) error {
		calls = append(calls, "remover")
		later.Unsubscribe()
		return nil
	})
	later = bus.Subscribe("a", record(&calls, "later"))

	require.NoError(t, bus.Emit(context.Background(), "a", nil))
	assert.Equal(t, []string{"remover"}, calls)
}

func TestSubscribe_DuringEmissionAppliesToNextEmission(t *testing.T) {
	bus := New()
	var calls []string
	ctx := context.Background()

	bus.Subscribe("a", func(context.Context, Event) error {
		if len(calls) == 0 {
			bus.Subscribe("a", record(&calls, "added"))
		}
		calls = append(calls, "base")
		return nil
	})

	require.NoError(t, bus.Emit(ctx, "a", nil))
	assert.Equal(t, []string{"base"}, calls)

	require.NoError(t, bus.Emit(ctx, "a", nil))
	assert.Equal(t, []string{"base", "base", "added:a"}, calls)
}

type greeting struct {
	Text string
}

func TestOn_TypedPayload(t *testing.T) {
	bus := New()
	var got []string
	On(bus, "greet", func(_ context.Context, g greeting) error {
		got = append(got, g.Text)
		return nil
	})

	ctx := context.Background()
	require.NoError(t, bus.Emit(ctx, "greet", greeting{Text: "value"}))
	require.NoError(t, bus.Emit(ctx, "greet", &greeting{Text: "pointer"}))
	assert.Equal(t, []string{"value", "pointer"}, got)

	err := bus.Emit(ctx, "greet", "not a greeting")
	assert.ErrorIs(t, err, ErrPayloadType)
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	bus := New()
	bus.SubscribeAll(Trace(logger))

	ctx := context.Background()
	require.NoError(t, bus.Emit(ctx, "order:reset", nil))
	require.NoError(t, bus.Emit(ctx, "order:count-changed", greeting{Text: "hi"}))

	out := buf.String()
	assert.Contains(t, out, "name=order:reset")
	assert.Contains(t, out, "name=order:count-changed")
	assert.Contains(t, out, "payload=")
}
