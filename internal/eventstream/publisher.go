// Package eventstream exports the bus traffic of a storefront session to a
// Kafka topic.
package eventstream

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-faster/errors"
	"github.com/segmentio/kafka-go"

	"github.com/Lixing-Zhang/storefront/internal/eventbus"
)

// MessageWriter is the part of *kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter creates an async writer for topic. Async writes never block
// the emission that produced them.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		Async:                  true,
	}
}

// Record is the value of every exported message
type Record struct {
	Session string          `json:"session"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
	At      time.Time       `json:"at"`
}

// Publisher writes every bus event it sees to the topic
type Publisher struct {
	writer  MessageWriter
	session string
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a publisher for one session. session keys every message so
// a session's events stay ordered within a partition.
func New(writer MessageWriter, session string, logger *slog.Logger) *Publisher {
	return &Publisher{
		writer:  writer,
		session: session,
		logger:  logger,
		now:     time.Now,
	}
}

// Handler returns the match-all handler to subscribe with Bus.SubscribeAll.
// Export failures are logged and never fail the emission.
func (p *Publisher) Handler() eventbus.Handler {
	return func(ctx context.Context, e eventbus.Event) error {
		msg, err := p.message(e)
		if err != nil {
			p.logger.ErrorContext(ctx, "failed to encode event", "name", e.Name, "error", err)
			return nil
		}
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.logger.ErrorContext(ctx, "failed to publish event", "name", e.Name, "error", err)
		}
		return nil
	}
}

func (p *Publisher) message(e eventbus.Event) (kafka.Message, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return kafka.Message{}, errors.Wrapf(err, "marshal %s payload", e.Name)
	}
	value, err := json.Marshal(Record{
		Session: p.session,
		Name:    e.Name,
		Payload: payload,
		At:      p.now().UTC(),
	})
	if err != nil {
		return kafka.Message{}, errors.Wrap(err, "marshal record")
	}
	return kafka.Message{
		Key:   []byte(p.session),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Name)},
		},
	}, nil
}

// Close flushes pending messages and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}
