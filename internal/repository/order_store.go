package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Lixing-Zhang/storefront/internal/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderStore keeps placed orders
type OrderStore interface {
	Save(ctx context.Context, order models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
}

// InMemoryOrderStore implements OrderStore in process memory
type InMemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]models.Order
}

// NewInMemoryOrderStore creates an empty in-memory order store
func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{orders: make(map[string]models.Order)}
}

// Save stores order under its id
func (s *InMemoryOrderStore) Save(ctx context.Context, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = order
	return nil
}

// Get returns the order with id
func (s *InMemoryOrderStore) Get(ctx context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}

// RedisOrderStore implements OrderStore on redis. Orders expire after ttl;
// a zero ttl keeps them forever.
type RedisOrderStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisOrderStore creates a redis backed order store
func NewRedisOrderStore(client *redis.Client, ttl time.Duration) *RedisOrderStore {
	return &RedisOrderStore{
		client: client,
		ttl:    ttl,
	}
}

// Save stores order as JSON under its key
func (s *RedisOrderStore) Save(ctx context.Context, order models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return errors.Wrap(err, "marshal order")
	}
	if err := s.client.Set(ctx, orderKey(order.ID), data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// Get loads the order with id
func (s *RedisOrderStore) Get(ctx context.Context, id string) (*models.Order, error) {
	data, err := s.client.Get(ctx, orderKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}

	var order models.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, errors.Wrap(err, "unmarshal order")
	}
	return &order, nil
}

func orderKey(id string) string {
	return fmt.Sprintf("order:%s", id)
}
