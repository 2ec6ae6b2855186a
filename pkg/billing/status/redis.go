package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/billingkit/pkg/billing"
)

const defaultRedisKey = "billingkit:subscription_status"

var ErrRedisStore = errors.New("status: redis store operation failed")

// RedisStore is a Store backed by Redis, for server-side deployments where
// the status cache is shared across processes. The staleness bound is the
// key's TTL.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisKey overrides the cache key, e.g. to scope it per user.
func WithRedisKey(key string) RedisStoreOption {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}

// NewRedisStore creates a RedisStore. Panics if client is nil or ttl is
// non-positive to fail fast during initialization.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration, opts ...RedisStoreOption) *RedisStore {
	if client == nil {
		panic("status: redis client is required")
	}
	if ttl <= 0 {
		panic("status: redis store TTL must be positive")
	}

	s := &RedisStore{
		client: client,
		key:    defaultRedisKey,
		ttl:    ttl,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *RedisStore) Get(ctx context.Context) (*billing.SubscriptionRecord, bool, error) {
	payload, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Join(ErrRedisStore, err)
	}

	var record billing.SubscriptionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, false, errors.Join(ErrRedisStore, fmt.Errorf("decode cached record: %w", err))
	}

	return &record, true, nil
}

func (s *RedisStore) Set(ctx context.Context, record *billing.SubscriptionRecord) error {
	if record == nil {
		return s.Invalidate(ctx)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Join(ErrRedisStore, fmt.Errorf("encode record: %w", err))
	}

	if err := s.client.Set(ctx, s.key, payload, s.ttl).Err(); err != nil {
		return errors.Join(ErrRedisStore, err)
	}
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Join(ErrRedisStore, err)
	}
	return nil
}
