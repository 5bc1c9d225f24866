package refreshtokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces refresh-token records in a shared Redis.
const DefaultKeyPrefix = "refresh:"

// RedisStore implements Store over any go-redis client (single node,
// sentinel or cluster).
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore returns a store writing keys as prefix+token.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Put(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("redis error: %w", err)
	}
	return value, nil
}

func (s *RedisStore) SetExpire(ctx context.Context, key string, ttl time.Duration) error {
	ok, err := s.client.Expire(ctx, s.key(key), ttl).Result()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (s *RedisStore) TimeToLive(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, s.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	// -2 means the key does not exist, -1 that it has no expiry
	if ttl == -2 {
		return 0, common.ErrorNotFound
	}
	return ttl, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
