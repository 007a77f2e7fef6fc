package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/rendis/rentscout/internal/model"
)

const redisKeyPrefix = "rentscout:geocode:"

// RedisConfig holds connection parameters for the Redis cache store.
type RedisConfig struct {
	Addrs    []string
	Password string
	DB       int
}

// RedisStore is a CacheStore backed by Redis; expiry is delegated to SET EX.
type RedisStore struct {
	client rueidis.Client
}

var _ CacheStore = (*RedisStore)(nil)

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("redis addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating redis client: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient wraps an existing client (used with rueidis mocks).
func NewRedisStoreWithClient(client rueidis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (model.Coordinate, bool, error) {
	cmd := s.client.B().Get().Key(redisKeyPrefix + key).Build()
	data, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return model.Coordinate{}, false, nil
		}
		return model.Coordinate{}, false, fmt.Errorf("redis get: %w", err)
	}

	var c model.Coordinate
	if err := json.Unmarshal(data, &c); err != nil {
		return model.Coordinate{}, false, fmt.Errorf("decoding cached coordinate: %w", err)
	}
	return c, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, c model.Coordinate, ttl time.Duration) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding coordinate: %w", err)
	}
	cmd := s.client.B().Set().Key(redisKeyPrefix + key).Value(string(data)).Ex(ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() {
	s.client.Close()
}
