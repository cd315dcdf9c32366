package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
)

// RedisPartitionStorage keeps a partition as a Redis set. Whole-set writes run in a MULTI block
// and deltas use SADD/SREM, so concurrent sessions merge instead of overwriting each other.
type RedisPartitionStorage struct {
	client *redis.Client
	prefix string
}

func NewRedisPartitionStorage(client *redis.Client, prefix string) *RedisPartitionStorage {
	return &RedisPartitionStorage{client: client, prefix: prefix}
}

func (s *RedisPartitionStorage) key(key string) string {
	return s.prefix + key
}

// Get returns the sorted members of key
func (s *RedisPartitionStorage) Get(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.key(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis partition get %q: %w", key, err)
	}
	slices.Sort(members)
	return members, nil
}

// Set atomically replaces the whole set
func (s *RedisPartitionStorage) Set(ctx context.Context, key string, members []string) error {
	k := s.key(key)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		if len(members) > 0 {
			pipe.SAdd(ctx, k, toAny(members)...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis partition set %q: %w", key, err)
	}
	return nil
}

func (s *RedisPartitionStorage) Add(ctx context.Context, key string, members []string) error {
	if len(members) == 0 {
		return nil
	}
	if err := s.client.SAdd(ctx, s.key(key), toAny(members)...).Err(); err != nil {
		return fmt.Errorf("redis partition add %q: %w", key, err)
	}
	return nil
}

func (s *RedisPartitionStorage) Remove(ctx context.Context, key string, members []string) error {
	if len(members) == 0 {
		return nil
	}
	if err := s.client.SRem(ctx, s.key(key), toAny(members)...).Err(); err != nil {
		return fmt.Errorf("redis partition remove %q: %w", key, err)
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
