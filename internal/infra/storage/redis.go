package storage

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisSecretStore 以 prefix+key 保存在 Redis 中，适合多个本地进程共享同一身份
type RedisSecretStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisSecretStore(client redis.UniversalClient, prefix string) *RedisSecretStore {
	return &RedisSecretStore{client: client, prefix: prefix}
}

func (s *RedisSecretStore) Store(ctx context.Context, key string, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to set %s", key)
	}
	return nil
}

func (s *RedisSecretStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "failed to get %s", key)
	}
	return v, true, nil
}

func (s *RedisSecretStore) Close() error {
	return s.client.Close()
}
