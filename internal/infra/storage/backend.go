package storage

import (
	"context"
	"time"

	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Backend 密钥存储后端
type Backend interface {
	Store(ctx context.Context, key string, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
}

// NewBackend 按配置创建存储后端
func NewBackend(cfg config.SecretStore) (Backend, error) {
	switch cfg.Backend {
	case config.SecretBackendMemory:
		log.Warn().Msg("Using in-memory secret store, credentials are lost on exit")
		return NewMemorySecretStore(), nil
	case config.SecretBackendRedis:
		client, err := NewRedisClient(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return NewRedisSecretStore(client, cfg.RedisPrefix), nil
	case config.SecretBackendFile, "":
		return NewFileSecretStore(cfg.FilePath, cfg.Passphrase)
	default:
		return nil, errors.Errorf("unknown secret store backend %q", cfg.Backend)
	}
}

// NewRedisClient 创建 Redis 客户端并确认可连接
func NewRedisClient(addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("redis address is not configured")
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "failed to ping redis")
	}

	return client, nil
}
