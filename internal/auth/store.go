package auth

import (
	"context"

	"github.com/kashguard/go-near-auth/internal/metrics"
	"github.com/kashguard/go-near-auth/internal/near/keys"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/pkg/errors"
)

// SecretStore 底层安全存储
type SecretStore interface {
	Store(ctx context.Context, key string, value string) error
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

// CredentialStore 当前身份的密钥与账户信息。
// 清除某个值等价于写入空字符串，读取时空字符串与不存在同样视为缺失。
type CredentialStore struct {
	secrets SecretStore
	metrics *metrics.Service
}

func NewCredentialStore(secrets SecretStore, m *metrics.Service) *CredentialStore {
	return &CredentialStore{secrets: secrets, metrics: m}
}

// StoreValue 写入单个值
func (s *CredentialStore) StoreValue(ctx context.Context, key string, value string) error {
	if err := s.secrets.Store(ctx, key, value); err != nil {
		s.metrics.IncSecretStoreFailure()
		return autherr.Wrap(autherr.ErrSecretStore, err, "failed to store "+key)
	}
	return nil
}

// GetValue 读取单个值，缺失时返回空字符串
func (s *CredentialStore) GetValue(ctx context.Context, key string) (string, error) {
	v, ok, err := s.secrets.Get(ctx, key)
	if err != nil {
		s.metrics.IncSecretStoreFailure()
		return "", autherr.Wrap(autherr.ErrSecretStore, err, "failed to read "+key)
	}
	if !ok {
		return "", nil
	}
	return v, nil
}

// SaveKeyPair 成对写入公钥与私钥。任一写入失败时清空全部凭据，
// 旧身份的私钥和账户不会与新公钥混在一起。
func (s *CredentialStore) SaveKeyPair(ctx context.Context, kp *keys.KeyPair) error {
	if kp == nil {
		return errors.Wrap(autherr.ErrMissingKey, "key pair is nil")
	}

	err := s.StoreValue(ctx, KeyPublicKey, kp.PublicKeyString())
	if err == nil {
		err = s.StoreValue(ctx, KeyPrivateKey, kp.SecretString())
	}
	if err != nil {
		if rbErr := s.Clear(ctx); rbErr != nil {
			util.LogFromContext(ctx).Error().Err(rbErr).Msg("Failed to clear credentials after key pair write failed")
		}
		return err
	}
	return nil
}

// SaveAccountID 写入解析出的账户
func (s *CredentialStore) SaveAccountID(ctx context.Context, accountID string) error {
	return s.StoreValue(ctx, KeyAccountID, accountID)
}

// Identity 读取当前身份
func (s *CredentialStore) Identity(ctx context.Context) (Identity, error) {
	var id Identity
	var err error

	if id.AccountID, err = s.GetValue(ctx, KeyAccountID); err != nil {
		return Identity{}, err
	}
	if id.PublicKey, err = s.GetValue(ctx, KeyPublicKey); err != nil {
		return Identity{}, err
	}
	if id.PrivateKey, err = s.GetValue(ctx, KeyPrivateKey); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// KeyPair 由存储的私钥还原密钥对。公钥缺失或与私钥不一致时视为没有可用密钥。
func (s *CredentialStore) KeyPair(ctx context.Context) (*keys.KeyPair, error) {
	secret, err := s.GetValue(ctx, KeyPrivateKey)
	if err != nil {
		return nil, err
	}
	if secret == "" {
		return nil, errors.Wrap(autherr.ErrMissingKey, "no private key stored")
	}

	kp, err := keys.ParseKeyPair(secret)
	if err != nil {
		return nil, autherr.Wrap(autherr.ErrMissingKey, err, "stored private key is invalid")
	}

	public, err := s.GetValue(ctx, KeyPublicKey)
	if err != nil {
		return nil, err
	}
	if public == "" {
		return nil, errors.Wrap(autherr.ErrMissingKey, "private key stored without public key")
	}
	if public != kp.PublicKeyString() {
		return nil, errors.Wrap(autherr.ErrMissingKey, "stored public key does not match private key")
	}
	return kp, nil
}

// Clear 清空全部键。每个键都会尝试写入，返回第一个错误。
func (s *CredentialStore) Clear(ctx context.Context) error {
	var firstErr error
	for _, key := range AllKeys {
		if err := s.StoreValue(ctx, key, ""); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
