package auth_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/kashguard/go-near-auth/internal/auth"
	"github.com/kashguard/go-near-auth/internal/infra/storage"
	"github.com/kashguard/go-near-auth/internal/near/keys"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore 对指定键的写入返回错误
type flakyStore struct {
	*storage.MemorySecretStore
	failStore map[string]bool
	failGet   bool
}

func (s *flakyStore) Store(ctx context.Context, key string, value string) error {
	if s.failStore[key] {
		return errors.New("keychain locked")
	}
	return s.MemorySecretStore.Store(ctx, key, value)
}

func (s *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failGet {
		return "", false, errors.New("keychain locked")
	}
	return s.MemorySecretStore.Get(ctx, key)
}

func testKeyPair(t *testing.T) *keys.KeyPair {
	t.Helper()
	kp, err := keys.FromSeed(bytes.Repeat([]byte{3}, ed25519.SeedSize))
	require.NoError(t, err)
	return kp
}

func TestSaveKeyPairAndIdentity(t *testing.T) {
	ctx := context.Background()
	store := auth.NewCredentialStore(storage.NewMemorySecretStore(), nil)
	kp := testKeyPair(t)

	id, err := store.Identity(ctx)
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{}, id)
	assert.False(t, id.HasKeyPair())

	require.NoError(t, store.SaveKeyPair(ctx, kp))
	require.NoError(t, store.SaveAccountID(ctx, "alice.near"))

	id, err = store.Identity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice.near", id.AccountID)
	assert.Equal(t, kp.PublicKeyString(), id.PublicKey)
	assert.Equal(t, kp.SecretString(), id.PrivateKey)
	assert.True(t, id.IsAuthenticated())

	loaded, err := store.KeyPair(ctx)
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKeyString(), loaded.PublicKeyString())
}

func TestSaveKeyPairRollsBackPublicKey(t *testing.T) {
	ctx := context.Background()
	backend := &flakyStore{
		MemorySecretStore: storage.NewMemorySecretStore(),
		failStore:         map[string]bool{auth.KeyPrivateKey: true},
	}
	store := auth.NewCredentialStore(backend, nil)

	err := store.SaveKeyPair(ctx, testKeyPair(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, autherr.ErrSecretStore)

	id, err := store.Identity(ctx)
	require.NoError(t, err)
	assert.Empty(t, id.PublicKey)
	assert.Empty(t, id.PrivateKey)
}

func TestSaveKeyPairFailureClearsPreviousIdentity(t *testing.T) {
	ctx := context.Background()
	backend := &flakyStore{MemorySecretStore: storage.NewMemorySecretStore()}
	store := auth.NewCredentialStore(backend, nil)

	previous := testKeyPair(t)
	require.NoError(t, store.SaveKeyPair(ctx, previous))
	require.NoError(t, store.SaveAccountID(ctx, "alice.near"))

	next, err := keys.FromSeed(bytes.Repeat([]byte{5}, ed25519.SeedSize))
	require.NoError(t, err)

	// 私钥写入（包括清空）全部失败，旧私钥留在后端中
	backend.failStore = map[string]bool{auth.KeyPrivateKey: true}
	err = store.SaveKeyPair(ctx, next)
	assert.ErrorIs(t, err, autherr.ErrSecretStore)

	id, err := store.Identity(ctx)
	require.NoError(t, err)
	assert.Empty(t, id.PublicKey)
	assert.Empty(t, id.AccountID)
	assert.False(t, id.HasKeyPair())

	_, err = store.KeyPair(ctx)
	assert.ErrorIs(t, err, autherr.ErrMissingKey)

	// 后端恢复后可以正常清空
	backend.failStore = nil
	require.NoError(t, store.Clear(ctx))
	id, err = store.Identity(ctx)
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{}, id)
}

func TestGetValueFailure(t *testing.T) {
	backend := &flakyStore{MemorySecretStore: storage.NewMemorySecretStore(), failGet: true}
	store := auth.NewCredentialStore(backend, nil)

	_, err := store.GetValue(context.Background(), auth.KeyAccountID)
	assert.ErrorIs(t, err, autherr.ErrSecretStore)
	assert.True(t, autherr.Retryable(err))
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := auth.NewCredentialStore(storage.NewMemorySecretStore(), nil)
	require.NoError(t, store.SaveKeyPair(ctx, testKeyPair(t)))
	require.NoError(t, store.SaveAccountID(ctx, "alice.near"))

	require.NoError(t, store.Clear(ctx))
	once, err := store.Identity(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx))
	twice, err := store.Identity(ctx)
	require.NoError(t, err)

	assert.Equal(t, auth.Identity{}, once)
	assert.Equal(t, once, twice)

	for _, key := range auth.AllKeys {
		v, err := store.GetValue(ctx, key)
		require.NoError(t, err)
		assert.Empty(t, v, key)
	}
}

func TestClearContinuesAfterFailure(t *testing.T) {
	ctx := context.Background()
	backend := &flakyStore{MemorySecretStore: storage.NewMemorySecretStore()}
	store := auth.NewCredentialStore(backend, nil)
	require.NoError(t, store.SaveKeyPair(ctx, testKeyPair(t)))
	require.NoError(t, store.SaveAccountID(ctx, "alice.near"))

	backend.failStore = map[string]bool{auth.KeyPublicKey: true}
	err := store.Clear(ctx)
	assert.ErrorIs(t, err, autherr.ErrSecretStore)

	v, err := store.GetValue(ctx, auth.KeyAccountID)
	require.NoError(t, err)
	assert.Empty(t, v)
	v, err = store.GetValue(ctx, auth.KeyPrivateKey)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestKeyPairMissingOrInvalid(t *testing.T) {
	ctx := context.Background()
	store := auth.NewCredentialStore(storage.NewMemorySecretStore(), nil)

	_, err := store.KeyPair(ctx)
	assert.ErrorIs(t, err, autherr.ErrMissingKey)

	require.NoError(t, store.StoreValue(ctx, auth.KeyPrivateKey, "ed25519:not-base58-0OIl"))
	_, err = store.KeyPair(ctx)
	assert.ErrorIs(t, err, autherr.ErrMissingKey)

	// 只有私钥没有公钥
	require.NoError(t, store.StoreValue(ctx, auth.KeyPrivateKey, testKeyPair(t).SecretString()))
	_, err = store.KeyPair(ctx)
	assert.ErrorIs(t, err, autherr.ErrMissingKey)

	other, err := keys.FromSeed(bytes.Repeat([]byte{4}, ed25519.SeedSize))
	require.NoError(t, err)
	require.NoError(t, store.StoreValue(ctx, auth.KeyPrivateKey, testKeyPair(t).SecretString()))
	require.NoError(t, store.StoreValue(ctx, auth.KeyPublicKey, other.PublicKeyString()))
	_, err = store.KeyPair(ctx)
	assert.ErrorIs(t, err, autherr.ErrMissingKey)
}
