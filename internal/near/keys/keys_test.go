package keys_test

import (
	"bytes"
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/kashguard/go-near-auth/internal/near/keys"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSeed() []byte {
	return bytes.Repeat([]byte{7}, ed25519.SeedSize)
}

func TestGenerate(t *testing.T) {
	a, err := keys.Generate()
	require.NoError(t, err)
	b, err := keys.Generate()
	require.NoError(t, err)

	assert.Len(t, a.PublicKey, ed25519.PublicKeySize)
	assert.Len(t, a.PrivateKey, ed25519.PrivateKeySize)
	assert.NotEqual(t, a.PublicKeyString(), b.PublicKeyString())
}

func TestGenerateFromBrokenRandomness(t *testing.T) {
	_, err := keys.GenerateFrom(bytes.NewReader([]byte{1, 2, 3}))
	require.Error(t, err)
	assert.ErrorIs(t, err, autherr.ErrKeyGeneration)
}

func TestFromSeedIsDeterministic(t *testing.T) {
	a, err := keys.FromSeed(fixedSeed())
	require.NoError(t, err)
	b, err := keys.FromSeed(fixedSeed())
	require.NoError(t, err)

	assert.Equal(t, a.PublicKeyString(), b.PublicKeyString())
	assert.True(t, strings.HasPrefix(a.PublicKeyString(), "ed25519:"))

	_, err = keys.FromSeed([]byte{1})
	assert.Error(t, err)
}

func TestSecretStringRoundTrip(t *testing.T) {
	kp, err := keys.FromSeed(fixedSeed())
	require.NoError(t, err)

	parsed, err := keys.ParseKeyPair(kp.SecretString())
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, parsed.PublicKey)
	assert.Equal(t, kp.PrivateKey, parsed.PrivateKey)

	_, err = keys.ParseKeyPair("")
	assert.Error(t, err)
	_, err = keys.ParseKeyPair("secp256k1:abc")
	assert.Error(t, err)
	_, err = keys.ParseKeyPair("ed25519:abc")
	assert.Error(t, err)
}

func TestParsePublicKey(t *testing.T) {
	kp, err := keys.FromSeed(fixedSeed())
	require.NoError(t, err)

	pk, err := keys.ParsePublicKey(kp.PublicKeyString())
	require.NoError(t, err)
	assert.Equal(t, kp.Public(), pk)
	assert.Equal(t, keys.KeyTypeED25519, pk.Type)
	assert.False(t, pk.IsZero())

	bare, err := keys.ParsePublicKey(strings.TrimPrefix(kp.PublicKeyString(), "ed25519:"))
	require.NoError(t, err)
	assert.Equal(t, pk, bare)

	_, err = keys.ParsePublicKey("ed25519:")
	assert.Error(t, err)
	_, err = keys.ParsePublicKey("ed25519:111")
	assert.Error(t, err)
}

func TestSignVerify(t *testing.T) {
	kp, err := keys.FromSeed(fixedSeed())
	require.NoError(t, err)

	sig := kp.Sign([]byte("hello"))
	assert.True(t, keys.Verify(kp.Public(), []byte("hello"), sig))
	assert.False(t, keys.Verify(kp.Public(), []byte("hellO"), sig))
}

func TestRandomGenerator(t *testing.T) {
	g := keys.NewRandomGenerator()
	kp, err := g.Generate()
	require.NoError(t, err)
	assert.NotNil(t, kp)

	var fn keys.Generator = keys.GeneratorFunc(func() (*keys.KeyPair, error) {
		return keys.FromSeed(fixedSeed())
	})
	fixed, err := fn.Generate()
	require.NoError(t, err)
	assert.Equal(t, "ed25519:", fixed.PublicKeyString()[:8])
}
