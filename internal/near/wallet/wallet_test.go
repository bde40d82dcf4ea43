package wallet_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"math"
	"net/url"
	"strings"
	"testing"

	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/near/keys"
	"github.com/kashguard/go-near-auth/internal/near/transaction"
	"github.com/kashguard/go-near-auth/internal/near/wallet"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFetcher struct {
	hash  [32]byte
	err   error
	calls int
}

func (f *staticFetcher) LatestBlockHash(context.Context) ([32]byte, error) {
	f.calls++
	return f.hash, f.err
}

func fixedKeyPair(t *testing.T, b byte) *keys.KeyPair {
	t.Helper()
	kp, err := keys.FromSeed(bytes.Repeat([]byte{b}, ed25519.SeedSize))
	require.NoError(t, err)
	return kp
}

func newBuilder(t *testing.T, fetcher *staticFetcher, networks *[]config.Network) *wallet.SignURLBuilder {
	t.Helper()
	placeholder := fixedKeyPair(t, 9)
	return wallet.NewSignURLBuilder(
		func(network config.Network) wallet.BlockHashFetcher {
			if networks != nil {
				*networks = append(*networks, network)
			}
			return fetcher
		},
		keys.GeneratorFunc(func() (*keys.KeyPair, error) { return placeholder, nil }),
		wallet.DefaultURLTemplate,
		nil,
	)
}

func TestBuildLoginURLFixedSeedScenario(t *testing.T) {
	kp := fixedKeyPair(t, 7)
	pub := kp.PublicKeyString()

	link := wallet.BuildLoginURL(config.NetworkTestnet, pub, "Ext", "v1.social08.testnet")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.True(t, u.IsAbs())
	assert.Equal(t, "wallet.testnet.near.org", u.Host)
	assert.Equal(t, "/login/", u.Path)
	assert.Contains(t, link, "contract_id=v1.social08.testnet")
	assert.Contains(t, link, "public_key="+url.QueryEscape(pub))
	assert.Contains(t, link, "public_key=ed25519%3A")
	assert.Equal(t, pub, u.Query().Get("public_key"))
	assert.Equal(t, "Ext", u.Query().Get("title"))
}

func TestLoginURL(t *testing.T) {
	tests := []struct {
		name       string
		contractID string
		expected   string
	}{
		{
			name:     "without contract",
			expected: "https://wallet.mainnet.near.org/login/?title=Ext&public_key=ed25519%3AABC",
		},
		{
			name:       "contract is lowercased",
			contractID: "Social.NEAR",
			expected:   "https://wallet.mainnet.near.org/login/?title=Ext&public_key=ed25519%3AABC&contract_id=social.near",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, wallet.LoginURL("https://wallet.mainnet.near.org/", "ed25519:ABC", "Ext", tt.contractID))
		})
	}
}

func TestLoginURLPublicKeyRoundTrip(t *testing.T) {
	for i := byte(1); i < 20; i++ {
		pub := fixedKeyPair(t, i).PublicKeyString()
		for _, network := range []config.Network{config.NetworkMainnet, config.NetworkTestnet} {
			u, err := url.Parse(wallet.BuildLoginURL(network, pub, "Ext", ""))
			require.NoError(t, err)
			assert.True(t, u.IsAbs())
			assert.Equal(t, pub, u.Query().Get("public_key"))
			assert.Empty(t, u.Query().Get("contract_id"))
		}
	}
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://wallet.mainnet.near.org", wallet.BaseURL("", ""))
	assert.Equal(t, "https://wallet.testnet.near.org", wallet.BaseURL("https://wallet.%s.near.org/", config.NetworkTestnet))
}

func TestBuildSignURL(t *testing.T) {
	fetcher := &staticFetcher{}
	for i := range fetcher.hash {
		fetcher.hash[i] = 0xab
	}
	var networks []config.Network
	b := newBuilder(t, fetcher, &networks)

	signURL, err := b.BuildSignURL(context.Background(), wallet.SignRequest{
		Network:    config.NetworkTestnet,
		AccountID:  "alice.testnet",
		ReceiverID: "v1.social08.testnet",
		MethodName: "grant_write_permission",
		Args: map[string]interface{}{
			"public_key": "ed25519:abc",
			"keys":       []string{"alice.testnet"},
		},
		Deposit:     wallet.DepositYocto("1"),
		Gas:         30_000_000_000_000,
		Meta:        "grant",
		CallbackURL: "vscode://near.ext/callback?x=1",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(signURL, "https://wallet.testnet.near.org/sign?transactions="))
	assert.Equal(t, []config.Network{config.NetworkTestnet}, networks)
	assert.Equal(t, 1, fetcher.calls)

	txs, q, err := wallet.DecodeSignURL(signURL)
	require.NoError(t, err)
	assert.Equal(t, "vscode://near.ext/callback?x=1", q.Get("callbackUrl"))
	assert.Equal(t, "grant", q.Get("meta"))

	require.Len(t, txs, 1)
	tx := txs[0]
	assert.Equal(t, "alice.testnet", tx.SignerID)
	assert.Equal(t, "v1.social08.testnet", tx.ReceiverID)
	assert.Equal(t, transaction.PlaceholderNonce, tx.Nonce)
	assert.Equal(t, fetcher.hash, tx.BlockHash)
	assert.Equal(t, fixedKeyPair(t, 9).Public(), tx.PublicKey)

	require.Len(t, tx.Actions, 1)
	fc, ok := tx.Actions[0].(*transaction.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "grant_write_permission", fc.MethodName)
	assert.Equal(t, uint64(30_000_000_000_000), fc.Gas)
	assert.Equal(t, "1", fc.Deposit.Dec())

	var args map[string]interface{}
	require.NoError(t, json.Unmarshal(fc.Args, &args))
	assert.Equal(t, "ed25519:abc", args["public_key"])
}

func TestBuildSignURLDefaults(t *testing.T) {
	fetcher := &staticFetcher{}
	var networks []config.Network
	b := newBuilder(t, fetcher, &networks)

	signURL, err := b.BuildSignURL(context.Background(), wallet.SignRequest{
		AccountID:  "alice.near",
		ReceiverID: "social.near",
		MethodName: "set",
		Args:       map[string]string{"k": "v"},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(signURL, "https://wallet.mainnet.near.org/sign?"))
	assert.True(t, strings.HasSuffix(signURL, "&callbackUrl="))
	assert.NotContains(t, signURL, "meta=")
	assert.Equal(t, []config.Network{config.NetworkMainnet}, networks)

	txs, q, err := wallet.DecodeSignURL(signURL)
	require.NoError(t, err)
	assert.Equal(t, "", q.Get("callbackUrl"))
	fc := txs[0].Actions[0].(*transaction.FunctionCall)
	assert.Equal(t, wallet.DefaultGas, fc.Gas)
	assert.True(t, fc.Deposit.IsZero())
}

func TestDeposit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		deposit  wallet.Deposit
		expected string
	}{
		{name: "yocto verbatim", deposit: wallet.DepositYocto("1"), expected: "1"},
		{name: "large yocto", deposit: wallet.DepositYocto("1000000000000000000000000"), expected: "1000000000000000000000000"},
		{name: "near number", deposit: wallet.DepositNear(0.1), expected: "100000000000000000000000"},
		{name: "near whole", deposit: wallet.DepositNear(2), expected: "2000000000000000000000000"},
		{name: "near string", deposit: wallet.DepositNearString("1.5"), expected: "1500000000000000000000000"},
		{name: "empty", deposit: wallet.Deposit{}, expected: "0"},
		{name: "malformed yocto", deposit: wallet.DepositYocto("12abc"), expected: "0"},
		{name: "negative near", deposit: wallet.DepositNear(-1), expected: "0"},
		{name: "near NaN", deposit: wallet.DepositNear(math.NaN()), expected: "0"},
		{name: "near +Inf", deposit: wallet.DepositNear(math.Inf(1)), expected: "0"},
		{name: "near -Inf", deposit: wallet.DepositNear(math.Inf(-1)), expected: "0"},
		{name: "malformed near string", deposit: wallet.DepositNearString("lots"), expected: "0"},
		{name: "yocto above u128", deposit: wallet.DepositYocto("340282366920938463463374607431768211456"), expected: "0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.deposit.Yocto(ctx).Dec())
		})
	}
}

func TestBuildSignURLBlockHashFailure(t *testing.T) {
	fetcher := &staticFetcher{err: errors.Wrap(autherr.ErrNetworkUnavailable, "dial tcp")}
	b := newBuilder(t, fetcher, nil)

	_, err := b.BuildSignURL(context.Background(), wallet.SignRequest{
		AccountID: "alice.near", ReceiverID: "social.near", MethodName: "set",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, autherr.ErrNetworkUnavailable)
}

func TestBuildSignURLBadArgs(t *testing.T) {
	fetcher := &staticFetcher{}
	b := newBuilder(t, fetcher, nil)

	_, err := b.BuildSignURL(context.Background(), wallet.SignRequest{
		AccountID: "alice.near", ReceiverID: "social.near", MethodName: "set",
		Args: map[string]interface{}{"bad": make(chan int)},
	})
	assert.ErrorIs(t, err, autherr.ErrSerialization)
	assert.Equal(t, 0, fetcher.calls)
}

func TestBuildMultiSignURL(t *testing.T) {
	b := newBuilder(t, &staticFetcher{}, nil)
	kp := fixedKeyPair(t, 1)

	var hash [32]byte
	txs := []*transaction.Transaction{
		transaction.BuildUnsigned("a.near", kp.Public(), "b.near", nil, hash),
		transaction.BuildUnsigned("a.near", kp.Public(), "c.near", nil, hash),
	}

	signURL, err := b.BuildMultiSignURL(context.Background(), config.NetworkTestnet, "https://example.com/cb", "", txs)
	require.NoError(t, err)

	u, err := url.Parse(signURL)
	require.NoError(t, err)
	assert.Len(t, strings.Split(u.Query().Get("transactions"), ","), 2)

	decoded, _, err := wallet.DecodeSignURL(signURL)
	require.NoError(t, err)
	assert.Equal(t, txs, decoded)

	_, err = b.BuildMultiSignURL(context.Background(), config.NetworkTestnet, "", "", nil)
	assert.Error(t, err)
}
