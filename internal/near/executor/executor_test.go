package executor_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/holiman/uint256"
	"github.com/kashguard/go-near-auth/internal/auth"
	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/infra/storage"
	"github.com/kashguard/go-near-auth/internal/near/executor"
	"github.com/kashguard/go-near-auth/internal/near/keys"
	"github.com/kashguard/go-near-auth/internal/near/rpc"
	"github.com/kashguard/go-near-auth/internal/near/transaction"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	t         *testing.T
	nonce     uint64
	blockHash [32]byte
	status    interface{}
	viewBytes []int

	broadcasted []*transaction.SignedTransaction
	networks    []config.Network
}

func (n *fakeNode) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string          `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	require.NoError(n.t, json.NewDecoder(r.Body).Decode(&req))

	var result interface{}
	switch req.Method {
	case "block":
		result = map[string]interface{}{"header": map[string]interface{}{"height": 1, "hash": base58.Encode(n.blockHash[:])}}
	case "query":
		var q map[string]string
		require.NoError(n.t, json.Unmarshal(req.Params, &q))
		switch q["request_type"] {
		case "view_access_key":
			result = map[string]interface{}{"nonce": n.nonce, "permission": "FullAccess", "block_height": 1, "block_hash": "h"}
		case "call_function":
			result = map[string]interface{}{"result": n.viewBytes, "logs": []string{}, "block_height": 1, "block_hash": "h"}
		}
	case "broadcast_tx_commit":
		var params []string
		require.NoError(n.t, json.Unmarshal(req.Params, &params))
		raw, err := base64.StdEncoding.DecodeString(params[0])
		require.NoError(n.t, err)
		stx, err := transaction.DeserializeSigned(raw)
		require.NoError(n.t, err)
		n.broadcasted = append(n.broadcasted, stx)
		result = map[string]interface{}{
			"status":              n.status,
			"transaction":         map[string]interface{}{"hash": "6zgh2u9DqHHiXzdy9ouTP7oGky2T4nugqzqt9wJZwNFm"},
			"transaction_outcome": map[string]interface{}{"id": "6zgh", "outcome": map[string]interface{}{"logs": []string{}, "status": map[string]string{"SuccessReceiptId": "r1"}}},
			"receipts_outcome":    []interface{}{map[string]interface{}{"id": "r1", "outcome": map[string]interface{}{"logs": []string{"saved"}, "status": n.status}}},
		}
	}

	w.Header().Set("Content-Type", "application/json")
	require.NoError(n.t, json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": result}))
}

func newExecutor(t *testing.T, node *fakeNode) (*executor.Executor, *auth.CredentialStore, *keys.KeyPair) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(node.handle))
	t.Cleanup(srv.Close)
	client := rpc.NewClient(srv.URL, time.Second)

	kp, err := keys.FromSeed(bytes.Repeat([]byte{5}, ed25519.SeedSize))
	require.NoError(t, err)
	store := auth.NewCredentialStore(storage.NewMemorySecretStore(), nil)

	chains := func(network config.Network) executor.Chain {
		node.networks = append(node.networks, network)
		return client
	}
	return executor.NewExecutor(chains, store, nil), store, kp
}

func login(t *testing.T, store *auth.CredentialStore, kp *keys.KeyPair, accountID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SaveKeyPair(ctx, kp))
	require.NoError(t, store.SaveAccountID(ctx, accountID))
}

func TestCall(t *testing.T) {
	node := &fakeNode{t: t, nonce: 85, blockHash: [32]byte{9, 9, 9}, status: map[string]string{"SuccessValue": ""}}
	exec, store, kp := newExecutor(t, node)
	login(t, store, kp, "alice.testnet")

	outcome, err := exec.Call(context.Background(), executor.CallRequest{
		Network:    config.NetworkTestnet,
		ContractID: "v1.social08.testnet",
		MethodName: "set",
		Args:       map[string]string{"k": "v"},
	})
	require.NoError(t, err)
	assert.True(t, outcome.IsSuccess())
	assert.Equal(t, "6zgh2u9DqHHiXzdy9ouTP7oGky2T4nugqzqt9wJZwNFm", outcome.TransactionHash)
	assert.Equal(t, []string{"saved"}, outcome.Logs)
	assert.Equal(t, []config.Network{config.NetworkTestnet}, node.networks)

	require.Len(t, node.broadcasted, 1)
	stx := node.broadcasted[0]
	assert.True(t, stx.Verify())

	tx := stx.Transaction
	assert.Equal(t, "alice.testnet", tx.SignerID)
	assert.Equal(t, "v1.social08.testnet", tx.ReceiverID)
	assert.Equal(t, uint64(86), tx.Nonce)
	assert.Equal(t, [32]byte{9, 9, 9}, tx.BlockHash)
	assert.Equal(t, kp.PublicKeyString(), tx.PublicKey.String())

	require.Len(t, tx.Actions, 1)
	fc, ok := tx.Actions[0].(*transaction.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "set", fc.MethodName)
	assert.JSONEq(t, `{"k":"v"}`, string(fc.Args))
	assert.Equal(t, executor.DefaultGas, fc.Gas)
	assert.True(t, fc.Deposit.IsZero())
}

func TestCallExplicitAccountAndDeposit(t *testing.T) {
	node := &fakeNode{t: t, nonce: 1, status: map[string]string{"SuccessValue": "dHJ1ZQ=="}}
	exec, store, kp := newExecutor(t, node)
	require.NoError(t, store.SaveKeyPair(context.Background(), kp))

	outcome, err := exec.Call(context.Background(), executor.CallRequest{
		AccountID:  "bob.near",
		ContractID: "social.near",
		MethodName: "storage_deposit",
		Gas:        100_000_000_000_000,
		Deposit:    uint256.NewInt(1000),
	})
	require.NoError(t, err)

	value, err := outcome.Value()
	require.NoError(t, err)
	assert.Equal(t, "true", string(value))
	assert.Equal(t, []config.Network{config.NetworkMainnet}, node.networks)

	fc := node.broadcasted[0].Transaction.Actions[0].(*transaction.FunctionCall)
	assert.Equal(t, uint64(100_000_000_000_000), fc.Gas)
	assert.Equal(t, uint64(1000), fc.Deposit.Uint64())
	assert.Equal(t, "bob.near", node.broadcasted[0].Transaction.SignerID)
}

func TestCallFailureStatus(t *testing.T) {
	node := &fakeNode{t: t, nonce: 3, status: map[string]interface{}{
		"Failure": map[string]interface{}{"ActionError": map[string]interface{}{"index": 0, "kind": map[string]interface{}{"FunctionCallError": "panic"}}},
	}}
	exec, store, kp := newExecutor(t, node)
	login(t, store, kp, "alice.near")

	outcome, err := exec.Call(context.Background(), executor.CallRequest{ContractID: "social.near", MethodName: "set"})
	require.Error(t, err)
	assert.ErrorIs(t, err, autherr.ErrTransactionExecution)
	require.NotNil(t, outcome)
	assert.False(t, outcome.IsSuccess())
	assert.True(t, outcome.Status.IsFailure())
}

func TestCallStartedIsNotSuccess(t *testing.T) {
	node := &fakeNode{t: t, status: "Started"}
	exec, store, kp := newExecutor(t, node)
	login(t, store, kp, "alice.near")

	outcome, err := exec.Call(context.Background(), executor.CallRequest{ContractID: "social.near", MethodName: "set"})
	assert.ErrorIs(t, err, autherr.ErrTransactionExecution)
	assert.Equal(t, "Started", outcome.Status.Other)
}

func TestCallWithoutCredentials(t *testing.T) {
	node := &fakeNode{t: t}
	exec, store, kp := newExecutor(t, node)

	_, err := exec.Call(context.Background(), executor.CallRequest{ContractID: "social.near", MethodName: "set"})
	assert.ErrorIs(t, err, autherr.ErrMissingKey)

	require.NoError(t, store.SaveKeyPair(context.Background(), kp))
	_, err = exec.Call(context.Background(), executor.CallRequest{ContractID: "social.near", MethodName: "set"})
	assert.ErrorIs(t, err, autherr.ErrAccountNotFound)
	assert.Empty(t, node.broadcasted)
}

func TestView(t *testing.T) {
	payload := []byte(`{"alice.near":{"profile":{"name":"Alice"}}}`)
	ints := make([]int, len(payload))
	for i, b := range payload {
		ints[i] = int(b)
	}
	node := &fakeNode{t: t, viewBytes: ints}
	exec, _, _ := newExecutor(t, node)

	res, err := exec.View(context.Background(), config.NetworkMainnet, "social.near", "get", map[string][]string{"keys": {"alice.near/profile/**"}})
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(res))
}

func TestViewNonJSONResult(t *testing.T) {
	node := &fakeNode{t: t, viewBytes: []int{0xff, 0x00}}
	exec, _, _ := newExecutor(t, node)

	_, err := exec.View(context.Background(), config.NetworkMainnet, "social.near", "get", nil)
	assert.ErrorIs(t, err, autherr.ErrSerialization)
}
