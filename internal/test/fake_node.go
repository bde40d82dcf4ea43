package test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/kashguard/go-near-auth/internal/near/transaction"
	"github.com/stretchr/testify/require"
)

// FakeNode 最小化的 NEAR JSON-RPC 节点，支持 block、query、broadcast_tx_commit 和 status
type FakeNode struct {
	*httptest.Server

	mu          sync.Mutex
	t           *testing.T
	BlockHash   [32]byte
	Nonce       uint64
	Status      interface{}
	ViewResult  []byte
	ChainID     string
	Broadcasted []*transaction.SignedTransaction
	Methods     []string
}

func NewFakeNode(t *testing.T) *FakeNode {
	t.Helper()

	n := &FakeNode{
		t:       t,
		Status:  map[string]string{"SuccessValue": ""},
		ChainID: "testnet",
	}
	for i := range n.BlockHash {
		n.BlockHash[i] = byte(i + 1)
	}
	n.Server = httptest.NewServer(http.HandlerFunc(n.handle))
	t.Cleanup(n.Server.Close)
	return n
}

// URLTemplate 可直接用作 RPC 地址模板，网络名出现在路径中
func (n *FakeNode) URLTemplate() string {
	return n.Server.URL + "/%s"
}

func (n *FakeNode) handle(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var req struct {
		ID     string          `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	require.NoError(n.t, json.NewDecoder(r.Body).Decode(&req))
	n.Methods = append(n.Methods, req.Method)

	var result interface{}
	switch req.Method {
	case "block":
		result = map[string]interface{}{"header": map[string]interface{}{"height": 100, "hash": base58.Encode(n.BlockHash[:])}}
	case "status":
		result = map[string]interface{}{"chain_id": n.ChainID, "protocol_version": 63, "sync_info": map[string]interface{}{"latest_block_height": 100}}
	case "query":
		var q map[string]interface{}
		require.NoError(n.t, json.Unmarshal(req.Params, &q))
		switch q["request_type"] {
		case "view_access_key":
			result = map[string]interface{}{"nonce": n.Nonce, "permission": "FullAccess", "block_height": 100, "block_hash": "h"}
		case "call_function":
			ints := make([]int, len(n.ViewResult))
			for i, b := range n.ViewResult {
				ints[i] = int(b)
			}
			result = map[string]interface{}{"result": ints, "logs": []string{}, "block_height": 100, "block_hash": "h"}
		}
	case "broadcast_tx_commit":
		var params []string
		require.NoError(n.t, json.Unmarshal(req.Params, &params))
		raw, err := base64.StdEncoding.DecodeString(params[0])
		require.NoError(n.t, err)
		stx, err := transaction.DeserializeSigned(raw)
		require.NoError(n.t, err)
		n.Broadcasted = append(n.Broadcasted, stx)
		result = map[string]interface{}{
			"status":              n.Status,
			"transaction":         map[string]interface{}{"hash": "EdYbsW6cQJ6RhYVKR1ExZHsn6mgt9zTHi1s2MgvoT4Q5", "signer_id": stx.Transaction.SignerID},
			"transaction_outcome": map[string]interface{}{"id": "EdYb", "outcome": map[string]interface{}{"logs": []string{}, "status": map[string]string{"SuccessReceiptId": "r1"}}},
			"receipts_outcome":    []interface{}{},
		}
	}

	w.Header().Set("Content-Type", "application/json")
	require.NoError(n.t, json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": result}))
}
