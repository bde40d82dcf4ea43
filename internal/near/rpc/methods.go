package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/btcsuite/btcutil/base58"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/pkg/errors"
)

// Block 查询区块
func (c *Client) Block(ctx context.Context, ref BlockReference) (*BlockView, error) {
	var block BlockView
	if err := c.call(ctx, "block", ref, &block); err != nil {
		return nil, errors.Wrap(err, "failed to call block")
	}
	return &block, nil
}

// LatestBlockHash 返回最新已最终确认区块的哈希。失败时直接返回错误，不会使用缓存或伪造的哈希。
func (c *Client) LatestBlockHash(ctx context.Context) ([32]byte, error) {
	var hash [32]byte

	block, err := c.Block(ctx, Final())
	if err != nil {
		return hash, err
	}

	raw := base58.Decode(block.Header.Hash)
	if len(raw) != len(hash) {
		return hash, errors.Wrapf(autherr.ErrSerialization, "invalid block hash %q", block.Header.Hash)
	}
	copy(hash[:], raw)
	return hash, nil
}

// ViewAccessKey 查询账户上某个访问密钥（含当前 nonce）
func (c *Client) ViewAccessKey(ctx context.Context, accountID string, publicKey string) (*AccessKeyView, error) {
	params := map[string]interface{}{
		"request_type": "view_access_key",
		"finality":     FinalityFinal,
		"account_id":   accountID,
		"public_key":   publicKey,
	}

	var view AccessKeyView
	if err := c.query(ctx, params, &view); err != nil {
		return nil, errors.Wrap(err, "failed to call view_access_key")
	}
	return &view, nil
}

// CallFunction 只读调用合约方法，args 为 JSON 字节
func (c *Client) CallFunction(ctx context.Context, contractID string, methodName string, args []byte) (*CallResult, error) {
	if len(args) == 0 {
		args = []byte("{}")
	}
	params := map[string]interface{}{
		"request_type": "call_function",
		"finality":     FinalityFinal,
		"account_id":   contractID,
		"method_name":  methodName,
		"args_base64":  base64.StdEncoding.EncodeToString(args),
	}

	var result CallResult
	if err := c.query(ctx, params, &result); err != nil {
		return nil, errors.Wrapf(err, "failed to call %s.%s", contractID, methodName)
	}
	return &result, nil
}

// BroadcastTxCommit 提交已签名交易并等待执行结果
func (c *Client) BroadcastTxCommit(ctx context.Context, signedTx []byte) (*FinalExecutionOutcome, error) {
	params := []string{base64.StdEncoding.EncodeToString(signedTx)}

	var outcome FinalExecutionOutcome
	if err := c.call(ctx, "broadcast_tx_commit", params, &outcome); err != nil {
		return nil, errors.Wrap(err, "failed to call broadcast_tx_commit")
	}
	return &outcome, nil
}

// Status 节点状态（链 ID、最新高度）
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var status StatusResponse
	if err := c.call(ctx, "status", []interface{}{}, &status); err != nil {
		return nil, errors.Wrap(err, "failed to call status")
	}
	return &status, nil
}

// query 部分节点把错误内联在 result.error 中返回，这里统一转换成 *Error
func (c *Client) query(ctx context.Context, params interface{}, out interface{}) error {
	var raw json.RawMessage
	if err := c.call(ctx, "query", params, &raw); err != nil {
		return err
	}

	var inline struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &inline); err == nil && inline.Error != "" {
		return queryError(inline.Error)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return autherr.Wrap(autherr.ErrSerialization, err, "failed to unmarshal query result")
	}
	return nil
}
