package rpc

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

// Finality 区块最终性
type Finality string

const (
	FinalityFinal      Finality = "final"
	FinalityOptimistic Finality = "optimistic"
)

// BlockReference 区块定位：按 finality 或按 block_id（高度或哈希）
type BlockReference struct {
	Finality Finality    `json:"finality,omitempty"`
	BlockID  interface{} `json:"block_id,omitempty"`
}

// Final 最新已最终确认的区块
func Final() BlockReference {
	return BlockReference{Finality: FinalityFinal}
}

// BlockHeader 区块头（只保留用到的字段）
type BlockHeader struct {
	Height    uint64 `json:"height"`
	Hash      string `json:"hash"`
	PrevHash  string `json:"prev_hash"`
	EpochID   string `json:"epoch_id"`
	Timestamp uint64 `json:"timestamp"`
	ChainID   string `json:"chain_id,omitempty"`
}

// BlockView block 方法返回值
type BlockView struct {
	Author string      `json:"author"`
	Header BlockHeader `json:"header"`
}

// AccessKeyView view_access_key 返回值
type AccessKeyView struct {
	Nonce       uint64          `json:"nonce"`
	Permission  json.RawMessage `json:"permission"`
	BlockHeight uint64          `json:"block_height"`
	BlockHash   string          `json:"block_hash"`
}

// IsFullAccess 权限是否为 "FullAccess"
func (v *AccessKeyView) IsFullAccess() bool {
	var s string
	if err := json.Unmarshal(v.Permission, &s); err != nil {
		return false
	}
	return s == "FullAccess"
}

// CallResult call_function 返回值
type CallResult struct {
	Result      []byte
	Logs        []string
	BlockHeight uint64
	BlockHash   string
}

// JSON 合约返回值按 JSON 解析
func (r *CallResult) JSON() json.RawMessage {
	if len(r.Result) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(r.Result)
}

func (r *CallResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Result      []int    `json:"result"`
		Logs        []string `json:"logs"`
		BlockHeight uint64   `json:"block_height"`
		BlockHash   string   `json:"block_hash"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Result = make([]byte, len(raw.Result))
	for i, b := range raw.Result {
		if b < 0 || b > 255 {
			return errors.Errorf("call result byte %d out of range: %d", i, b)
		}
		r.Result[i] = byte(b)
	}
	r.Logs = raw.Logs
	r.BlockHeight = raw.BlockHeight
	r.BlockHash = raw.BlockHash
	return nil
}

// ExecutionStatus 交易或回执的执行状态，节点返回对象或字符串两种形式：
// {"SuccessValue": "<base64>"}、{"SuccessReceiptId": "..."}、{"Failure": {...}}、"NotStarted"、"Started"
type ExecutionStatus struct {
	SuccessValue     *string
	SuccessReceiptID string
	Failure          json.RawMessage
	Other            string
}

func (s *ExecutionStatus) UnmarshalJSON(data []byte) error {
	*s = ExecutionStatus{}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Other = str
		return nil
	}

	var obj struct {
		SuccessValue     *string         `json:"SuccessValue"`
		SuccessReceiptID string          `json:"SuccessReceiptId"`
		Failure          json.RawMessage `json:"Failure"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s.SuccessValue = obj.SuccessValue
	s.SuccessReceiptID = obj.SuccessReceiptID
	s.Failure = obj.Failure
	return nil
}

func (s ExecutionStatus) MarshalJSON() ([]byte, error) {
	switch {
	case s.SuccessValue != nil:
		return json.Marshal(map[string]string{"SuccessValue": *s.SuccessValue})
	case s.SuccessReceiptID != "":
		return json.Marshal(map[string]string{"SuccessReceiptId": s.SuccessReceiptID})
	case len(s.Failure) > 0:
		return json.Marshal(map[string]json.RawMessage{"Failure": s.Failure})
	default:
		return json.Marshal(s.Other)
	}
}

// IsSuccess 仅 SuccessValue 视为最终成功
func (s ExecutionStatus) IsSuccess() bool {
	return s.SuccessValue != nil
}

// IsFailure 是否为 Failure
func (s ExecutionStatus) IsFailure() bool {
	return len(s.Failure) > 0
}

// Value 解码 SuccessValue
func (s ExecutionStatus) Value() ([]byte, error) {
	if s.SuccessValue == nil {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(*s.SuccessValue)
}

// ExecutionOutcome 单个执行结果
type ExecutionOutcome struct {
	Logs        []string        `json:"logs"`
	ReceiptIDs  []string        `json:"receipt_ids"`
	GasBurnt    uint64          `json:"gas_burnt"`
	TokensBurnt string          `json:"tokens_burnt"`
	ExecutorID  string          `json:"executor_id"`
	Status      ExecutionStatus `json:"status"`
}

// ExecutionOutcomeWithID 带 ID 的执行结果
type ExecutionOutcomeWithID struct {
	ID        string           `json:"id"`
	BlockHash string           `json:"block_hash"`
	Outcome   ExecutionOutcome `json:"outcome"`
}

// TransactionView 交易摘要
type TransactionView struct {
	Hash       string `json:"hash"`
	SignerID   string `json:"signer_id"`
	PublicKey  string `json:"public_key"`
	Nonce      uint64 `json:"nonce"`
	ReceiverID string `json:"receiver_id"`
}

// FinalExecutionOutcome broadcast_tx_commit 返回值
type FinalExecutionOutcome struct {
	Status             ExecutionStatus          `json:"status"`
	Transaction        TransactionView          `json:"transaction"`
	TransactionOutcome ExecutionOutcomeWithID   `json:"transaction_outcome"`
	ReceiptsOutcome    []ExecutionOutcomeWithID `json:"receipts_outcome"`
}

// IsSuccess 最终状态为 SuccessValue
func (o *FinalExecutionOutcome) IsSuccess() bool {
	return o != nil && o.Status.IsSuccess()
}

// Logs 汇总交易与所有回执的日志
func (o *FinalExecutionOutcome) Logs() []string {
	var logs []string
	logs = append(logs, o.TransactionOutcome.Outcome.Logs...)
	for _, r := range o.ReceiptsOutcome {
		logs = append(logs, r.Outcome.Logs...)
	}
	return logs
}

// StatusVersion 节点版本
type StatusVersion struct {
	Version string `json:"version"`
	Build   string `json:"build"`
}

// SyncInfo 节点同步状态
type SyncInfo struct {
	LatestBlockHash   string `json:"latest_block_hash"`
	LatestBlockHeight uint64 `json:"latest_block_height"`
	LatestBlockTime   string `json:"latest_block_time"`
	Syncing           bool   `json:"syncing"`
}

// StatusResponse status 方法返回值
type StatusResponse struct {
	ChainID         string        `json:"chain_id"`
	ProtocolVersion uint32        `json:"protocol_version"`
	Version         StatusVersion `json:"version"`
	SyncInfo        SyncInfo      `json:"sync_info"`
}
