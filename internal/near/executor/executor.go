// Package executor 使用本地存储的访问密钥直接签名并提交合约调用，同时提供只读调用。
package executor

import (
	"context"
	"encoding/json"

	"github.com/holiman/uint256"
	"github.com/kashguard/go-near-auth/internal/auth"
	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/metrics"
	"github.com/kashguard/go-near-auth/internal/near/amount"
	"github.com/kashguard/go-near-auth/internal/near/rpc"
	"github.com/kashguard/go-near-auth/internal/near/transaction"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/pkg/errors"
)

// DefaultGas 未指定 gas 时使用 30 Tgas
const DefaultGas uint64 = 30_000_000_000_000

// Chain 执行器用到的链上接口，*rpc.Client 实现了它
type Chain interface {
	ViewAccessKey(ctx context.Context, accountID string, publicKey string) (*rpc.AccessKeyView, error)
	LatestBlockHash(ctx context.Context) ([32]byte, error)
	BroadcastTxCommit(ctx context.Context, signedTx []byte) (*rpc.FinalExecutionOutcome, error)
	CallFunction(ctx context.Context, contractID string, methodName string, args []byte) (*rpc.CallResult, error)
}

// ChainForNetwork 按网络返回链上接口
type ChainForNetwork func(network config.Network) Chain

// CallRequest 一次签名调用。AccountID 为空时使用已登录账户。
type CallRequest struct {
	Network    config.Network
	AccountID  string
	ContractID string
	MethodName string
	Args       interface{}
	Gas        uint64
	Deposit    *uint256.Int
}

// Outcome 交易执行结果
type Outcome struct {
	TransactionHash string                     `json:"transactionHash"`
	Status          rpc.ExecutionStatus        `json:"status"`
	Logs            []string                   `json:"logs"`
	Final           *rpc.FinalExecutionOutcome `json:"-"`
}

// IsSuccess 仅当状态为 SuccessValue 时成功
func (o *Outcome) IsSuccess() bool {
	return o != nil && o.Status.IsSuccess()
}

// Value 解码 SuccessValue
func (o *Outcome) Value() ([]byte, error) {
	return o.Status.Value()
}

type Executor struct {
	chains  ChainForNetwork
	store   *auth.CredentialStore
	metrics *metrics.Service
}

func NewExecutor(chains ChainForNetwork, store *auth.CredentialStore, m *metrics.Service) *Executor {
	return &Executor{chains: chains, store: store, metrics: m}
}

// RPCChains 使用共享的 RPC 客户端
func RPCChains(clients *rpc.Clients) ChainForNetwork {
	return func(network config.Network) Chain {
		return clients.For(network)
	}
}

// Call 使用存储的密钥签名并提交一笔 FunctionCall 交易。
// 链上执行失败时同时返回结果和 ErrTransactionExecution。
func (e *Executor) Call(ctx context.Context, req CallRequest) (*Outcome, error) {
	network := req.Network.OrDefault()
	log := util.LogFromContext(ctx).With().
		Str("network", network.String()).
		Str("contract_id", req.ContractID).
		Str("method", req.MethodName).
		Logger()

	kp, err := e.store.KeyPair(ctx)
	if err != nil {
		return nil, err
	}

	accountID := req.AccountID
	if accountID == "" {
		accountID, err = e.store.GetValue(ctx, auth.KeyAccountID)
		if err != nil {
			return nil, err
		}
		if accountID == "" {
			return nil, errors.Wrap(autherr.ErrAccountNotFound, "no account is logged in")
		}
	}

	gas := req.Gas
	if gas == 0 {
		gas = DefaultGas
	}
	deposit := req.Deposit
	if deposit == nil {
		deposit = amount.Zero()
	}

	action, err := transaction.NewFunctionCall(req.MethodName, req.Args, gas, deposit)
	if err != nil {
		return nil, err
	}

	chain := e.chains(network)
	publicKey := kp.Public()

	accessKey, err := chain.ViewAccessKey(ctx, accountID, publicKey.String())
	if err != nil {
		log.Warn().Err(err).Str("account_id", accountID).Msg("Failed to load access key nonce")
		return nil, err
	}
	blockHash, err := chain.LatestBlockHash(ctx)
	if err != nil {
		return nil, err
	}

	tx := transaction.Build(accountID, publicKey, req.ContractID, accessKey.Nonce+1, []transaction.Action{action}, blockHash)
	signed, err := transaction.Sign(tx, kp)
	if err != nil {
		return nil, err
	}
	raw, err := transaction.SerializeSigned(signed)
	if err != nil {
		return nil, err
	}

	final, err := chain.BroadcastTxCommit(ctx, raw)
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID).Msg("Failed to broadcast transaction")
		return nil, err
	}

	outcome := &Outcome{
		TransactionHash: final.Transaction.Hash,
		Status:          final.Status,
		Logs:            final.Logs(),
		Final:           final,
	}
	e.metrics.RecordExecutedCall(network.String(), outcome.IsSuccess())

	if !outcome.IsSuccess() {
		log.Warn().Str("tx_hash", outcome.TransactionHash).RawJSON("failure", failureJSON(final.Status)).Msg("Transaction did not succeed")
		return outcome, errors.Wrapf(autherr.ErrTransactionExecution, "transaction %s did not succeed", outcome.TransactionHash)
	}

	log.Info().Str("tx_hash", outcome.TransactionHash).Str("account_id", accountID).Msg("Transaction executed")
	return outcome, nil
}

// View 只读调用合约方法，返回方法结果的 JSON
func (e *Executor) View(ctx context.Context, network config.Network, contractID string, methodName string, args interface{}) (json.RawMessage, error) {
	raw, err := transaction.EncodeArgs(args)
	if err != nil {
		return nil, err
	}

	result, err := e.chains(network.OrDefault()).CallFunction(ctx, contractID, methodName, raw)
	if err != nil {
		return nil, err
	}
	if len(result.Result) > 0 && !json.Valid(result.Result) {
		return nil, errors.Wrapf(autherr.ErrSerialization, "%s.%s returned non-JSON result", contractID, methodName)
	}
	return result.JSON(), nil
}

func failureJSON(s rpc.ExecutionStatus) []byte {
	if len(s.Failure) > 0 {
		return s.Failure
	}
	return []byte("null")
}
