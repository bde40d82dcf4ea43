package transaction

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/holiman/uint256"
	"github.com/kashguard/go-near-auth/internal/near/amount"
	"github.com/kashguard/go-near-auth/internal/near/keys"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/pkg/errors"
)

// BuildUnsigned 构建用于重定向签名的交易，nonce 固定为 PlaceholderNonce
func BuildUnsigned(signerID string, signerPublicKey keys.PublicKey, receiverID string, actions []Action, blockHash [BlockHashSize]byte) *Transaction {
	return Build(signerID, signerPublicKey, receiverID, PlaceholderNonce, actions, blockHash)
}

// Build 使用真实 nonce 构建交易（直接提交路径）。
// actions 被就地整理为 Deserialize 的规范形式：nil 金额置 0，空字节串与空列表置 nil。
func Build(signerID string, signerPublicKey keys.PublicKey, receiverID string, nonce uint64, actions []Action, blockHash [BlockHashSize]byte) *Transaction {
	if len(actions) == 0 {
		actions = nil
	}
	for _, a := range actions {
		canonicalize(a)
	}
	return &Transaction{
		SignerID:   signerID,
		PublicKey:  signerPublicKey,
		Nonce:      nonce,
		ReceiverID: receiverID,
		BlockHash:  blockHash,
		Actions:    actions,
	}
}

func canonicalize(a Action) {
	switch a := a.(type) {
	case *DeployContract:
		if len(a.Code) == 0 {
			a.Code = nil
		}
	case *FunctionCall:
		if len(a.Args) == 0 {
			a.Args = nil
		}
		if a.Deposit == nil {
			a.Deposit = amount.Zero()
		}
	case *Transfer:
		if a.Deposit == nil {
			a.Deposit = amount.Zero()
		}
	case *Stake:
		if a.Stake == nil {
			a.Stake = amount.Zero()
		}
	case *AddKey:
		if fc := a.AccessKey.Permission.FunctionCall; fc != nil && len(fc.MethodNames) == 0 {
			fc.MethodNames = nil
		}
	}
}

// NewFunctionCall 将 args 序列化为 JSON 后构造 FunctionCall。
// args 为 []byte 或 json.RawMessage 时原样使用。
func NewFunctionCall(methodName string, args interface{}, gas uint64, deposit *uint256.Int) (*FunctionCall, error) {
	if methodName == "" {
		return nil, errors.Wrap(autherr.ErrSerialization, "method name is required")
	}

	raw, err := EncodeArgs(args)
	if err != nil {
		return nil, err
	}

	if deposit == nil {
		deposit = amount.Zero()
	}
	if !amount.FitsUint128(deposit) {
		return nil, errors.Wrapf(autherr.ErrSerialization, "deposit %s exceeds u128", deposit.Dec())
	}

	return &FunctionCall{
		MethodName: methodName,
		Args:       raw,
		Gas:        gas,
		Deposit:    deposit,
	}, nil
}

// EncodeArgs 将合约参数编码为 JSON 字节
func EncodeArgs(args interface{}) ([]byte, error) {
	switch v := args.(type) {
	case nil:
		return []byte("{}"), nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, autherr.Wrap(autherr.ErrSerialization, err, "failed to marshal function call args")
	}
	return raw, nil
}

// Sign 对 sha256(borsh(tx)) 签名
func Sign(tx *Transaction, kp *keys.KeyPair) (*SignedTransaction, error) {
	if kp == nil {
		return nil, errors.Wrap(autherr.ErrMissingKey, "key pair is nil")
	}
	raw, err := Serialize(tx)
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256(raw)

	var sig Signature
	sig.KeyType = keys.KeyTypeED25519
	copy(sig.Data[:], kp.Sign(digest[:]))

	return &SignedTransaction{Transaction: *tx, Signature: sig}, nil
}

// Verify 校验签名是否由交易中声明的公钥产生
func (s *SignedTransaction) Verify() bool {
	digest, err := Hash(&s.Transaction)
	if err != nil {
		return false
	}
	return keys.Verify(s.Transaction.PublicKey, digest[:], s.Signature.Data[:])
}
