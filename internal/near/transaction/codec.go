package transaction

import (
	"bytes"
	"crypto/sha256"

	"github.com/kashguard/go-near-auth/internal/near/keys"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/near/borsh-go"
	"github.com/pkg/errors"
)

// Serialize 按钱包期望的 borsh schema 编码交易
func Serialize(tx *Transaction) ([]byte, error) {
	if tx == nil {
		return nil, errors.Wrap(autherr.ErrSerialization, "transaction is nil")
	}
	e := &encoder{}
	w := e.transaction(tx)
	if e.err != nil {
		return nil, e.err
	}
	return marshal(w)
}

// Deserialize Serialize 的逆操作，存在多余字节时报错。
//
// 返回值为规范形式：空的 Args、Code、MethodNames 与 Actions 为 nil，
// Deposit、Stake 等金额总是非 nil（值为 0 时也是如此）。
// 对 Build 产出的交易，Deserialize(Serialize(tx)) 与 tx 相等。
func Deserialize(data []byte) (*Transaction, error) {
	w, err := unmarshal[wireTransaction](data)
	if err != nil {
		return nil, err
	}
	d := &decoder{}
	tx := d.transaction(w)
	if d.err != nil {
		return nil, d.err
	}
	return tx, nil
}

// SerializeSigned 编码已签名交易（交易 + 签名）
func SerializeSigned(stx *SignedTransaction) ([]byte, error) {
	if stx == nil {
		return nil, errors.Wrap(autherr.ErrSerialization, "signed transaction is nil")
	}
	e := &encoder{}
	w := wireSignedTransaction{
		Transaction: e.transaction(&stx.Transaction),
		Signature:   wireSignature{KeyType: uint8(stx.Signature.KeyType), Data: stx.Signature.Data},
	}
	if e.err != nil {
		return nil, e.err
	}
	return marshal(w)
}

// DeserializeSigned SerializeSigned 的逆操作，规范形式同 Deserialize
func DeserializeSigned(data []byte) (*SignedTransaction, error) {
	w, err := unmarshal[wireSignedTransaction](data)
	if err != nil {
		return nil, err
	}
	d := &decoder{}
	tx := d.transaction(&w.Transaction)
	if d.err != nil {
		return nil, d.err
	}
	return &SignedTransaction{
		Transaction: *tx,
		Signature:   Signature{KeyType: keys.KeyType(w.Signature.KeyType), Data: w.Signature.Data},
	}, nil
}

// Hash 交易哈希：sha256(borsh(tx))
func Hash(tx *Transaction) ([32]byte, error) {
	raw, err := Serialize(tx)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(raw), nil
}

func marshal(v any) ([]byte, error) {
	raw, err := borsh.Serialize(v)
	if err != nil {
		return nil, errors.Wrapf(autherr.ErrSerialization, "borsh encode: %v", err)
	}
	return raw, nil
}

// unmarshal 解码后重新编码并逐字节比对，拒绝多余字节与非规范编码（如 option 标志 2）
func unmarshal[T any](data []byte) (out *T, err error) {
	if len(data) == 0 {
		return nil, errors.Wrap(autherr.ErrSerialization, "empty input")
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, errors.Wrapf(autherr.ErrSerialization, "borsh decode: %v", r)
		}
	}()
	out = new(T)
	if err := borsh.Deserialize(out, data); err != nil {
		return nil, errors.Wrapf(autherr.ErrSerialization, "borsh decode: %v", err)
	}
	again, err := borsh.Serialize(*out)
	if err != nil {
		return nil, errors.Wrapf(autherr.ErrSerialization, "borsh re-encode: %v", err)
	}
	if len(again) < len(data) {
		return nil, errors.Wrapf(autherr.ErrSerialization, "%d trailing bytes", len(data)-len(again))
	}
	if !bytes.Equal(again, data) {
		return nil, errors.Wrap(autherr.ErrSerialization, "non-canonical encoding")
	}
	return out, nil
}
