package transaction

import (
	"math/big"
	"unicode/utf8"

	"github.com/holiman/uint256"
	"github.com/kashguard/go-near-auth/internal/near/amount"
	"github.com/kashguard/go-near-auth/internal/near/keys"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/near/borsh-go"
	"github.com/pkg/errors"
)

// 链上 borsh schema。字段顺序即编码顺序，枚举变体顺序即标签值。

type wirePublicKey struct {
	KeyType uint8
	Data    [32]byte
}

type wireSignature struct {
	KeyType uint8
	Data    [64]byte
}

type wireTransaction struct {
	SignerID   string
	PublicKey  wirePublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  [BlockHashSize]byte
	Actions    []wireAction
}

type wireSignedTransaction struct {
	Transaction wireTransaction
	Signature   wireSignature
}

type wireAction struct {
	Enum           borsh.Enum `borsh_enum:"true"`
	CreateAccount  struct{}
	DeployContract wireDeployContract
	FunctionCall   wireFunctionCall
	Transfer       wireTransfer
	Stake          wireStake
	AddKey         wireAddKey
	DeleteKey      wireDeleteKey
	DeleteAccount  wireDeleteAccount
}

type wireDeployContract struct {
	Code []byte
}

type wireFunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    big.Int
}

type wireTransfer struct {
	Deposit big.Int
}

type wireStake struct {
	Stake     big.Int
	PublicKey wirePublicKey
}

type wireAddKey struct {
	PublicKey wirePublicKey
	AccessKey wireAccessKey
}

type wireAccessKey struct {
	Nonce      uint64
	Permission wirePermission
}

type wirePermission struct {
	Enum         borsh.Enum `borsh_enum:"true"`
	FunctionCall wireFunctionCallPermission
	FullAccess   struct{}
}

type wireFunctionCallPermission struct {
	Allowance   *big.Int
	ReceiverID  string
	MethodNames []string
}

type wireDeleteKey struct {
	PublicKey wirePublicKey
}

type wireDeleteAccount struct {
	BeneficiaryID string
}

// encoder 把领域类型转换为 wire schema，第一个错误之后不再检查
type encoder struct {
	err error
}

func (e *encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *encoder) str(s string) string {
	if !utf8.ValidString(s) {
		e.fail(errors.Wrap(autherr.ErrSerialization, "string is not valid utf-8"))
	}
	return s
}

func (e *encoder) u128(v *uint256.Int) big.Int {
	if v == nil {
		v = amount.Zero()
	}
	if !amount.FitsUint128(v) {
		e.fail(errors.Wrapf(autherr.ErrSerialization, "value %s exceeds u128", v.Dec()))
		return big.Int{}
	}
	return *v.ToBig()
}

func (e *encoder) publicKey(pk keys.PublicKey) wirePublicKey {
	return wirePublicKey{KeyType: uint8(pk.Type), Data: pk.Data}
}

func (e *encoder) transaction(tx *Transaction) wireTransaction {
	out := wireTransaction{
		SignerID:   e.str(tx.SignerID),
		PublicKey:  e.publicKey(tx.PublicKey),
		Nonce:      tx.Nonce,
		ReceiverID: e.str(tx.ReceiverID),
		BlockHash:  tx.BlockHash,
		Actions:    make([]wireAction, 0, len(tx.Actions)),
	}
	for i, a := range tx.Actions {
		out.Actions = append(out.Actions, e.action(i, a))
	}
	return out
}

func (e *encoder) action(i int, a Action) wireAction {
	var out wireAction
	switch a := a.(type) {
	case *CreateAccount:
		out.Enum = borsh.Enum(ActionCreateAccount)
	case *DeployContract:
		out.Enum = borsh.Enum(ActionDeployContract)
		out.DeployContract.Code = a.Code
	case *FunctionCall:
		out.Enum = borsh.Enum(ActionFunctionCall)
		out.FunctionCall = wireFunctionCall{
			MethodName: e.str(a.MethodName),
			Args:       a.Args,
			Gas:        a.Gas,
			Deposit:    e.u128(a.Deposit),
		}
	case *Transfer:
		out.Enum = borsh.Enum(ActionTransfer)
		out.Transfer.Deposit = e.u128(a.Deposit)
	case *Stake:
		out.Enum = borsh.Enum(ActionStake)
		out.Stake = wireStake{Stake: e.u128(a.Stake), PublicKey: e.publicKey(a.PublicKey)}
	case *AddKey:
		out.Enum = borsh.Enum(ActionAddKey)
		out.AddKey = wireAddKey{
			PublicKey: e.publicKey(a.PublicKey),
			AccessKey: wireAccessKey{Nonce: a.AccessKey.Nonce, Permission: e.permission(a.AccessKey.Permission)},
		}
	case *DeleteKey:
		out.Enum = borsh.Enum(ActionDeleteKey)
		out.DeleteKey.PublicKey = e.publicKey(a.PublicKey)
	case *DeleteAccount:
		out.Enum = borsh.Enum(ActionDeleteAccount)
		out.DeleteAccount.BeneficiaryID = e.str(a.BeneficiaryID)
	case nil:
		e.fail(errors.Wrapf(autherr.ErrSerialization, "action %d is nil", i))
	default:
		e.fail(errors.Wrapf(autherr.ErrSerialization, "action %d has unsupported type %T", i, a))
	}
	return out
}

func (e *encoder) permission(p AccessKeyPermission) wirePermission {
	if p.IsFullAccess() {
		return wirePermission{Enum: 1}
	}
	fc := wireFunctionCallPermission{
		ReceiverID:  e.str(p.FunctionCall.ReceiverID),
		MethodNames: make([]string, 0, len(p.FunctionCall.MethodNames)),
	}
	if p.FunctionCall.Allowance != nil {
		allowance := e.u128(p.FunctionCall.Allowance)
		fc.Allowance = &allowance
	}
	for _, m := range p.FunctionCall.MethodNames {
		fc.MethodNames = append(fc.MethodNames, e.str(m))
	}
	return wirePermission{Enum: 0, FunctionCall: fc}
}

// decoder 把 wire schema 转换回领域类型，输出规范形式：
// 空字节串与空列表为 nil，金额总是非 nil。
type decoder struct {
	err error
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *decoder) str(s string) string {
	if !utf8.ValidString(s) {
		d.fail(errors.Wrap(autherr.ErrSerialization, "string is not valid utf-8"))
	}
	return s
}

func (d *decoder) bytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

func (d *decoder) u128(v *big.Int) *uint256.Int {
	out, overflow := uint256.FromBig(v)
	if overflow || !amount.FitsUint128(out) {
		d.fail(errors.Wrapf(autherr.ErrSerialization, "value %s exceeds u128", v.String()))
		return amount.Zero()
	}
	return out
}

func (d *decoder) publicKey(pk wirePublicKey) keys.PublicKey {
	if keys.KeyType(pk.KeyType) != keys.KeyTypeED25519 {
		d.fail(errors.Wrapf(autherr.ErrSerialization, "unsupported key type %d", pk.KeyType))
	}
	return keys.PublicKey{Type: keys.KeyType(pk.KeyType), Data: pk.Data}
}

func (d *decoder) transaction(w *wireTransaction) *Transaction {
	tx := &Transaction{
		SignerID:   d.str(w.SignerID),
		PublicKey:  d.publicKey(w.PublicKey),
		Nonce:      w.Nonce,
		ReceiverID: d.str(w.ReceiverID),
		BlockHash:  w.BlockHash,
	}
	for i := range w.Actions {
		if a := d.action(&w.Actions[i]); a != nil {
			tx.Actions = append(tx.Actions, a)
		}
	}
	return tx
}

func (d *decoder) action(w *wireAction) Action {
	switch ActionKind(w.Enum) {
	case ActionCreateAccount:
		return &CreateAccount{}
	case ActionDeployContract:
		return &DeployContract{Code: d.bytes(w.DeployContract.Code)}
	case ActionFunctionCall:
		return &FunctionCall{
			MethodName: d.str(w.FunctionCall.MethodName),
			Args:       d.bytes(w.FunctionCall.Args),
			Gas:        w.FunctionCall.Gas,
			Deposit:    d.u128(&w.FunctionCall.Deposit),
		}
	case ActionTransfer:
		return &Transfer{Deposit: d.u128(&w.Transfer.Deposit)}
	case ActionStake:
		return &Stake{Stake: d.u128(&w.Stake.Stake), PublicKey: d.publicKey(w.Stake.PublicKey)}
	case ActionAddKey:
		a := &AddKey{PublicKey: d.publicKey(w.AddKey.PublicKey)}
		a.AccessKey.Nonce = w.AddKey.AccessKey.Nonce
		switch p := w.AddKey.AccessKey.Permission; p.Enum {
		case 0:
			fc := &FunctionCallPermission{ReceiverID: d.str(p.FunctionCall.ReceiverID)}
			if p.FunctionCall.Allowance != nil {
				fc.Allowance = d.u128(p.FunctionCall.Allowance)
			}
			for _, m := range p.FunctionCall.MethodNames {
				fc.MethodNames = append(fc.MethodNames, d.str(m))
			}
			a.AccessKey.Permission.FunctionCall = fc
		case 1:
		default:
			d.fail(errors.Wrapf(autherr.ErrSerialization, "unknown access key permission %d", p.Enum))
		}
		return a
	case ActionDeleteKey:
		return &DeleteKey{PublicKey: d.publicKey(w.DeleteKey.PublicKey)}
	case ActionDeleteAccount:
		return &DeleteAccount{BeneficiaryID: d.str(w.DeleteAccount.BeneficiaryID)}
	default:
		d.fail(errors.Wrapf(autherr.ErrSerialization, "unknown action kind %d", w.Enum))
		return nil
	}
}
