package transaction

import (
	"github.com/holiman/uint256"
	"github.com/kashguard/go-near-auth/internal/near/keys"
)

// PlaceholderNonce 重定向签名流程中使用的占位 nonce，真实 nonce 由外部钱包填写
const PlaceholderNonce uint64 = 1

// BlockHashSize 区块哈希长度
const BlockHashSize = 32

// Transaction 未签名交易。字段顺序即链上 borsh 编码顺序。
type Transaction struct {
	SignerID   string
	PublicKey  keys.PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  [BlockHashSize]byte
	Actions    []Action
}

// ActionKind borsh 枚举标签
type ActionKind uint8

const (
	ActionCreateAccount ActionKind = iota
	ActionDeployContract
	ActionFunctionCall
	ActionTransfer
	ActionStake
	ActionAddKey
	ActionDeleteKey
	ActionDeleteAccount
)

var actionKindNames = map[ActionKind]string{
	ActionCreateAccount:  "CreateAccount",
	ActionDeployContract: "DeployContract",
	ActionFunctionCall:   "FunctionCall",
	ActionTransfer:       "Transfer",
	ActionStake:          "Stake",
	ActionAddKey:         "AddKey",
	ActionDeleteKey:      "DeleteKey",
	ActionDeleteAccount:  "DeleteAccount",
}

func (k ActionKind) String() string {
	if name, ok := actionKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Action 交易动作（带标签的联合类型）
type Action interface {
	Kind() ActionKind
}

type CreateAccount struct{}

type DeployContract struct {
	Code []byte
}

// FunctionCall 合约方法调用，Gas 链上为 u64，Deposit 为 u128
type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    *uint256.Int
}

type Transfer struct {
	Deposit *uint256.Int
}

type Stake struct {
	Stake     *uint256.Int
	PublicKey keys.PublicKey
}

type AddKey struct {
	PublicKey keys.PublicKey
	AccessKey AccessKey
}

type DeleteKey struct {
	PublicKey keys.PublicKey
}

type DeleteAccount struct {
	BeneficiaryID string
}

// AccessKey 访问密钥及其权限
type AccessKey struct {
	Nonce      uint64
	Permission AccessKeyPermission
}

// AccessKeyPermission 权限；FunctionCall 为 nil 时表示 FullAccess
type AccessKeyPermission struct {
	FunctionCall *FunctionCallPermission
}

// FunctionCallPermission 限定到某个合约的权限；Allowance 为 nil 表示不限额度
type FunctionCallPermission struct {
	Allowance   *uint256.Int
	ReceiverID  string
	MethodNames []string
}

// IsFullAccess 是否为完全权限
func (p AccessKeyPermission) IsFullAccess() bool {
	return p.FunctionCall == nil
}

func (*CreateAccount) Kind() ActionKind  { return ActionCreateAccount }
func (*DeployContract) Kind() ActionKind { return ActionDeployContract }
func (*FunctionCall) Kind() ActionKind   { return ActionFunctionCall }
func (*Transfer) Kind() ActionKind       { return ActionTransfer }
func (*Stake) Kind() ActionKind          { return ActionStake }
func (*AddKey) Kind() ActionKind         { return ActionAddKey }
func (*DeleteKey) Kind() ActionKind      { return ActionDeleteKey }
func (*DeleteAccount) Kind() ActionKind  { return ActionDeleteAccount }

// Signature ed25519 签名
type Signature struct {
	KeyType keys.KeyType
	Data    [64]byte
}

// SignedTransaction 已签名交易
type SignedTransaction struct {
	Transaction Transaction
	Signature   Signature
}
