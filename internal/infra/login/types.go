package login

import (
	"context"

	"github.com/kashguard/go-near-auth/internal/auth"
	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/near/wallet"
)

// State 登录流程状态
type State int

const (
	StateUnauthenticated State = iota
	StateKeyIssued
	StateAwaitingExternalApproval
	StateAccountResolved
	StatePermissionRequested
	StateAuthenticated
)

var stateNames = map[State]string{
	StateUnauthenticated:          "Unauthenticated",
	StateKeyIssued:                "KeyIssued",
	StateAwaitingExternalApproval: "AwaitingExternalApproval",
	StateAccountResolved:          "AccountResolved",
	StatePermissionRequested:      "PermissionRequested",
	StateAuthenticated:            "Authenticated",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Config 登录流程参数
type Config struct {
	Network        config.Network
	AppName        string
	WalletTemplate string
	// ContractID 登录链接中的 contract_id，同时是授权交易的接收方
	ContractID   string
	GrantMethod  string
	GrantDeposit string
	GrantGas     uint64
	CallbackURL  string
}

// ConfigFromServer 由服务配置生成指定网络的登录参数
func ConfigFromServer(cfg config.Server, network config.Network) Config {
	network = network.OrDefault()
	return Config{
		Network:        network,
		AppName:        cfg.Wallet.AppName,
		WalletTemplate: cfg.Wallet.URLTemplate,
		ContractID:     cfg.SocialContract(network),
		GrantMethod:    cfg.Social.GrantMethod,
		GrantDeposit:   cfg.Social.GrantDeposit,
		GrantGas:       cfg.Chain.DefaultGas,
		CallbackURL:    cfg.Wallet.CallbackURL,
	}
}

// AccountResolver 通过公钥反查账户
type AccountResolver interface {
	ResolveAccountByPublicKey(ctx context.Context, network config.Network, publicKey string) (string, bool, error)
}

// SignURLBuilder 构造钱包签名链接
type SignURLBuilder interface {
	BuildSignURL(ctx context.Context, req wallet.SignRequest) (string, error)
}

// Opener 在外部（浏览器、钱包）打开链接
type Opener interface {
	OpenExternal(ctx context.Context, url string) error
}

// OpenerFunc 函数适配器
type OpenerFunc func(ctx context.Context, url string) error

func (f OpenerFunc) OpenExternal(ctx context.Context, url string) error {
	return f(ctx, url)
}

// Notifier 向宿主应用推送账户信息和提示
type Notifier interface {
	AccountDetails(ctx context.Context, details auth.AccountDetails)
	Info(ctx context.Context, message string)
}

// NopNotifier 丢弃所有通知
type NopNotifier struct{}

func (NopNotifier) AccountDetails(context.Context, auth.AccountDetails) {}
func (NopNotifier) Info(context.Context, string)                        {}

// LoginResult Login 的结果
type LoginResult struct {
	PublicKey string `json:"publicKey"`
	URL       string `json:"url"`
}

// ConfirmResult ConfirmLogin 的结果
type ConfirmResult struct {
	AccountID string `json:"accountId"`
	GrantURL  string `json:"grantUrl"`
}

type grantArgs struct {
	PublicKey string   `json:"public_key"`
	Keys      []string `json:"keys"`
}
