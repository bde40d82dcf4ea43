package login

import (
	"context"
	"fmt"
	"sync"

	"github.com/kashguard/go-near-auth/internal/auth"
	"github.com/kashguard/go-near-auth/internal/metrics"
	"github.com/kashguard/go-near-auth/internal/near/keys"
	"github.com/kashguard/go-near-auth/internal/near/wallet"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/pkg/errors"
)

// Controller 登录流程：生成密钥 -> 钱包登录 -> 确认并解析账户 -> 授权写入 -> 已登录。
// 命令串行执行，同一时间只处理一个。
type Controller struct {
	cfg      Config
	keys     keys.Generator
	store    *auth.CredentialStore
	resolver AccountResolver
	signURLs SignURLBuilder
	opener   Opener
	notifier Notifier
	metrics  *metrics.Service

	mu    sync.Mutex
	state State
}

// Deps Controller 依赖
type Deps struct {
	Keys     keys.Generator
	Store    *auth.CredentialStore
	Resolver AccountResolver
	SignURLs SignURLBuilder
	Opener   Opener
	Notifier Notifier
	Metrics  *metrics.Service
}

func NewController(cfg Config, deps Deps) *Controller {
	if deps.Keys == nil {
		deps.Keys = keys.NewRandomGenerator()
	}
	if deps.Notifier == nil {
		deps.Notifier = NopNotifier{}
	}
	if deps.Opener == nil {
		deps.Opener = OpenerFunc(func(context.Context, string) error { return nil })
	}
	cfg.Network = cfg.Network.OrDefault()

	return &Controller{
		cfg:      cfg,
		keys:     deps.Keys,
		store:    deps.Store,
		resolver: deps.Resolver,
		signURLs: deps.SignURLs,
		opener:   deps.Opener,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		state:    StateUnauthenticated,
	}
}

// State 当前状态
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Config 返回登录参数
func (c *Controller) Config() Config {
	return c.cfg
}

// Restore 进程启动时根据已存储的凭据恢复状态。
// 账户 ID 只在授权链接发出后保留（ConfirmLogin 构建链接失败时会清除），
// 因此存在账户 ID 即恢复为已认证。
func (c *Controller) Restore(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.store.Identity(ctx)
	if err != nil {
		return c.state, err
	}

	switch {
	case id.IsAuthenticated():
		c.setState(ctx, StateAuthenticated)
	case id.HasKeyPair():
		c.setState(ctx, StateAwaitingExternalApproval)
	default:
		c.setState(ctx, StateUnauthenticated)
	}
	return c.state, nil
}

// Login 生成新的访问密钥并打开钱包登录页。之前解析出的账户会被清空。
func (c *Controller) Login(ctx context.Context) (*LoginResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := util.LogFromContext(ctx)

	kp, err := c.keys.Generate()
	if err != nil {
		c.setState(ctx, StateUnauthenticated)
		if !errors.Is(err, autherr.ErrKeyGeneration) {
			err = autherr.Wrap(autherr.ErrKeyGeneration, err, "failed to generate key pair")
		}
		log.Error().Err(err).Msg("Failed to generate access key")
		return nil, err
	}

	if err := c.store.SaveKeyPair(ctx, kp); err != nil {
		c.setState(ctx, StateUnauthenticated)
		log.Error().Err(err).Msg("Failed to persist access key")
		return nil, err
	}
	if err := c.store.SaveAccountID(ctx, ""); err != nil {
		c.setState(ctx, StateUnauthenticated)
		return nil, err
	}

	publicKey := kp.PublicKeyString()
	c.setState(ctx, StateKeyIssued)
	log.Info().Str("public_key", publicKey).Msg("Issued new access key")

	loginURL := wallet.LoginURL(wallet.BaseURL(c.cfg.WalletTemplate, c.cfg.Network), publicKey, c.cfg.AppName, c.cfg.ContractID)
	c.open(ctx, loginURL)
	c.setState(ctx, StateAwaitingExternalApproval)

	c.notifier.AccountDetails(ctx, auth.AccountDetails{Network: c.cfg.Network, PublicKey: publicKey})

	return &LoginResult{PublicKey: publicKey, URL: loginURL}, nil
}

// ConfirmLogin 在用户于钱包中批准后调用：解析账户、保存并发起授权签名。
// 找不到账户时返回 ErrAccountNotFound，状态保持在等待批准，可以再次确认。
// 每次成功解析都会重新发起授权。
func (c *Controller) ConfirmLogin(ctx context.Context) (*ConfirmResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := util.LogFromContext(ctx).With().Str("network", c.cfg.Network.String()).Logger()

	publicKey, err := c.store.GetValue(ctx, auth.KeyPublicKey)
	if err != nil {
		return nil, err
	}
	if publicKey == "" {
		return nil, errors.Wrap(autherr.ErrNoPendingLogin, "no public key stored")
	}
	if c.state < StateAwaitingExternalApproval {
		c.setState(ctx, StateAwaitingExternalApproval)
	}

	accountID, found, err := c.resolver.ResolveAccountByPublicKey(ctx, c.cfg.Network, publicKey)
	if err != nil {
		log.Warn().Err(err).Str("public_key", publicKey).Msg("Could not verify access key against indexer")
		c.setState(ctx, StateAwaitingExternalApproval)
		return nil, err
	}
	if !found || accountID == "" {
		log.Info().Str("public_key", publicKey).Msg("No account found for access key yet")
		c.setState(ctx, StateAwaitingExternalApproval)
		c.notifier.Info(ctx, autherr.UserMessage(autherr.ErrAccountNotFound))
		return nil, errors.Wrapf(autherr.ErrAccountNotFound, "no account owns %s", publicKey)
	}

	if err := c.store.SaveAccountID(ctx, accountID); err != nil {
		c.setState(ctx, StateAwaitingExternalApproval)
		return nil, err
	}
	c.setState(ctx, StateAccountResolved)
	log.Info().Str("account_id", accountID).Msg("Resolved account for access key")
	c.notifier.Info(ctx, fmt.Sprintf("NEAR account %s successfully logged in!", accountID))

	grantURL, err := c.signURLs.BuildSignURL(ctx, wallet.SignRequest{
		Network:     c.cfg.Network,
		AccountID:   accountID,
		ReceiverID:  c.cfg.ContractID,
		MethodName:  c.cfg.GrantMethod,
		Args:        grantArgs{PublicKey: publicKey, Keys: []string{accountID}},
		Deposit:     wallet.DepositYocto(c.cfg.GrantDeposit),
		Gas:         c.cfg.GrantGas,
		CallbackURL: c.cfg.CallbackURL,
	})
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID).Msg("Failed to build permission grant URL")
		// 未发起授权前不保留账户，避免重启后被恢复为已认证
		if rbErr := c.store.SaveAccountID(ctx, ""); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to roll back account id after grant URL failure")
		}
		c.setState(ctx, StateAwaitingExternalApproval)
		return nil, err
	}

	c.notifier.Info(ctx, "Now grant permission in the NEAR wallet to proceed")
	c.open(ctx, grantURL)
	c.setState(ctx, StatePermissionRequested)

	// 不等待链上确认，授权是否成功由钱包负责
	c.setState(ctx, StateAuthenticated)
	c.notifier.AccountDetails(ctx, auth.AccountDetails{Network: c.cfg.Network, AccountID: accountID, PublicKey: publicKey})

	return &ConfirmResult{AccountID: accountID, GrantURL: grantURL}, nil
}

// SignOut 清空全部凭据并通知宿主应用。重复调用结果相同。
func (c *Controller) SignOut(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.store.Clear(ctx)
	if err != nil {
		util.LogFromContext(ctx).Error().Err(err).Msg("Failed to clear stored credentials")
	} else {
		c.setState(ctx, StateUnauthenticated)
		util.LogFromContext(ctx).Info().Msg("Signed out")
	}

	if notifyErr := c.sendAccountDetails(ctx); notifyErr != nil && err == nil {
		err = notifyErr
	}
	return err
}

// SendAccountDetails 推送当前账户信息
func (c *Controller) SendAccountDetails(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendAccountDetails(ctx)
}

// AccountDetails 读取当前账户信息
func (c *Controller) AccountDetails(ctx context.Context) (auth.AccountDetails, error) {
	id, err := c.store.Identity(ctx)
	if err != nil {
		return auth.AccountDetails{Network: c.cfg.Network}, err
	}
	return auth.AccountDetails{Network: c.cfg.Network, AccountID: id.AccountID, PublicKey: id.PublicKey}, nil
}

func (c *Controller) sendAccountDetails(ctx context.Context) error {
	details, err := c.AccountDetails(ctx)
	if err != nil {
		return err
	}
	c.notifier.AccountDetails(ctx, details)
	return nil
}

// open 打开外部链接失败不影响流程，链接同时通过返回值交给调用方
func (c *Controller) open(ctx context.Context, url string) {
	if err := c.opener.OpenExternal(ctx, url); err != nil {
		util.LogFromContext(ctx).Warn().Err(err).Str("url", url).Msg("Failed to open external URL")
	}
}

func (c *Controller) setState(ctx context.Context, to State) {
	from := c.state
	c.state = to
	if from == to {
		return
	}
	c.metrics.RecordLoginTransition(c.cfg.Network.String(), from.String(), to.String())
	util.LogFromContext(ctx).Debug().
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("Login state transition")
}
