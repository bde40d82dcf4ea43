package wallet

import (
	"context"
	"encoding/base64"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/metrics"
	"github.com/kashguard/go-near-auth/internal/near/amount"
	"github.com/kashguard/go-near-auth/internal/near/keys"
	"github.com/kashguard/go-near-auth/internal/near/transaction"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultGas 未指定 gas 时使用 30 Tgas
const DefaultGas uint64 = 30_000_000_000_000

// BlockHashFetcher 获取最新已最终确认区块的哈希
type BlockHashFetcher interface {
	LatestBlockHash(ctx context.Context) ([32]byte, error)
}

// FetcherForNetwork 按网络返回区块哈希来源
type FetcherForNetwork func(network config.Network) BlockHashFetcher

// Deposit 附带金额：yocto 整数字符串或十进制 NEAR 数额
type Deposit struct {
	yocto  string
	near   decimal.Decimal
	isNear bool
}

// DepositYocto 整数 yoctoNEAR 字符串，原样使用
func DepositYocto(s string) Deposit {
	return Deposit{yocto: s}
}

// DepositNear 十进制 NEAR 数额，使用前换算为 yoctoNEAR。NaN 与 ±Inf 按无法解析处理。
func DepositNear(v float64) Deposit {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Deposit{yocto: strconv.FormatFloat(v, 'g', -1, 64)}
	}
	return Deposit{near: decimal.NewFromFloat(v), isNear: true}
}

// DepositNearString 十进制 NEAR 字符串，例如 "0.1"
func DepositNearString(s string) Deposit {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		// 保留原始输入，Yocto 会把它当作无法解析的金额处理
		return Deposit{yocto: s}
	}
	return Deposit{near: d, isNear: true}
}

// Yocto 换算为链上金额。无法解析时按 0 处理并记录 warn 日志，不返回错误。
func (d Deposit) Yocto(ctx context.Context) *uint256.Int {
	var (
		v   *uint256.Int
		err error
	)
	switch {
	case d.isNear:
		v, err = amount.FromDecimal(d.near)
	case d.yocto == "":
		return amount.Zero()
	default:
		v, err = amount.ParseYocto(d.yocto)
	}
	if err != nil {
		util.LogFromContext(ctx).Warn().Err(err).Str("deposit", d.String()).Msg("Malformed deposit, defaulting to zero")
		return amount.Zero()
	}
	return v
}

func (d Deposit) String() string {
	if d.isNear {
		return d.near.String() + " NEAR"
	}
	return d.yocto
}

// SignRequest 单个函数调用的签名请求
type SignRequest struct {
	Network     config.Network
	AccountID   string
	ReceiverID  string
	MethodName  string
	Args        interface{}
	Deposit     Deposit
	Gas         uint64
	Meta        string
	CallbackURL string
}

// SignURLBuilder 构造 /sign 重定向链接
type SignURLBuilder struct {
	Fetchers       FetcherForNetwork
	Keys           keys.Generator
	WalletTemplate string
	Metrics        *metrics.Service
}

func NewSignURLBuilder(fetchers FetcherForNetwork, generator keys.Generator, walletTemplate string, m *metrics.Service) *SignURLBuilder {
	return &SignURLBuilder{
		Fetchers:       fetchers,
		Keys:           generator,
		WalletTemplate: walletTemplate,
		Metrics:        m,
	}
}

// BuildSignURL 构造只含一个 FunctionCall 的交易并生成签名链接。
// 交易中的 signer 公钥是随机生成的占位公钥，nonce 为占位值，真实值由钱包填写。
func (b *SignURLBuilder) BuildSignURL(ctx context.Context, req SignRequest) (string, error) {
	network := req.Network.OrDefault()

	tx, err := b.BuildTransaction(ctx, req)
	if err != nil {
		return "", err
	}

	signURL, err := b.BuildMultiSignURL(ctx, network, req.CallbackURL, req.Meta, []*transaction.Transaction{tx})
	if err != nil {
		return "", err
	}

	b.Metrics.RecordSignURL(network.String(), req.MethodName)
	util.LogFromContext(ctx).Debug().
		Str("network", network.String()).
		Str("account_id", req.AccountID).
		Str("receiver_id", req.ReceiverID).
		Str("method", req.MethodName).
		Msg("Built wallet sign URL")

	return signURL, nil
}

// BuildTransaction 构造签名链接中携带的未签名交易
func (b *SignURLBuilder) BuildTransaction(ctx context.Context, req SignRequest) (*transaction.Transaction, error) {
	network := req.Network.OrDefault()

	gas := req.Gas
	if gas == 0 {
		gas = DefaultGas
	}

	action, err := transaction.NewFunctionCall(req.MethodName, req.Args, gas, req.Deposit.Yocto(ctx))
	if err != nil {
		return nil, err
	}

	placeholder, err := b.generator().Generate()
	if err != nil {
		return nil, err
	}

	if b.Fetchers == nil {
		return nil, errors.New("no block hash fetcher configured")
	}
	blockHash, err := b.Fetchers(network).LatestBlockHash(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch recent block hash")
	}

	return transaction.BuildUnsigned(req.AccountID, placeholder.Public(), req.ReceiverID,
		[]transaction.Action{action}, blockHash), nil
}

// BuildMultiSignURL 将多笔交易序列化后以逗号拼接到 transactions 参数中
func (b *SignURLBuilder) BuildMultiSignURL(_ context.Context, network config.Network, callbackURL string, meta string, txs []*transaction.Transaction) (string, error) {
	if len(txs) == 0 {
		return "", errors.Wrap(errNoTransactions, "cannot build sign URL")
	}

	encoded := make([]string, 0, len(txs))
	for i, tx := range txs {
		raw, err := transaction.Serialize(tx)
		if err != nil {
			return "", errors.Wrapf(err, "failed to serialize transaction %d", i)
		}
		encoded = append(encoded, base64.StdEncoding.EncodeToString(raw))
	}

	var sb strings.Builder
	sb.WriteString(BaseURL(b.WalletTemplate, network))
	sb.WriteString("/sign?transactions=")
	sb.WriteString(url.QueryEscape(strings.Join(encoded, ",")))
	sb.WriteString("&callbackUrl=")
	sb.WriteString(url.QueryEscape(callbackURL))
	if meta != "" {
		sb.WriteString("&meta=")
		sb.WriteString(url.QueryEscape(meta))
	}
	return sb.String(), nil
}

func (b *SignURLBuilder) generator() keys.Generator {
	if b.Keys == nil {
		return keys.NewRandomGenerator()
	}
	return b.Keys
}

var errNoTransactions = errors.New("no transactions")

// DecodeSignURL 解析签名链接中携带的交易
func DecodeSignURL(signURL string) ([]*transaction.Transaction, url.Values, error) {
	u, err := url.Parse(signURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid sign URL")
	}
	q := u.Query()

	var txs []*transaction.Transaction
	for _, part := range strings.Split(q.Get("transactions"), ",") {
		if part == "" {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(part)
		if err != nil {
			return nil, nil, errors.Wrap(err, "invalid base64 transaction")
		}
		tx, err := transaction.Deserialize(raw)
		if err != nil {
			return nil, nil, err
		}
		txs = append(txs, tx)
	}
	return txs, q, nil
}
