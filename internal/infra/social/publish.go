// Package social 将组件代码发布到 SocialDB 合约，并生成预览链接。
package social

import (
	"context"
	"net/url"
	"strings"

	"github.com/kashguard/go-near-auth/internal/auth"
	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/near/executor"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/pkg/errors"
)

// SetMethod SocialDB 写入方法
const SetMethod = "set"

const (
	testnetEmbedURL = "https://test.near.social/#/embed/test_alice.testnet/widget/remote-code?code="
	mainnetEmbedURL = "https://near.social/#/embed/zavodil.near/widget/remote-code?code="
)

// Caller 签名调用，*executor.Executor 实现了它
type Caller interface {
	Call(ctx context.Context, req executor.CallRequest) (*executor.Outcome, error)
}

// ContractFunc 返回网络对应的 SocialDB 合约
type ContractFunc func(network config.Network) string

type PublishRequest struct {
	Network config.Network `json:"network"`
	Name    string         `json:"name"`
	Tag     string         `json:"tag"`
	Code    string         `json:"code"`
}

type PublishResult struct {
	AccountID       string `json:"accountId"`
	WidgetKey       string `json:"widgetKey"`
	TransactionHash string `json:"transactionHash"`
	Success         bool   `json:"success"`
}

type Publisher struct {
	caller    Caller
	store     *auth.CredentialStore
	contracts ContractFunc
}

func NewPublisher(caller Caller, store *auth.CredentialStore, contracts ContractFunc) *Publisher {
	return &Publisher{caller: caller, store: store, contracts: contracts}
}

// WidgetKey 组件在 SocialDB 中的键：名称转小写并去掉空格
func WidgetKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "")
}

// WidgetArgs 构造 set 调用参数：
// {data:{<account>:{widget:{<key>:{"":code, metadata:{name, tags:{<tag>:""}}}}}}}
func WidgetArgs(accountID string, name string, tag string, code string) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			accountID: map[string]interface{}{
				"widget": map[string]interface{}{
					WidgetKey(name): map[string]interface{}{
						"": code,
						"metadata": map[string]interface{}{
							"name": name,
							"tags": map[string]string{tag: ""},
						},
					},
				},
			},
		},
	}
}

// uriComponent 把 QueryEscape 的结果调整为 encodeURIComponent 的字符集：
// 空格编码为 %20，!'()* 保持原样。
var uriComponent = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// WidgetEmbedURL 组件预览链接，code 按 URI 组件编码
func WidgetEmbedURL(network config.Network, code string) string {
	base := mainnetEmbedURL
	if network == config.NetworkTestnet {
		base = testnetEmbedURL
	}
	return base + uriComponent.Replace(url.QueryEscape(code))
}

// Publish 以当前登录账户写入组件。
// 只有最终状态为 SuccessValue 才算成功，其它状态返回结果和 ErrTransactionExecution。
func (p *Publisher) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	network := req.Network.OrDefault()
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.Wrap(autherr.ErrSerialization, "widget name is required")
	}

	accountID, err := p.store.GetValue(ctx, auth.KeyAccountID)
	if err != nil {
		return nil, err
	}
	if accountID == "" {
		return nil, errors.Wrap(autherr.ErrAccountNotFound, "no account is logged in")
	}

	result := &PublishResult{AccountID: accountID, WidgetKey: WidgetKey(req.Name)}
	outcome, err := p.caller.Call(ctx, executor.CallRequest{
		Network:    network,
		AccountID:  accountID,
		ContractID: p.contracts(network),
		MethodName: SetMethod,
		Args:       WidgetArgs(accountID, req.Name, req.Tag, req.Code),
	})
	if outcome != nil {
		result.TransactionHash = outcome.TransactionHash
		result.Success = outcome.IsSuccess()
	}
	if err != nil {
		util.LogFromContext(ctx).Warn().Err(err).
			Str("account_id", accountID).
			Str("widget", result.WidgetKey).
			Msg("Failed to publish widget")
		if outcome != nil {
			return result, err
		}
		return nil, err
	}

	util.LogFromContext(ctx).Info().
		Str("account_id", accountID).
		Str("widget", result.WidgetKey).
		Str("tx_hash", result.TransactionHash).
		Msg("Published widget")
	return result, nil
}
