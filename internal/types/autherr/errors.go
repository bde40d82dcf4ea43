// Package autherr holds the failure taxonomy shared by the login flow, the
// credential store and the chain adapters. Every error surfaced to the host
// application wraps exactly one of the sentinels below.
package autherr

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrSecretStore 凭证存储读写失败（当前步骤失败，用户可重试）
	ErrSecretStore = errors.New("secret store failure")
	// ErrKeyGeneration 随机源不可用，进程级致命错误
	ErrKeyGeneration = errors.New("key generation failure")
	// ErrNetworkUnavailable RPC 或索引库不可达
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrTimeout 外部调用超时（可重试）
	ErrTimeout = errors.New("request timed out")
	// ErrAccountNotFound 索引库中没有与公钥匹配的账户
	ErrAccountNotFound = errors.New("account not found")
	// ErrTransactionExecution 交易已提交但链上执行失败
	ErrTransactionExecution = errors.New("transaction execution failure")
	// ErrSerialization action 或参数格式错误
	ErrSerialization = errors.New("serialization error")
	// ErrMissingKey 本地没有可用的私钥
	ErrMissingKey = errors.New("missing or invalid stored key")
	// ErrNoPendingLogin 没有等待确认的登录
	ErrNoPendingLogin = errors.New("no pending login")
)

type Kind string

const (
	KindUnknown              Kind = "unknown"
	KindSecretStore          Kind = "secret_store_failure"
	KindKeyGeneration        Kind = "key_generation_failure"
	KindNetworkUnavailable   Kind = "network_unavailable"
	KindTimeout              Kind = "timeout"
	KindAccountNotFound      Kind = "account_not_found"
	KindTransactionExecution Kind = "transaction_execution_failure"
	KindSerialization        Kind = "serialization_error"
	KindMissingKey           Kind = "missing_key"
	KindNoPendingLogin       Kind = "no_pending_login"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrSecretStore, KindSecretStore},
	{ErrKeyGeneration, KindKeyGeneration},
	{ErrTimeout, KindTimeout},
	{ErrNetworkUnavailable, KindNetworkUnavailable},
	{ErrAccountNotFound, KindAccountNotFound},
	{ErrTransactionExecution, KindTransactionExecution},
	{ErrSerialization, KindSerialization},
	{ErrMissingKey, KindMissingKey},
	{ErrNoPendingLogin, KindNoPendingLogin},
}

// KindOf classifies err. A bare context deadline counts as a timeout.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// Retryable reports whether the user may simply trigger the same command again.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindSecretStore, KindNetworkUnavailable, KindTimeout, KindAccountNotFound:
		return true
	default:
		return false
	}
}

// UserMessage 返回可以直接展示给用户的提示
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindSecretStore:
		return "Could not access the secure credential storage. Please try again."
	case KindKeyGeneration:
		return "Could not generate a new access key."
	case KindNetworkUnavailable:
		return "The NEAR network could not be reached. Please try again later."
	case KindTimeout:
		return "The NEAR network did not respond in time. Please try again."
	case KindAccountNotFound:
		return "Login details were not found in the NEAR blockchain. Please try again later"
	case KindTransactionExecution:
		return "The transaction was rejected by the NEAR blockchain."
	case KindSerialization:
		return "The request contains malformed arguments."
	case KindMissingKey:
		return "No NEAR access key is stored. Please log in first."
	case KindNoPendingLogin:
		return "There is no login waiting for confirmation. Please log in first."
	default:
		if err == nil {
			return ""
		}
		return err.Error()
	}
}

// Wrap 将底层错误归类到给定的哨兵错误下，同时保留原始错误信息
func Wrap(sentinel error, cause error, msg string) error {
	if cause == nil {
		return errors.Wrap(sentinel, msg)
	}
	return &classified{sentinel: sentinel, cause: errors.Wrap(cause, msg)}
}

type classified struct {
	sentinel error
	cause    error
}

func (c *classified) Error() string {
	return c.cause.Error() + ": " + c.sentinel.Error()
}

func (c *classified) Unwrap() []error {
	return []error{c.sentinel, c.cause}
}
