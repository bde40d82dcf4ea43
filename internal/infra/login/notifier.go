package login

import (
	"context"
	"sync"

	"github.com/kashguard/go-near-auth/internal/auth"
	"github.com/kashguard/go-near-auth/internal/util"
)

// LogNotifier 将通知写入日志，并保留最近一次账户信息和提示，供宿主应用轮询
type LogNotifier struct {
	mu       sync.RWMutex
	details  auth.AccountDetails
	messages []string
	limit    int
}

const defaultMessageLimit = 20

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{limit: defaultMessageLimit}
}

func (n *LogNotifier) AccountDetails(ctx context.Context, details auth.AccountDetails) {
	n.mu.Lock()
	n.details = details
	n.mu.Unlock()

	util.LogFromContext(ctx).Info().
		Str("network", details.Network.String()).
		Str("account_id", details.AccountID).
		Str("public_key", details.PublicKey).
		Msg("Account details updated")
}

func (n *LogNotifier) Info(ctx context.Context, message string) {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	if len(n.messages) > n.limit {
		n.messages = n.messages[len(n.messages)-n.limit:]
	}
	n.mu.Unlock()

	util.LogFromContext(ctx).Info().Str("message", message).Msg("User notification")
}

// Latest 最近一次推送的账户信息
func (n *LogNotifier) Latest() auth.AccountDetails {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.details
}

// Drain 取出并清空尚未读取的提示
func (n *LogNotifier) Drain() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	msgs := n.messages
	n.messages = nil
	return msgs
}
