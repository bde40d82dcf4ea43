package types

import (
	"encoding/json"
)

// AccountResponse 当前账户信息
type AccountResponse struct {
	Network   string `json:"network"`
	AccountID string `json:"accountId"`
	PublicKey string `json:"publicKey"`

	// 登录流程状态，如 AwaitingExternalApproval
	State string `json:"state"`

	// 自上次查询以来产生的用户提示
	Messages []string `json:"messages,omitempty"`
}

// LoginResponse 已生成访问密钥，等待用户在钱包中批准
type LoginResponse struct {
	State     string `json:"state"`
	PublicKey string `json:"publicKey"`
	URL       string `json:"url"`
}

// ConfirmLoginResponse 已解析账户并发起授权
type ConfirmLoginResponse struct {
	State     string   `json:"state"`
	AccountID string   `json:"accountId"`
	GrantURL  string   `json:"grantUrl"`
	Messages  []string `json:"messages,omitempty"`
}

// PublishResponse 组件发布结果
type PublishResponse struct {
	AccountID       string `json:"accountId"`
	WidgetKey       string `json:"widgetKey"`
	TransactionHash string `json:"transactionHash"`
	Success         bool   `json:"success"`
	PreviewURL      string `json:"previewUrl"`
}

// ViewResponse 只读调用结果
type ViewResponse struct {
	Result json.RawMessage `json:"result"`
}

// CallResponse 签名调用结果
type CallResponse struct {
	TransactionHash string          `json:"transactionHash"`
	Success         bool            `json:"success"`
	Status          json.RawMessage `json:"status"`
	Logs            []string        `json:"logs"`
}

// HealthResponse 健康检查
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
