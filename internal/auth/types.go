package auth

import (
	"github.com/kashguard/go-near-auth/internal/config"
)

// 凭据存储中使用的键
const (
	KeyPublicKey  = "public_key"
	KeyPrivateKey = "private_key"
	KeyAccountID  = "account_id"
)

// AllKeys 退出登录时需要清空的全部键
var AllKeys = []string{KeyPublicKey, KeyPrivateKey, KeyAccountID}

// Identity 当前身份。空字符串表示不存在。
type Identity struct {
	AccountID  string
	PublicKey  string
	PrivateKey string
}

// HasKeyPair 公私钥是否都已存在
func (i Identity) HasKeyPair() bool {
	return i.PublicKey != "" && i.PrivateKey != ""
}

// IsAuthenticated 账户已解析且持有密钥
func (i Identity) IsAuthenticated() bool {
	return i.AccountID != "" && i.HasKeyPair()
}

// AccountDetails 发往宿主应用的账户信息，退出登录后 AccountID 与 PublicKey 为空
type AccountDetails struct {
	Network   config.Network `json:"network"`
	AccountID string         `json:"accountId"`
	PublicKey string         `json:"publicKey"`
}
