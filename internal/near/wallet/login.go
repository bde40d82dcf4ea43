// Package wallet builds the redirect URLs understood by the NEAR web wallet:
// the login page that adds a new access key and the sign page that countersigns
// locally built transactions.
package wallet

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kashguard/go-near-auth/internal/config"
)

// DefaultURLTemplate 外部钱包根地址模板
const DefaultURLTemplate = "https://wallet.%s.near.org"

// BaseURL 返回网络对应的钱包根地址（不带末尾斜杠）
func BaseURL(urlTemplate string, network config.Network) string {
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	return strings.TrimRight(fmt.Sprintf(urlTemplate, network.OrDefault()), "/")
}

// LoginURL 构造登录链接。只有 public_key 做百分号编码，title 原样拼接；
// contractID 非空时追加小写的 contract_id。
func LoginURL(walletBase string, publicKey string, appName string, contractID string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(walletBase, "/"))
	b.WriteString("/login/?title=")
	b.WriteString(appName)
	b.WriteString("&public_key=")
	b.WriteString(url.QueryEscape(publicKey))
	if contractID != "" {
		b.WriteString("&contract_id=")
		b.WriteString(strings.ToLower(contractID))
	}
	return b.String()
}

// BuildLoginURL 使用默认钱包地址构造登录链接
func BuildLoginURL(network config.Network, publicKey string, appName string, contractID string) string {
	return LoginURL(BaseURL(DefaultURLTemplate, network), publicKey, appName, contractID)
}
