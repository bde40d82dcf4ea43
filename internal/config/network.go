package config

import (
	"fmt"
	"strings"
)

// Network NEAR 网络标识
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// DefaultNetwork 未指定网络时使用主网
const DefaultNetwork = NetworkMainnet

// ParseNetwork 解析网络名称，空字符串返回默认网络
func ParseNetwork(s string) (Network, error) {
	switch Network(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultNetwork, nil
	case NetworkMainnet:
		return NetworkMainnet, nil
	case NetworkTestnet:
		return NetworkTestnet, nil
	default:
		return "", fmt.Errorf("unsupported network %q", s)
	}
}

func (n Network) String() string {
	return string(n)
}

// OrDefault 返回 n，若为空则返回主网
func (n Network) OrDefault() Network {
	if n == "" {
		return DefaultNetwork
	}
	return n
}

// IndexerEndpoint 只读索引库连接参数
type IndexerEndpoint struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
}

// DSN 返回 lib/pq 可用的 key=value 连接串
func (e IndexerEndpoint) DSN() string {
	sslMode := e.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		quoteDSN(e.Host), e.Port, quoteDSN(e.Database), quoteDSN(e.User), quoteDSN(e.Password), sslMode)
}

func quoteDSN(v string) string {
	if v == "" || strings.ContainsAny(v, ` '\`) {
		r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
		return "'" + r.Replace(v) + "'"
	}
	return v
}
