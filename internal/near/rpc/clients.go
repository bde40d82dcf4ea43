package rpc

import (
	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/metrics"
)

// Clients 每个网络一个客户端，进程内复用
type Clients struct {
	byNetwork map[config.Network]*Client
}

func NewClients(cfg config.Server, m *metrics.Service) *Clients {
	c := &Clients{byNetwork: make(map[config.Network]*Client, 2)}
	for _, network := range []config.Network{config.NetworkMainnet, config.NetworkTestnet} {
		c.byNetwork[network] = ForNetwork(cfg.RPC.URLTemplate, network, cfg.RPC.Timeout, WithMetrics(m))
	}
	return c
}

// For 返回网络对应的客户端，空网络按 mainnet 处理
func (c *Clients) For(network config.Network) *Client {
	return c.byNetwork[network.OrDefault()]
}
