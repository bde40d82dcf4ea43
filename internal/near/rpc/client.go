package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/metrics"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/pkg/errors"
)

// DefaultTimeout 单次 RPC 调用的超时时间
const DefaultTimeout = 30 * time.Second

// Client NEAR JSON-RPC 客户端
type Client struct {
	endpoint string
	client   *http.Client
	metrics  *metrics.Service
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithMetrics 记录请求数与耗时
func WithMetrics(m *metrics.Service) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient 创建 RPC 客户端，timeout <= 0 时使用 DefaultTimeout
func NewClient(endpoint string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForNetwork 按 URL 模板（如 https://rpc.%s.near.org）创建指定网络的客户端
func ForNetwork(urlTemplate string, network config.Network, timeout time.Duration, opts ...Option) *Client {
	return NewClient(fmt.Sprintf(urlTemplate, network.OrDefault()), timeout, opts...)
}

// Endpoint 返回 RPC 地址
func (c *Client) Endpoint() string {
	return c.endpoint
}

// request JSON-RPC 请求，NEAR 的 params 可以是对象也可以是数组
type request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// call 执行 RPC 调用并将 result 解码到 out
func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordRPC(method, outcomeOf(err), time.Since(start))
	}()

	req := &request{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return autherr.Wrap(autherr.ErrSerialization, err, "failed to marshal RPC request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return autherr.Wrap(autherr.ErrNetworkUnavailable, err, "failed to create HTTP request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return classifyTransportError(ctx, err, method)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransportError(ctx, err, method)
	}

	if resp.StatusCode >= http.StatusInternalServerError && len(bytes.TrimSpace(body)) == 0 {
		return errors.Wrapf(autherr.ErrNetworkUnavailable, "RPC %s returned HTTP %d", method, resp.StatusCode)
	}

	var rpcResp response
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return errors.Wrapf(autherr.ErrNetworkUnavailable, "RPC %s returned HTTP %d", method, resp.StatusCode)
		}
		return autherr.Wrap(autherr.ErrSerialization, err, "failed to decode RPC response")
	}

	if rpcResp.Error != nil {
		util.LogFromContext(ctx).Debug().
			Str("method", method).
			Str("error_name", rpcResp.Error.Name).
			Str("cause", rpcResp.Error.CauseName()).
			Msg("RPC returned error")
		return rpcResp.Error
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return autherr.Wrap(autherr.ErrSerialization, err, fmt.Sprintf("failed to unmarshal %s result", method))
	}
	return nil
}

func classifyTransportError(ctx context.Context, err error, method string) error {
	if ctx.Err() == context.DeadlineExceeded || isTimeout(err) {
		return autherr.Wrap(autherr.ErrTimeout, err, fmt.Sprintf("RPC %s timed out", method))
	}
	return autherr.Wrap(autherr.ErrNetworkUnavailable, err, fmt.Sprintf("RPC %s failed", method))
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout exceeded")
}

func outcomeOf(err error) metrics.Outcome {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case autherr.KindOf(err) == autherr.KindTimeout:
		return metrics.OutcomeTimeout
	default:
		return metrics.OutcomeError
	}
}
