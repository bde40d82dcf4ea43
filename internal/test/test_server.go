package test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kashguard/go-near-auth/internal/api"
	"github.com/kashguard/go-near-auth/internal/api/router"
	"github.com/kashguard/go-near-auth/internal/auth"
	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/infra/login"
	"github.com/kashguard/go-near-auth/internal/infra/storage"
	"github.com/kashguard/go-near-auth/internal/metrics"
	"github.com/kashguard/go-near-auth/internal/near/indexer"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// AccountByPublicKeyQuery 索引库查询语句，供 sqlmock 精确匹配
const AccountByPublicKeyQuery = `SELECT account_id FROM public.access_keys WHERE public_key = $1 LIMIT 1`

// Fixtures 测试服务器及其外部依赖的替身
type Fixtures struct {
	Server  *api.Server
	Node    *FakeNode
	SQL     sqlmock.Sqlmock
	Secrets *storage.MemorySecretStore
}

// DefaultTestConfig 指向 testnet、内存密钥存储，不打开浏览器
func DefaultTestConfig() config.Server {
	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Network = config.NetworkTestnet
	cfg.SecretStore.Backend = config.SecretBackendMemory
	cfg.Wallet.OpenBrowser = false
	cfg.Echo.EnableLogger = false
	return cfg
}

// WithTestServer 启动完整装配的服务器，链上节点和索引库均为本地替身
func WithTestServer(t *testing.T, closure func(f *Fixtures)) {
	t.Helper()
	WithTestServerConfigurable(t, DefaultTestConfig(), closure)
}

func WithTestServerConfigurable(t *testing.T, cfg config.Server, closure func(f *Fixtures)) {
	t.Helper()

	node := NewFakeNode(t)
	cfg.RPC.URLTemplate = node.URLTemplate()

	db, mock, err := sqlmock.New(
		sqlmock.MonitorPingsOption(true),
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
	)
	require.NoError(t, err)

	m := metrics.New()
	secrets := storage.NewMemorySecretStore()
	store := auth.NewCredentialStore(secrets, m)
	resolver := indexer.NewResolver(cfg.IndexerEndpoint,
		indexer.WithTimeout(cfg.Indexer.Timeout),
		indexer.WithMetrics(m),
		indexer.WithOpener(func(string, string) (*sql.DB, error) { return db, nil }),
	)
	clients := api.NewRPCClients(cfg, m)
	generator := api.NewKeyGenerator()
	notifier := login.NewLogNotifier()

	ctrl, err := api.NewLoginController(cfg, generator, store, resolver,
		api.NewSignURLBuilder(cfg, clients, generator, m), api.NewOpener(cfg), notifier, m)
	require.NoError(t, err)

	exec := api.NewExecutor(clients, store, m)
	s := &api.Server{
		Config:    cfg,
		Notifier:  notifier,
		Metrics:   m,
		Secrets:   secrets,
		Store:     store,
		Resolver:  resolver,
		RPC:       clients,
		Login:     ctrl,
		Executor:  exec,
		Publisher: api.NewPublisher(cfg, exec, store),
	}
	router.Init(s)
	require.True(t, s.Ready())

	defer func() {
		mock.ExpectClose()
		errs := s.Shutdown(context.Background())
		require.Empty(t, errs)
	}()

	closure(&Fixtures{Server: s, Node: node, SQL: mock, Secrets: secrets})
}

// PerformRequest 直接在 echo 上执行请求，body 非 nil 时编码为 JSON
func PerformRequest(t *testing.T, s *api.Server, method string, path string, body interface{}, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header[k] = v
	}
	if body != nil && req.Header.Get(echo.HeaderContentType) == "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)
	return res
}

// ParseResponseAndValidate 解码 JSON 响应体
func ParseResponseAndValidate(t *testing.T, res *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(res.Result().Body).Decode(v))
}
