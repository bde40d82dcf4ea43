// Package indexer looks up accounts in the public read-only NEAR explorer
// database, which mirrors access keys into a relational form the chain RPC
// cannot query by public key.
package indexer

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/metrics"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/pkg/errors"

	_ "github.com/lib/pq"
)

const (
	// DefaultTimeout 单次查询（含建连）的超时时间
	DefaultTimeout = 15 * time.Second

	accountByPublicKeyQuery = `SELECT account_id FROM public.access_keys WHERE public_key = $1 LIMIT 1`
)

// Opener 打开数据库连接，测试中替换为 sqlmock
type Opener func(driverName string, dsn string) (*sql.DB, error)

// EndpointFunc 返回网络对应的索引库
type EndpointFunc func(network config.Network) config.IndexerEndpoint

// Resolver 通过公钥反查账户
type Resolver struct {
	endpoints EndpointFunc
	timeout   time.Duration
	open      Opener
	metrics   *metrics.Service

	mu  sync.Mutex
	dbs map[config.Network]*sql.DB
}

// Option Resolver 选项
type Option func(*Resolver)

func WithOpener(open Opener) Option {
	return func(r *Resolver) {
		r.open = open
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

func WithMetrics(m *metrics.Service) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func NewResolver(endpoints EndpointFunc, opts ...Option) *Resolver {
	r := &Resolver{
		endpoints: endpoints,
		timeout:   DefaultTimeout,
		open:      openPostgres,
		dbs:       make(map[config.Network]*sql.DB),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewResolverFromConfig 使用服务配置中的索引库地址与超时
func NewResolverFromConfig(cfg config.Server, m *metrics.Service) *Resolver {
	return NewResolver(cfg.IndexerEndpoint, WithTimeout(cfg.Indexer.Timeout), WithMetrics(m))
}

func openPostgres(driverName string, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)
	return db, nil
}

// ResolveAccountByPublicKey 返回持有该公钥的账户（最多一个）。
// 没有匹配记录时返回 ("", false, nil)；无法连接索引库时返回错误，两者不会混淆。
func (r *Resolver) ResolveAccountByPublicKey(ctx context.Context, network config.Network, publicKey string) (string, bool, error) {
	network = network.OrDefault()
	log := util.LogFromContext(ctx).With().Str("network", network.String()).Str("public_key", publicKey).Logger()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	db, err := r.db(ctx, network)
	if err != nil {
		r.metrics.RecordIndexerLookup(network.String(), "error")
		log.Warn().Err(err).Msg("Indexer unavailable")
		return "", false, err
	}

	var accountID string
	err = db.QueryRowContext(ctx, accountByPublicKeyQuery, publicKey).Scan(&accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			r.metrics.RecordIndexerLookup(network.String(), "not_found")
			log.Debug().Msg("No account found for public key")
			return "", false, nil
		}
		r.metrics.RecordIndexerLookup(network.String(), "error")
		return "", false, classify(ctx, err, "failed to query access keys")
	}

	r.metrics.RecordIndexerLookup(network.String(), "found")
	log.Debug().Str("account_id", accountID).Msg("Resolved account for public key")
	return accountID, true, nil
}

// Ping 检查索引库是否可达
func (r *Resolver) Ping(ctx context.Context, network config.Network) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	db, err := r.db(ctx, network.OrDefault())
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return classify(ctx, err, "failed to ping indexer")
	}
	return nil
}

// Close 关闭所有缓存的连接
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for network, db := range r.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "failed to close %s indexer connection", network)
		}
		delete(r.dbs, network)
		r.metrics.UnregisterDBStats(statsName(network))
	}
	return firstErr
}

// db 返回网络对应的连接，首次使用时建连并 ping，失败的连接不缓存
func (r *Resolver) db(ctx context.Context, network config.Network) (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if db, ok := r.dbs[network]; ok {
		return db, nil
	}

	endpoint := r.endpoints(network)
	db, err := r.open("postgres", endpoint.DSN())
	if err != nil {
		return nil, autherr.Wrap(autherr.ErrNetworkUnavailable, err, "failed to open indexer connection")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, classify(ctx, err, "failed to connect to indexer "+endpoint.Host)
	}

	r.dbs[network] = db
	if err := r.metrics.RegisterDBStats(statsName(network), db); err != nil {
		util.LogFromContext(ctx).Warn().Err(err).Str("network", network.String()).Msg("Failed to register indexer pool metrics")
	}
	return db, nil
}

func statsName(network config.Network) string {
	return "indexer_" + network.String()
}

func classify(ctx context.Context, err error, msg string) error {
	if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
		return autherr.Wrap(autherr.ErrTimeout, err, msg)
	}
	return autherr.Wrap(autherr.ErrNetworkUnavailable, err, msg)
}
