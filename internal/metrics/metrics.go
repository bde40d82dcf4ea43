package metrics

import (
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/dlmiddlecote/sqlstats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome 请求结果标签
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeError   Outcome = "error"
	OutcomeTimeout Outcome = "timeout"
)

// Service 进程内的 prometheus 指标。每个实例持有独立的 registry，测试中可重复创建。
type Service struct {
	registry *prometheus.Registry

	upUnixSeconds       prometheus.Gauge
	loginTransitions    *prometheus.CounterVec
	rpcRequests         *prometheus.CounterVec
	rpcLatency          *prometheus.HistogramVec
	indexerLookups      *prometheus.CounterVec
	signURLs            *prometheus.CounterVec
	executedCalls       *prometheus.CounterVec
	secretStoreFailures prometheus.Counter

	mu      sync.Mutex
	dbStats map[string]prometheus.Collector
}

func New() *Service {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	s := &Service{
		registry: reg,
		dbStats:  make(map[string]prometheus.Collector),
		upUnixSeconds: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "nearauth_up_timestamp_unix_seconds",
				Help: "Unix timestamp at which the process started",
			},
		),
		loginTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nearauth_login_transitions_total",
				Help: "Authentication flow state transitions",
			},
			[]string{"network", "from", "to"},
		),
		rpcRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nearauth_rpc_requests_total",
				Help: "Chain JSON-RPC requests by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		rpcLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nearauth_rpc_request_duration_seconds",
				Help:    "Latency of chain JSON-RPC requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		indexerLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nearauth_indexer_lookups_total",
				Help: "Account lookups against the read-only indexer",
			},
			[]string{"network", "result"},
		),
		signURLs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nearauth_sign_urls_total",
				Help: "Wallet sign URLs issued",
			},
			[]string{"network", "method"},
		),
		executedCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nearauth_executed_calls_total",
				Help: "Directly submitted function calls by final status",
			},
			[]string{"network", "status"},
		),
		secretStoreFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "nearauth_secret_store_failures_total",
				Help: "Failed reads or writes against the secret store",
			},
		),
	}
	s.upUnixSeconds.SetToCurrentTime()

	return s
}

// Handler 暴露 /metrics
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

// Registry 返回底层 registry，测试用
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Service) RecordLoginTransition(network, from, to string) {
	if s == nil {
		return
	}
	s.loginTransitions.With(prometheus.Labels{"network": network, "from": from, "to": to}).Inc()
}

func (s *Service) RecordRPC(method string, outcome Outcome, took time.Duration) {
	if s == nil {
		return
	}
	s.rpcRequests.With(prometheus.Labels{"method": method, "outcome": string(outcome)}).Inc()
	s.rpcLatency.With(prometheus.Labels{"method": method}).Observe(took.Seconds())
}

// RecordIndexerLookup result 取值 found / not_found / error
func (s *Service) RecordIndexerLookup(network, result string) {
	if s == nil {
		return
	}
	s.indexerLookups.With(prometheus.Labels{"network": network, "result": result}).Inc()
}

func (s *Service) RecordSignURL(network, method string) {
	if s == nil {
		return
	}
	s.signURLs.With(prometheus.Labels{"network": network, "method": method}).Inc()
}

func (s *Service) RecordExecutedCall(network string, success bool) {
	if s == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	s.executedCalls.With(prometheus.Labels{"network": network, "status": status}).Inc()
}

func (s *Service) IncSecretStoreFailure() {
	if s == nil {
		return
	}
	s.secretStoreFailures.Inc()
}

// RegisterDBStats 导出连接池统计，同名连接池重复注册时替换旧的
func (s *Service) RegisterDBStats(name string, db *sql.DB) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.dbStats[name]; ok {
		s.registry.Unregister(prev)
		delete(s.dbStats, name)
	}

	collector := sqlstats.NewStatsCollector(name, db)
	if err := s.registry.Register(collector); err != nil {
		return err
	}
	s.dbStats[name] = collector
	return nil
}

func (s *Service) UnregisterDBStats(name string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.dbStats[name]; ok {
		s.registry.Unregister(prev)
		delete(s.dbStats, name)
	}
}
