package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/kashguard/go-near-auth/internal/auth"
	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/infra/login"
	"github.com/kashguard/go-near-auth/internal/infra/social"
	"github.com/kashguard/go-near-auth/internal/metrics"
	"github.com/kashguard/go-near-auth/internal/near/executor"
	"github.com/kashguard/go-near-auth/internal/near/indexer"
	"github.com/kashguard/go-near-auth/internal/near/rpc"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type Router struct {
	Routes      []*echo.Route
	Root        *echo.Group
	Management  *echo.Group
	APIV1Auth   *echo.Group
	APIV1Social *echo.Group
	APIV1Near   *echo.Group
}

// Server is a central struct keeping all the dependencies.
// It is initialized with wire, which handles making the new instances of the components
// in the right order. To add a new component, 3 steps are required:
// - declaring it in this struct
// - adding a provider function in providers.go
// - adding the provider's function name to the arguments of wire.Build() in wire.go
//
// Components labeled as `wire:"-"` will be skipped and have to be initialized after the InitNewServer* call.
type Server struct {
	Config    config.Server
	Echo      *echo.Echo `wire:"-"`
	Router    *Router    `wire:"-"`
	Notifier  *login.LogNotifier
	Metrics   *metrics.Service
	Secrets   auth.SecretStore
	Store     *auth.CredentialStore
	Resolver  *indexer.Resolver
	RPC       *rpc.Clients
	Login     *login.Controller
	Executor  *executor.Executor
	Publisher *social.Publisher
}

func newServerWithComponents(
	cfg config.Server,
	notifier *login.LogNotifier,
	m *metrics.Service,
	secrets auth.SecretStore,
	store *auth.CredentialStore,
	resolver *indexer.Resolver,
	clients *rpc.Clients,
	controller *login.Controller,
	exec *executor.Executor,
	publisher *social.Publisher,
) *Server {
	return &Server{
		Config:    cfg,
		Notifier:  notifier,
		Metrics:   m,
		Secrets:   secrets,
		Store:     store,
		Resolver:  resolver,
		RPC:       clients,
		Login:     controller,
		Executor:  exec,
		Publisher: publisher,
	}
}

// Ready 所有依赖均已初始化
func (s *Server) Ready() bool {
	return s.Echo != nil &&
		s.Router != nil &&
		s.Store != nil &&
		s.Resolver != nil &&
		s.RPC != nil &&
		s.Login != nil &&
		s.Executor != nil &&
		s.Publisher != nil
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Shutting down server")

	var errs []error

	if s.Resolver != nil {
		log.Debug().Msg("Closing indexer connections")
		if err := s.Resolver.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close indexer connections")
			errs = append(errs, err)
		}
	}

	if closer, ok := s.Secrets.(interface{ Close() error }); ok {
		log.Debug().Msg("Closing secret store")
		if err := closer.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close secret store")
			errs = append(errs, err)
		}
	}

	if s.Echo != nil {
		log.Debug().Msg("Shutting down echo server")
		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to shutdown echo server")
			errs = append(errs, err)
		}
	}

	return errs
}
