//go:build wireinject

//go:generate wire

package api

import (
	"github.com/google/wire"
	"github.com/kashguard/go-near-auth/internal/auth"
	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/infra/login"
	"github.com/kashguard/go-near-auth/internal/metrics"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	metrics.New,
	login.NewLogNotifier,
	auth.NewCredentialStore,
	chainSet,
	loginSet,
)

var chainSet = wire.NewSet(
	NewRPCClients,
	NewResolver,
	NewExecutor,
	NewPublisher,
)

var loginSet = wire.NewSet(
	NewKeyGenerator,
	NewSignURLBuilder,
	NewOpener,
	NewLoginController,
)

// InitNewServer returns a new Server instance.
func InitNewServer(
	_ config.Server,
) (*Server, error) {
	wire.Build(serviceSet, NewSecretStore)
	return new(Server), nil
}

// InitNewServerWithSecrets returns a new Server instance backed by the given secret store.
// All the other components are initialized via go wire according to the configuration.
func InitNewServerWithSecrets(
	_ config.Server,
	_ auth.SecretStore,
) (*Server, error) {
	wire.Build(serviceSet)
	return new(Server), nil
}
