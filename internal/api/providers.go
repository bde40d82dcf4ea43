package api

import (
	"context"

	"github.com/kashguard/go-near-auth/internal/auth"
	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/infra/login"
	"github.com/kashguard/go-near-auth/internal/infra/social"
	"github.com/kashguard/go-near-auth/internal/infra/storage"
	"github.com/kashguard/go-near-auth/internal/metrics"
	"github.com/kashguard/go-near-auth/internal/near/executor"
	"github.com/kashguard/go-near-auth/internal/near/indexer"
	"github.com/kashguard/go-near-auth/internal/near/keys"
	"github.com/kashguard/go-near-auth/internal/near/rpc"
	"github.com/kashguard/go-near-auth/internal/near/wallet"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/rs/zerolog/log"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs to prevent the requirements for defining providers for sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

func NewSecretStore(cfg config.Server) (auth.SecretStore, error) {
	return storage.NewBackend(cfg.SecretStore)
}

func NewRPCClients(cfg config.Server, m *metrics.Service) *rpc.Clients {
	return rpc.NewClients(cfg, m)
}

func NewResolver(cfg config.Server, m *metrics.Service) *indexer.Resolver {
	return indexer.NewResolverFromConfig(cfg, m)
}

func NewKeyGenerator() keys.Generator {
	return keys.NewRandomGenerator()
}

func NewSignURLBuilder(cfg config.Server, clients *rpc.Clients, generator keys.Generator, m *metrics.Service) *wallet.SignURLBuilder {
	fetchers := func(network config.Network) wallet.BlockHashFetcher {
		return clients.For(network)
	}
	return wallet.NewSignURLBuilder(fetchers, generator, cfg.Wallet.URLTemplate, m)
}

func NewExecutor(clients *rpc.Clients, store *auth.CredentialStore, m *metrics.Service) *executor.Executor {
	return executor.NewExecutor(executor.RPCChains(clients), store, m)
}

func NewPublisher(cfg config.Server, exec *executor.Executor, store *auth.CredentialStore) *social.Publisher {
	return social.NewPublisher(exec, store, cfg.SocialContract)
}

// NewOpener 服务模式下链接随响应返回，配置开启时同时在本机浏览器中打开
func NewOpener(cfg config.Server) login.Opener {
	return login.OpenerFunc(func(ctx context.Context, url string) error {
		if !cfg.Wallet.OpenBrowser {
			util.LogFromContext(ctx).Debug().Str("url", url).Msg("Returning wallet URL to caller")
			return nil
		}
		return util.OpenBrowser(ctx, url)
	})
}

func NewLoginController(
	cfg config.Server,
	generator keys.Generator,
	store *auth.CredentialStore,
	resolver *indexer.Resolver,
	signURLs *wallet.SignURLBuilder,
	opener login.Opener,
	notifier *login.LogNotifier,
	m *metrics.Service,
) (*login.Controller, error) {
	ctrl := login.NewController(login.ConfigFromServer(cfg, cfg.Network), login.Deps{
		Keys:     generator,
		Store:    store,
		Resolver: resolver,
		SignURLs: signURLs,
		Opener:   opener,
		Notifier: notifier,
		Metrics:  m,
	})

	state, err := ctrl.Restore(context.Background())
	if err != nil {
		return nil, err
	}
	log.Debug().Str("state", state.String()).Str("network", cfg.Network.String()).Msg("Restored login state")

	return ctrl, nil
}
