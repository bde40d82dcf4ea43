package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kashguard/go-near-auth/internal/api"
	"github.com/kashguard/go-near-auth/internal/infra/login"
	"github.com/kashguard/go-near-auth/internal/test"
	"github.com/kashguard/go-near-auth/internal/util/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithServer(t *testing.T) {
	ctx := context.Background()
	cfg := test.DefaultTestConfig()
	cfg.Logger.PrettyPrintConsole = false

	var testError = errors.New("test error")

	resultErr := command.WithServer(ctx, cfg, func(ctx context.Context, s *api.Server) error {
		require.NotNil(t, s.Login)
		assert.Equal(t, login.StateUnauthenticated, s.Login.State())

		details, err := s.Login.AccountDetails(ctx)
		require.NoError(t, err)
		assert.Empty(t, details.AccountID)

		return testError
	})

	assert.Equal(t, testError, resultErr)
}

func TestNewSubcommandGroup(t *testing.T) {
	group := command.NewSubcommandGroup("probe", command.NewSubcommandGroup("chain"), command.NewSubcommandGroup("indexer"))

	assert.Equal(t, "probe", group.Use)
	require.Len(t, group.Commands(), 2)
	assert.Equal(t, "chain", group.Commands()[0].Use)
}
