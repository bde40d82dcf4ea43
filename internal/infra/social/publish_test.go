package social_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kashguard/go-near-auth/internal/auth"
	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/infra/social"
	"github.com/kashguard/go-near-auth/internal/infra/storage"
	"github.com/kashguard/go-near-auth/internal/near/executor"
	"github.com/kashguard/go-near-auth/internal/near/rpc"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCaller struct {
	mock.Mock
}

func (m *mockCaller) Call(ctx context.Context, req executor.CallRequest) (*executor.Outcome, error) {
	args := m.Called(ctx, req)
	outcome, _ := args.Get(0).(*executor.Outcome)
	return outcome, args.Error(1)
}

func contracts(network config.Network) string {
	if network == config.NetworkTestnet {
		return "v1.social08.testnet"
	}
	return "social.near"
}

func loggedIn(t *testing.T, accountID string) *auth.CredentialStore {
	t.Helper()
	store := auth.NewCredentialStore(storage.NewMemorySecretStore(), nil)
	require.NoError(t, store.SaveAccountID(context.Background(), accountID))
	return store
}

func TestWidgetArgs(t *testing.T) {
	raw, err := json.Marshal(social.WidgetArgs("alice.near", "My Widget", "app", "return <div/>;"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"alice.near":{"widget":{"mywidget":{
		"":"return <div/>;",
		"metadata":{"name":"My Widget","tags":{"app":""}}
	}}}}}`, string(raw))
}

func TestWidgetEmbedURL(t *testing.T) {
	assert.Equal(t,
		"https://test.near.social/#/embed/test_alice.testnet/widget/remote-code?code=return%20%3Cdiv%3EHi%3C%2Fdiv%3E%3B",
		social.WidgetEmbedURL(config.NetworkTestnet, "return <div>Hi</div>;"))
	assert.Equal(t,
		"https://near.social/#/embed/zavodil.near/widget/remote-code?code=a%2Bb%3D1",
		social.WidgetEmbedURL(config.NetworkMainnet, "a+b=1"))
	assert.Equal(t,
		"https://near.social/#/embed/zavodil.near/widget/remote-code?code=f(!'x'*2)~-_.%25",
		social.WidgetEmbedURL(config.NetworkMainnet, "f(!'x'*2)~-_.%"))
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	caller := &mockCaller{}
	p := social.NewPublisher(caller, loggedIn(t, "alice.testnet"), contracts)

	empty := ""
	caller.On("Call", ctx, mock.MatchedBy(func(req executor.CallRequest) bool {
		return req.Network == config.NetworkTestnet &&
			req.AccountID == "alice.testnet" &&
			req.ContractID == "v1.social08.testnet" &&
			req.MethodName == social.SetMethod &&
			req.Gas == 0 && req.Deposit == nil
	})).Return(&executor.Outcome{TransactionHash: "tx1", Status: rpc.ExecutionStatus{SuccessValue: &empty}}, nil).Once()

	res, err := p.Publish(ctx, social.PublishRequest{Network: config.NetworkTestnet, Name: "Hello World", Tag: "demo", Code: "return 1;"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "helloworld", res.WidgetKey)
	assert.Equal(t, "tx1", res.TransactionHash)
	caller.AssertExpectations(t)
}

func TestPublishExecutionFailure(t *testing.T) {
	ctx := context.Background()
	caller := &mockCaller{}
	p := social.NewPublisher(caller, loggedIn(t, "alice.near"), contracts)

	caller.On("Call", ctx, mock.Anything).Return(
		&executor.Outcome{TransactionHash: "tx2", Status: rpc.ExecutionStatus{Failure: json.RawMessage(`{"ActionError":{}}`)}},
		errors.Wrap(autherr.ErrTransactionExecution, "transaction tx2 did not succeed"),
	).Once()

	res, err := p.Publish(ctx, social.PublishRequest{Name: "w", Tag: "t", Code: "c"})
	assert.ErrorIs(t, err, autherr.ErrTransactionExecution)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Equal(t, "tx2", res.TransactionHash)
}

func TestPublishRequiresLogin(t *testing.T) {
	caller := &mockCaller{}
	p := social.NewPublisher(caller, auth.NewCredentialStore(storage.NewMemorySecretStore(), nil), contracts)

	_, err := p.Publish(context.Background(), social.PublishRequest{Name: "w", Code: "c"})
	assert.ErrorIs(t, err, autherr.ErrAccountNotFound)

	_, err = p.Publish(context.Background(), social.PublishRequest{Name: " ", Code: "c"})
	assert.ErrorIs(t, err, autherr.ErrSerialization)
	caller.AssertNotCalled(t, "Call", mock.Anything, mock.Anything)
}

func TestPublishNetworkError(t *testing.T) {
	ctx := context.Background()
	caller := &mockCaller{}
	p := social.NewPublisher(caller, loggedIn(t, "alice.near"), contracts)
	caller.On("Call", ctx, mock.Anything).Return(nil, errors.Wrap(autherr.ErrNetworkUnavailable, "dial")).Once()

	res, err := p.Publish(ctx, social.PublishRequest{Name: "w", Code: "c"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, autherr.ErrNetworkUnavailable)
}
