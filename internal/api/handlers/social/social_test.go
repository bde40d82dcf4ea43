package social_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kashguard/go-near-auth/internal/near/keys"
	"github.com/kashguard/go-near-auth/internal/near/transaction"
	"github.com/kashguard/go-near-auth/internal/test"
	"github.com/kashguard/go-near-auth/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostPublish(t *testing.T) {
	test.WithTestServer(t, func(f *test.Fixtures) {
		ctx := context.Background()
		kp, err := keys.Generate()
		require.NoError(t, err)
		require.NoError(t, f.Server.Store.SaveKeyPair(ctx, kp))
		require.NoError(t, f.Server.Store.SaveAccountID(ctx, "alice.testnet"))

		res := test.PerformRequest(t, f.Server, http.MethodPost, "/api/v1/social/publish", map[string]interface{}{
			"name": "Hello World",
			"tag":  "demo",
			"code": "return <div>Hello</div>;",
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var pub types.PublishResponse
		test.ParseResponseAndValidate(t, res, &pub)
		assert.True(t, pub.Success)
		assert.Equal(t, "alice.testnet", pub.AccountID)
		assert.Equal(t, "helloworld", pub.WidgetKey)
		assert.Equal(t, "https://test.near.social/#/embed/test_alice.testnet/widget/remote-code?code=return%20%3Cdiv%3EHello%3C%2Fdiv%3E%3B", pub.PreviewURL)

		require.Len(t, f.Node.Broadcasted, 1)
		tx := f.Node.Broadcasted[0].Transaction
		assert.Equal(t, "v1.social08.testnet", tx.ReceiverID)
		fc := tx.Actions[0].(*transaction.FunctionCall)
		assert.Equal(t, "set", fc.MethodName)

		var args map[string]map[string]map[string]map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(fc.Args, &args))
		assert.JSONEq(t, `{"":"return <div>Hello</div>;","metadata":{"name":"Hello World","tags":{"demo":""}}}`,
			string(args["data"]["alice.testnet"]["widget"]["helloworld"]))

		res = test.PerformRequest(t, f.Server, http.MethodGet, "/api/v1/auth/account", nil, nil)
		var account types.AccountResponse
		test.ParseResponseAndValidate(t, res, &account)
		assert.Contains(t, account.Messages, "Success!")
	})
}

func TestPostPublishNotLoggedIn(t *testing.T) {
	test.WithTestServer(t, func(f *test.Fixtures) {
		res := test.PerformRequest(t, f.Server, http.MethodPost, "/api/v1/social/publish", map[string]interface{}{
			"name": "w",
			"code": "c",
		}, nil)
		require.Equal(t, http.StatusNotFound, res.Result().StatusCode)
		assert.Empty(t, f.Node.Broadcasted)
	})
}

func TestPostPublishValidation(t *testing.T) {
	test.WithTestServer(t, func(f *test.Fixtures) {
		res := test.PerformRequest(t, f.Server, http.MethodPost, "/api/v1/social/publish", map[string]interface{}{
			"tag": "demo",
		}, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

		var httpErr types.PublicHTTPError
		test.ParseResponseAndValidate(t, res, &httpErr)
		assert.Contains(t, httpErr.Detail, "name")
		assert.Contains(t, httpErr.Detail, "code")
	})
}
