package auth_test

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kashguard/go-near-auth/internal/near/transaction"
	"github.com/kashguard/go-near-auth/internal/near/wallet"
	"github.com/kashguard/go-near-auth/internal/test"
	"github.com/kashguard/go-near-auth/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginFlow(t *testing.T) {
	test.WithTestServer(t, func(f *test.Fixtures) {
		s := f.Server

		res := test.PerformRequest(t, s, http.MethodPost, "/api/v1/auth/login", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var loginRes types.LoginResponse
		test.ParseResponseAndValidate(t, res, &loginRes)
		assert.Equal(t, "AwaitingExternalApproval", loginRes.State)
		assert.Contains(t, loginRes.URL, "https://wallet.testnet.near.org/login/?title=Ext&public_key=")

		u, err := url.Parse(loginRes.URL)
		require.NoError(t, err)
		assert.Equal(t, loginRes.PublicKey, u.Query().Get("public_key"))
		assert.Equal(t, "v1.social08.testnet", u.Query().Get("contract_id"))

		// 钱包尚未批准
		f.SQL.ExpectPing()
		f.SQL.ExpectQuery(test.AccountByPublicKeyQuery).
			WithArgs(loginRes.PublicKey).
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}))

		res = test.PerformRequest(t, s, http.MethodPost, "/api/v1/auth/confirm-login", nil, nil)
		require.Equal(t, http.StatusNotFound, res.Result().StatusCode)

		var httpErr types.PublicHTTPError
		test.ParseResponseAndValidate(t, res, &httpErr)
		assert.Equal(t, "account_not_found", httpErr.Type)
		assert.Equal(t, "Login details were not found in the NEAR blockchain. Please try again later", httpErr.Title)
		assert.True(t, httpErr.Retryable)

		// 批准后再次确认
		f.SQL.ExpectQuery(test.AccountByPublicKeyQuery).
			WithArgs(loginRes.PublicKey).
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow("alice.testnet"))

		res = test.PerformRequest(t, s, http.MethodPost, "/api/v1/auth/confirm-login", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var confirmRes types.ConfirmLoginResponse
		test.ParseResponseAndValidate(t, res, &confirmRes)
		assert.Equal(t, "Authenticated", confirmRes.State)
		assert.Equal(t, "alice.testnet", confirmRes.AccountID)
		assert.Contains(t, confirmRes.Messages, "NEAR account alice.testnet successfully logged in!")
		assert.Contains(t, confirmRes.Messages, "Now grant permission in the NEAR wallet to proceed")

		txs, _, err := wallet.DecodeSignURL(confirmRes.GrantURL)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "alice.testnet", txs[0].SignerID)
		assert.Equal(t, "v1.social08.testnet", txs[0].ReceiverID)
		assert.Equal(t, f.Node.BlockHash, txs[0].BlockHash)
		fc := txs[0].Actions[0].(*transaction.FunctionCall)
		assert.Equal(t, "grant_write_permission", fc.MethodName)
		assert.JSONEq(t, `{"public_key":"`+loginRes.PublicKey+`","keys":["alice.testnet"]}`, string(fc.Args))

		res = test.PerformRequest(t, s, http.MethodGet, "/api/v1/auth/account", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var account types.AccountResponse
		test.ParseResponseAndValidate(t, res, &account)
		assert.Equal(t, "testnet", account.Network)
		assert.Equal(t, "alice.testnet", account.AccountID)
		assert.Equal(t, loginRes.PublicKey, account.PublicKey)
		assert.Equal(t, "Authenticated", account.State)

		for i := 0; i < 2; i++ {
			res = test.PerformRequest(t, s, http.MethodPost, "/api/v1/auth/sign-out", nil, nil)
			require.Equal(t, http.StatusOK, res.Result().StatusCode)

			var out types.AccountResponse
			test.ParseResponseAndValidate(t, res, &out)
			assert.Equal(t, types.AccountResponse{Network: "testnet", State: "Unauthenticated"}, out)
		}

		assert.NoError(t, f.SQL.ExpectationsWereMet())
	})
}

func TestConfirmLoginWithoutLogin(t *testing.T) {
	test.WithTestServer(t, func(f *test.Fixtures) {
		res := test.PerformRequest(t, f.Server, http.MethodPost, "/api/v1/auth/confirm-login", nil, nil)
		require.Equal(t, http.StatusConflict, res.Result().StatusCode)

		var httpErr types.PublicHTTPError
		test.ParseResponseAndValidate(t, res, &httpErr)
		assert.Equal(t, "no_pending_login", httpErr.Type)
		assert.False(t, httpErr.Retryable)
	})
}

func TestConfirmLoginIndexerUnavailable(t *testing.T) {
	test.WithTestServer(t, func(f *test.Fixtures) {
		res := test.PerformRequest(t, f.Server, http.MethodPost, "/api/v1/auth/login", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		f.SQL.ExpectPing().WillReturnError(errors.New("connection refused"))
		f.SQL.ExpectClose()

		res = test.PerformRequest(t, f.Server, http.MethodPost, "/api/v1/auth/confirm-login", nil, nil)
		require.Equal(t, http.StatusServiceUnavailable, res.Result().StatusCode)

		var httpErr types.PublicHTTPError
		test.ParseResponseAndValidate(t, res, &httpErr)
		assert.Equal(t, "network_unavailable", httpErr.Type)
		assert.True(t, httpErr.Retryable)
		assert.Equal(t, "AwaitingExternalApproval", f.Server.Login.State().String())
	})
}
