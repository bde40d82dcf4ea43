package auth

import (
	"net/http"

	"github.com/kashguard/go-near-auth/internal/api"
	nearauth "github.com/kashguard/go-near-auth/internal/auth"
	"github.com/kashguard/go-near-auth/internal/types"
	"github.com/labstack/echo/v4"
)

func GetAccountRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Auth.GET("/account", getAccountHandler(s))
}

func getAccountHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		details, err := s.Login.AccountDetails(ctx)
		if err != nil {
			return err
		}

		res := accountResponse(s, details)
		res.Messages = s.Notifier.Drain()
		return c.JSON(http.StatusOK, res)
	}
}

func accountResponse(s *api.Server, details nearauth.AccountDetails) *types.AccountResponse {
	return &types.AccountResponse{
		Network:   details.Network.String(),
		AccountID: details.AccountID,
		PublicKey: details.PublicKey,
		State:     s.Login.State().String(),
	}
}
