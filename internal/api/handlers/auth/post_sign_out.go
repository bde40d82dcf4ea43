package auth

import (
	"net/http"

	"github.com/kashguard/go-near-auth/internal/api"
	"github.com/labstack/echo/v4"
)

func PostSignOutRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Auth.POST("/sign-out", postSignOutHandler(s))
}

func postSignOutHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		if err := s.Login.SignOut(ctx); err != nil {
			return err
		}

		return c.JSON(http.StatusOK, accountResponse(s, s.Notifier.Latest()))
	}
}
