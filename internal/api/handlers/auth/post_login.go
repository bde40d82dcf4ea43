package auth

import (
	"net/http"

	"github.com/kashguard/go-near-auth/internal/api"
	"github.com/kashguard/go-near-auth/internal/types"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/labstack/echo/v4"
)

func PostLoginRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Auth.POST("/login", postLoginHandler(s))
}

func postLoginHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		res, err := s.Login.Login(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to start login")
			return err
		}

		return c.JSON(http.StatusOK, &types.LoginResponse{
			State:     s.Login.State().String(),
			PublicKey: res.PublicKey,
			URL:       res.URL,
		})
	}
}
