package auth

import (
	"net/http"

	"github.com/kashguard/go-near-auth/internal/api"
	"github.com/kashguard/go-near-auth/internal/types"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/labstack/echo/v4"
)

func PostConfirmLoginRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Auth.POST("/confirm-login", postConfirmLoginHandler(s))
}

// 账户尚未出现在索引中时返回 404，调用方可稍后重试
func postConfirmLoginHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		res, err := s.Login.ConfirmLogin(ctx)
		if err != nil {
			log.Debug().Err(err).Str("state", s.Login.State().String()).Msg("Failed to confirm login")
			s.Notifier.Drain()
			return err
		}

		return c.JSON(http.StatusOK, &types.ConfirmLoginResponse{
			State:     s.Login.State().String(),
			AccountID: res.AccountID,
			GrantURL:  res.GrantURL,
			Messages:  s.Notifier.Drain(),
		})
	}
}
