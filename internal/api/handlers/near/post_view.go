package near

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/kashguard/go-near-auth/internal/api"
	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/types"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/labstack/echo/v4"
)

func PostViewRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Near.POST("/view", postViewHandler(s))
}

func postViewHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var body types.PostViewPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		var args interface{}
		if len(body.Args) > 0 {
			args = body.Args
		}

		result, err := s.Executor.View(ctx, networkOrDefault(s, body.Network), swag.StringValue(body.ContractID), swag.StringValue(body.MethodName), args)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, &types.ViewResponse{Result: result})
	}
}

func networkOrDefault(s *api.Server, network string) config.Network {
	if network == "" {
		return s.Config.Network
	}
	return config.Network(network)
}
