package social

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/kashguard/go-near-auth/internal/api"
	"github.com/kashguard/go-near-auth/internal/config"
	socialdb "github.com/kashguard/go-near-auth/internal/infra/social"
	"github.com/kashguard/go-near-auth/internal/types"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/labstack/echo/v4"
)

func PostPublishRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Social.POST("/publish", postPublishHandler(s))
}

func postPublishHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostPublishPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		network := s.Config.Network
		if body.Network != "" {
			network = config.Network(body.Network)
		}

		code := swag.StringValue(body.Code)
		res, err := s.Publisher.Publish(ctx, socialdb.PublishRequest{
			Network: network,
			Name:    swag.StringValue(body.Name),
			Tag:     body.Tag,
			Code:    code,
		})
		if err != nil {
			log.Debug().Err(err).Msg("Failed to publish widget")
			return err
		}

		s.Notifier.Info(ctx, "Success!")

		return c.JSON(http.StatusOK, &types.PublishResponse{
			AccountID:       res.AccountID,
			WidgetKey:       res.WidgetKey,
			TransactionHash: res.TransactionHash,
			Success:         res.Success,
			PreviewURL:      socialdb.WidgetEmbedURL(network, code),
		})
	}
}
