package handlers

import (
	"github.com/kashguard/go-near-auth/internal/api"
	"github.com/kashguard/go-near-auth/internal/api/handlers/auth"
	"github.com/kashguard/go-near-auth/internal/api/handlers/common"
	"github.com/kashguard/go-near-auth/internal/api/handlers/near"
	"github.com/kashguard/go-near-auth/internal/api/handlers/social"
	"github.com/labstack/echo/v4"
)

func AttachAllRoutes(s *api.Server) {
	s.Router.Routes = []*echo.Route{
		auth.GetAccountRoute(s),
		auth.PostConfirmLoginRoute(s),
		auth.PostLoginRoute(s),
		auth.PostSignOutRoute(s),
		common.GetHealthyRoute(s),
		common.GetMetricsRoute(s),
		near.PostCallRoute(s),
		near.PostViewRoute(s),
		social.PostPublishRoute(s),
	}
}
