package common

import (
	"context"
	"net/http"
	"time"

	"github.com/kashguard/go-near-auth/internal/api"
	"github.com/kashguard/go-near-auth/internal/types"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/labstack/echo/v4"
)

const healthTimeout = 5 * time.Second

func GetHealthyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/healthy", getHealthyHandler(s))
}

// 检查当前网络的 RPC 节点和索引库，任一不可用返回 503
func getHealthyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
		defer cancel()
		log := util.LogFromContext(ctx)

		res := &types.HealthResponse{Status: "ok", Checks: map[string]string{}}

		if _, err := s.RPC.For(s.Config.Network).Status(ctx); err != nil {
			log.Warn().Err(err).Msg("Health check: RPC node unreachable")
			res.Checks["rpc"] = err.Error()
			res.Status = "unhealthy"
		} else {
			res.Checks["rpc"] = "ok"
		}

		if err := s.Resolver.Ping(ctx, s.Config.Network); err != nil {
			log.Warn().Err(err).Msg("Health check: indexer unreachable")
			res.Checks["indexer"] = err.Error()
			res.Status = "unhealthy"
		} else {
			res.Checks["indexer"] = "ok"
		}

		if res.Status != "ok" {
			return c.JSON(http.StatusServiceUnavailable, res)
		}
		return c.JSON(http.StatusOK, res)
	}
}
