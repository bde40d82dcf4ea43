package router

import (
	"strings"

	"github.com/kashguard/go-near-auth/internal/api"
	"github.com/kashguard/go-near-auth/internal/api/handlers"
	"github.com/kashguard/go-near-auth/internal/api/middleware"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.HidePort = true

	s.Echo.HTTPErrorHandler = HTTPErrorHandler

	// ---
	// General middleware
	if s.Config.Echo.EnableRecover {
		s.Echo.Use(echoMiddleware.Recover())
	} else {
		log.Warn().Msg("Disabling recover middleware due to environment config")
	}

	if s.Config.Echo.EnableRequestID {
		s.Echo.Use(echoMiddleware.RequestID())
	} else {
		log.Warn().Msg("Disabling request ID middleware due to environment config")
	}

	if s.Config.Echo.EnableLogger {
		s.Echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Level: s.Config.Logger.RequestLevel,
		}))
	} else {
		log.Warn().Msg("Disabling logger middleware due to environment config")
	}

	if s.Config.Echo.EnableMetrics && s.Metrics != nil {
		s.Echo.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "nearauth_http",
			Registerer: s.Metrics.Registry(),
			Skipper: func(c echo.Context) bool {
				path := c.Path()
				return path == "/metrics" || strings.HasPrefix(path, "/-/")
			},
		}))
	} else {
		log.Warn().Msg("Disabling metrics middleware due to environment config")
	}

	// ---
	// Initialize our general groups and set middleware to use above them
	s.Router = &api.Router{
		Routes: nil, // will be populated by handlers.AttachAllRoutes(s)

		// Unsecured base group available at /**
		Root: s.Echo.Group(""),

		// Management endpoints, e.g. health check and metrics: /-/**
		Management: s.Echo.Group("/-"),

		// API endpoints: /api/v1/**
		APIV1Auth:   s.Echo.Group("/api/v1/auth"),
		APIV1Social: s.Echo.Group("/api/v1/social"),
		APIV1Near:   s.Echo.Group("/api/v1/near"),
	}

	// ---
	// Finally attach our handlers
	handlers.AttachAllRoutes(s)
}
