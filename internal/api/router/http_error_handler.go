package router

import (
	"errors"
	"net/http"

	"github.com/kashguard/go-near-auth/internal/api/httperrors"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler 统一错误响应：业务错误按分类映射状态码
func HTTPErrorHandler(err error, c echo.Context) {
	var he *httperrors.HTTPError
	var echoErr *echo.HTTPError

	switch {
	case errors.As(err, &he):
	case errors.As(err, &echoErr):
		he = httperrors.NewFromEcho(echoErr)
		he.Internal = echoErr.Internal
	default:
		he = httperrors.FromError(err)
	}

	log := util.LogFromEchoContext(c)
	if he.Code >= http.StatusInternalServerError {
		log.Error().Err(he).Msg("Request failed")
	} else {
		log.Debug().Err(he).Msg("Request rejected")
	}

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(int(he.Code))
	} else {
		err = c.JSON(int(he.Code), he)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to write error response")
	}
}
