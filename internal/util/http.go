package util

import (
	"net/http"

	"github.com/go-openapi/runtime"
	"github.com/go-openapi/strfmt"
	"github.com/kashguard/go-near-auth/internal/api/httperrors"
	"github.com/kashguard/go-near-auth/internal/types"
	"github.com/labstack/echo/v4"
)

// BindAndValidateBody binds the request body to the given payload and validates it.
func BindAndValidateBody(c echo.Context, v runtime.Validatable) error {
	binder := c.Echo().Binder.(*echo.DefaultBinder)

	if err := binder.BindBody(c, v); err != nil {
		LogFromEchoContext(c).Debug().Err(err).Msg("Failed to bind request body")
		return httperrors.NewHTTPErrorWithDetail(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidPayload, "Request body could not be parsed.", err.Error())
	}

	if err := v.Validate(strfmt.Default); err != nil {
		LogFromEchoContext(c).Debug().Err(err).Msg("Request body failed validation")
		return httperrors.NewHTTPValidationError(err)
	}

	return nil
}
