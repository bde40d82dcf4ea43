package httperrors

import (
	"fmt"
	"net/http"

	"github.com/kashguard/go-near-auth/internal/types"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/labstack/echo/v4"
)

// HTTPError 对外返回的错误体
type HTTPError struct {
	types.PublicHTTPError
	Internal error `json:"-"`
}

func NewHTTPError(code int, errorType string, title string) *HTTPError {
	return &HTTPError{
		PublicHTTPError: types.PublicHTTPError{
			Code:  int64(code),
			Type:  errorType,
			Title: title,
		},
	}
}

func NewHTTPErrorWithDetail(code int, errorType string, title string, detail string) *HTTPError {
	e := NewHTTPError(code, errorType, title)
	e.Detail = detail
	return e
}

func NewFromEcho(e *echo.HTTPError) *HTTPError {
	return NewHTTPError(e.Code, types.PublicHTTPErrorTypeGeneric, http.StatusText(e.Code))
}

func (e *HTTPError) Error() string {
	var msg string
	if len(e.Detail) > 0 {
		msg = fmt.Sprintf("HTTPError %d (%s): %s - %s", e.Code, e.Type, e.Title, e.Detail)
	} else {
		msg = fmt.Sprintf("HTTPError %d (%s): %s", e.Code, e.Type, e.Title)
	}
	if e.Internal == nil {
		return msg
	}
	return fmt.Sprintf("%s, %v", msg, e.Internal)
}

func (e *HTTPError) Unwrap() error {
	return e.Internal
}

var kindStatus = map[autherr.Kind]int{
	autherr.KindSecretStore:          http.StatusInternalServerError,
	autherr.KindKeyGeneration:        http.StatusInternalServerError,
	autherr.KindNetworkUnavailable:   http.StatusServiceUnavailable,
	autherr.KindTimeout:              http.StatusGatewayTimeout,
	autherr.KindAccountNotFound:      http.StatusNotFound,
	autherr.KindTransactionExecution: http.StatusUnprocessableEntity,
	autherr.KindSerialization:        http.StatusBadRequest,
	autherr.KindMissingKey:           http.StatusUnauthorized,
	autherr.KindNoPendingLogin:       http.StatusConflict,
}

// FromError 按错误分类映射 HTTP 状态码，标题使用面向用户的提示
func FromError(err error) *HTTPError {
	kind := autherr.KindOf(err)
	code, ok := kindStatus[kind]
	if !ok {
		e := NewHTTPError(http.StatusInternalServerError, types.PublicHTTPErrorTypeGeneric, http.StatusText(http.StatusInternalServerError))
		e.Internal = err
		return e
	}

	e := NewHTTPError(code, string(kind), autherr.UserMessage(err))
	e.Retryable = autherr.Retryable(err)
	e.Internal = err
	return e
}

// NewHTTPValidationError 请求体校验失败
func NewHTTPValidationError(err error) *HTTPError {
	e := NewHTTPErrorWithDetail(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidPayload, "Request payload is invalid.", err.Error())
	e.Internal = err
	return e
}
