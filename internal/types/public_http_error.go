package types

import (
	"context"

	"github.com/go-openapi/strfmt"
)

const (
	PublicHTTPErrorTypeGeneric        = "generic"
	PublicHTTPErrorTypeInvalidPayload = "invalid_payload"
)

// PublicHTTPError 错误响应
type PublicHTTPError struct {
	// HTTP 状态码
	Code int64 `json:"status"`

	// 错误分类，如 account_not_found
	Type string `json:"type"`

	// 可以直接展示给用户的提示
	Title string `json:"title"`

	Detail string `json:"detail,omitempty"`

	// 稍后重试是否可能成功
	Retryable bool `json:"retryable"`
}

func (m *PublicHTTPError) Validate(formats strfmt.Registry) error {
	return nil
}

func (m *PublicHTTPError) ContextValidate(ctx context.Context, formats strfmt.Registry) error {
	return nil
}
