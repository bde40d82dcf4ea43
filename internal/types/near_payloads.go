package types

import (
	"context"
	"encoding/json"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
)

var networkEnum = []interface{}{"mainnet", "testnet"}

func validateNetwork(network string) error {
	if network == "" {
		return nil
	}
	if err := validate.EnumCase("network", "body", network, networkEnum, true); err != nil {
		return err
	}
	return nil
}

// PostPublishPayload 发布组件
type PostPublishPayload struct {
	Network string `json:"network,omitempty"`

	// Required: true
	Name *string `json:"name"`

	Tag string `json:"tag,omitempty"`

	// Required: true
	Code *string `json:"code"`
}

func (m *PostPublishPayload) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validateNetwork(m.Network); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("name", "body", m.Name); err != nil {
		res = append(res, err)
	} else if err := validate.RequiredString("name", "body", *m.Name); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("code", "body", m.Code); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *PostPublishPayload) ContextValidate(ctx context.Context, formats strfmt.Registry) error {
	return nil
}

// PostViewPayload 只读调用
type PostViewPayload struct {
	Network string `json:"network,omitempty"`

	// Required: true
	ContractID *string `json:"contractId"`

	// Required: true
	MethodName *string `json:"methodName"`

	Args json.RawMessage `json:"args,omitempty"`
}

func (m *PostViewPayload) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validateNetwork(m.Network); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("contractId", "body", m.ContractID); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("methodName", "body", m.MethodName); err != nil {
		res = append(res, err)
	}
	if len(m.Args) > 0 && !json.Valid(m.Args) {
		res = append(res, errors.InvalidType("args", "body", "object", string(m.Args)))
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *PostViewPayload) ContextValidate(ctx context.Context, formats strfmt.Registry) error {
	return nil
}

// PostCallPayload 签名调用。Deposit 为 yocto 整数字符串，DepositNear 为 NEAR 十进制字符串，二者取其一。
type PostCallPayload struct {
	PostViewPayload

	AccountID string `json:"accountId,omitempty"`

	// Pattern: ^[0-9]+$
	Gas string `json:"gas,omitempty"`

	// Pattern: ^[0-9]+$
	Deposit string `json:"deposit,omitempty"`

	DepositNear string `json:"depositNear,omitempty"`
}

func (m *PostCallPayload) Validate(formats strfmt.Registry) error {
	var res []error

	if err := m.PostViewPayload.Validate(formats); err != nil {
		res = append(res, err)
	}
	if m.Gas != "" {
		if err := validate.Pattern("gas", "body", m.Gas, `^[0-9]+$`); err != nil {
			res = append(res, err)
		}
	}
	if m.Deposit != "" {
		if err := validate.Pattern("deposit", "body", m.Deposit, `^[0-9]+$`); err != nil {
			res = append(res, err)
		}
	}
	if m.Deposit != "" && m.DepositNear != "" {
		res = append(res, errors.New(422, "only one of deposit and depositNear may be set"))
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *PostCallPayload) ContextValidate(ctx context.Context, formats strfmt.Registry) error {
	return nil
}
