package rpc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kashguard/go-near-auth/internal/types/autherr"
)

// 节点返回的常见错误原因
const (
	CauseUnknownAccount          = "UNKNOWN_ACCOUNT"
	CauseUnknownAccessKey        = "UNKNOWN_ACCESS_KEY"
	CauseUnknownBlock            = "UNKNOWN_BLOCK"
	CauseInvalidAccount          = "INVALID_ACCOUNT"
	CauseInvalidTransaction      = "INVALID_TRANSACTION"
	CauseTimeoutError            = "TIMEOUT_ERROR"
	CauseNoSyncedBlocks          = "NO_SYNCED_BLOCKS"
	CauseUnavailableShard        = "UNAVAILABLE_SHARD"
	CauseInternalError           = "INTERNAL_ERROR"
	CauseParseError              = "PARSE_ERROR"
	CauseContractExecutionError  = "CONTRACT_EXECUTION_ERROR"
	CauseNoContractCode          = "NO_CONTRACT_CODE"
	CauseUnknownTransaction      = "UNKNOWN_TRANSACTION"
	nameRequestValidationError   = "REQUEST_VALIDATION_ERROR"
	nameHandlerError             = "HANDLER_ERROR"
	nameInternalError            = "INTERNAL_ERROR"
	queryErrorDoesNotExist       = "does not exist"
	queryErrorWasmExecution      = "wasm execution failed"
	queryErrorContractNotDeploy  = "contract is not deployed"
	queryErrorCodeDoesNotExist   = "CodeDoesNotExist"
	queryErrorMethodNotFound     = "MethodNotFound"
	queryErrorFunctionCallError  = "FunctionCallError"
	queryErrorAccessKeyNotExists = "access key"
)

// ErrorCause 结构化错误原因
type ErrorCause struct {
	Name string          `json:"name"`
	Info json.RawMessage `json:"info,omitempty"`
}

// Error JSON-RPC 错误
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Name    string          `json:"name,omitempty"`
	Cause   *ErrorCause     `json:"cause,omitempty"`
}

func (e *Error) Error() string {
	detail := e.Message
	if data := e.dataString(); data != "" {
		detail += ": " + data
	}
	if c := e.CauseName(); c != "" {
		return fmt.Sprintf("RPC error %s/%s (code: %d): %s", e.Name, c, e.Code, detail)
	}
	return fmt.Sprintf("RPC error (code: %d): %s", e.Code, detail)
}

// CauseName 返回原因名称，无原因时为空
func (e *Error) CauseName() string {
	if e == nil || e.Cause == nil {
		return ""
	}
	return e.Cause.Name
}

// Unwrap 将节点错误映射到错误分类
func (e *Error) Unwrap() error {
	switch e.CauseName() {
	case CauseUnknownAccount, CauseInvalidAccount:
		return autherr.ErrAccountNotFound
	case CauseUnknownAccessKey:
		return autherr.ErrMissingKey
	case CauseTimeoutError:
		return autherr.ErrTimeout
	case CauseInvalidTransaction, CauseContractExecutionError, CauseNoContractCode:
		return autherr.ErrTransactionExecution
	case CauseParseError:
		return autherr.ErrSerialization
	case CauseNoSyncedBlocks, CauseUnavailableShard, CauseInternalError, CauseUnknownBlock:
		return autherr.ErrNetworkUnavailable
	}

	switch e.Name {
	case nameRequestValidationError:
		return autherr.ErrSerialization
	case nameInternalError:
		return autherr.ErrNetworkUnavailable
	}
	return nil
}

func (e *Error) dataString() string {
	if len(e.Data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Data, &s); err == nil {
		return s
	}
	return string(e.Data)
}

// queryError 将 query 结果中内联的 error 字段转换为结构化错误
func queryError(msg string) *Error {
	cause := CauseContractExecutionError
	switch {
	case strings.Contains(msg, queryErrorAccessKeyNotExists) && strings.Contains(msg, queryErrorDoesNotExist):
		cause = CauseUnknownAccessKey
	case strings.Contains(msg, queryErrorDoesNotExist):
		cause = CauseUnknownAccount
	case strings.Contains(msg, queryErrorContractNotDeploy), strings.Contains(msg, queryErrorCodeDoesNotExist):
		cause = CauseNoContractCode
	case strings.Contains(msg, queryErrorWasmExecution),
		strings.Contains(msg, queryErrorMethodNotFound),
		strings.Contains(msg, queryErrorFunctionCallError):
		cause = CauseContractExecutionError
	}
	data, _ := json.Marshal(msg)
	return &Error{
		Code:    -32000,
		Message: "Server error",
		Data:    data,
		Name:    nameHandlerError,
		Cause:   &ErrorCause{Name: cause},
	}
}
