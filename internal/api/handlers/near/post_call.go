package near

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-openapi/swag"
	"github.com/holiman/uint256"
	"github.com/kashguard/go-near-auth/internal/api"
	"github.com/kashguard/go-near-auth/internal/api/httperrors"
	"github.com/kashguard/go-near-auth/internal/near/amount"
	"github.com/kashguard/go-near-auth/internal/near/executor"
	"github.com/kashguard/go-near-auth/internal/types"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/labstack/echo/v4"
)

func PostCallRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Near.POST("/call", postCallHandler(s))
}

// 链上执行失败时返回 422，响应体为错误信息，交易哈希写入日志
func postCallHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostCallPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		var gas uint64
		if body.Gas != "" {
			v, err := strconv.ParseUint(body.Gas, 10, 64)
			if err != nil {
				return httperrors.NewHTTPValidationError(err)
			}
			gas = v
		}

		deposit, err := parseDeposit(body)
		if err != nil {
			return httperrors.NewHTTPValidationError(err)
		}

		var args interface{}
		if len(body.Args) > 0 {
			args = body.Args
		}

		outcome, err := s.Executor.Call(ctx, executor.CallRequest{
			Network:    networkOrDefault(s, body.Network),
			AccountID:  body.AccountID,
			ContractID: swag.StringValue(body.ContractID),
			MethodName: swag.StringValue(body.MethodName),
			Args:       args,
			Gas:        gas,
			Deposit:    deposit,
		})
		if err != nil {
			if outcome != nil {
				log.Warn().Err(err).Str("tx_hash", outcome.TransactionHash).Msg("Call executed with failure status")
			}
			return err
		}

		status, err := json.Marshal(outcome.Status)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, &types.CallResponse{
			TransactionHash: outcome.TransactionHash,
			Success:         outcome.IsSuccess(),
			Status:          status,
			Logs:            outcome.Logs,
		})
	}
}

func parseDeposit(body types.PostCallPayload) (*uint256.Int, error) {
	switch {
	case body.Deposit != "":
		return amount.ParseYocto(body.Deposit)
	case body.DepositNear != "":
		return amount.ParseNear(body.DepositNear)
	default:
		return nil, nil
	}
}
