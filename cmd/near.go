package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/kashguard/go-near-auth/internal/api"
	"github.com/kashguard/go-near-auth/internal/near/amount"
	"github.com/kashguard/go-near-auth/internal/near/executor"
	"github.com/kashguard/go-near-auth/internal/types"
	"github.com/kashguard/go-near-auth/internal/types/autherr"
	"github.com/spf13/cobra"
)

type CallConfig struct {
	AccountID   string
	Gas         uint64
	Deposit     string
	DepositNear string
}

var callConfig CallConfig

var viewCmd = &cobra.Command{
	Use:   "view <contract> <method> [json-args]",
	Short: "Calls a read-only contract method",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		callArgs, err := jsonArgs(args)
		if err != nil {
			return err
		}
		return withConfiguredServer(cmd, func(ctx context.Context, s *api.Server) error {
			result, err := s.Executor.View(ctx, s.Config.Network, args[0], args[1], callArgs)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), types.ViewResponse{Result: result})
		})
	},
}

var callCmd = &cobra.Command{
	Use:   "call <contract> <method> [json-args]",
	Short: "Signs and sends a function call with the stored access key",
	Long: `Signs a function call with the stored access key and waits for the final outcome.

Examples:
  # Deposit storage on SocialDB
  call v1.social08.testnet storage_deposit '{}' --deposit-near 0.1 --network testnet`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		callArgs, err := jsonArgs(args)
		if err != nil {
			return err
		}
		deposit, err := callConfig.deposit()
		if err != nil {
			return err
		}
		return withConfiguredServer(cmd, func(ctx context.Context, s *api.Server) error {
			outcome, err := s.Executor.Call(ctx, executor.CallRequest{
				Network:    s.Config.Network,
				AccountID:  callConfig.AccountID,
				ContractID: args[0],
				MethodName: args[1],
				Args:       callArgs,
				Gas:        callConfig.Gas,
				Deposit:    deposit,
			})
			if outcome == nil {
				return err
			}

			status, marshalErr := json.Marshal(outcome.Status)
			if marshalErr != nil {
				return marshalErr
			}
			if printErr := printJSON(cmd.OutOrStdout(), types.CallResponse{
				TransactionHash: outcome.TransactionHash,
				Success:         outcome.IsSuccess(),
				Status:          status,
				Logs:            outcome.Logs,
			}); printErr != nil {
				return printErr
			}
			return err
		})
	},
}

func init() {
	flags := callCmd.Flags()
	flags.StringVar(&callConfig.AccountID, "account", "", "signer account, defaults to the logged in account")
	flags.Uint64Var(&callConfig.Gas, "gas", executor.DefaultGas, "attached gas")
	flags.StringVar(&callConfig.Deposit, "deposit", "", "attached deposit in yoctoNEAR")
	flags.StringVar(&callConfig.DepositNear, "deposit-near", "", "attached deposit in NEAR")
	callCmd.MarkFlagsMutuallyExclusive("deposit", "deposit-near")

	rootCmd.AddCommand(viewCmd, callCmd)
}

func (c CallConfig) deposit() (*uint256.Int, error) {
	switch {
	case c.Deposit != "":
		return amount.ParseYocto(c.Deposit)
	case c.DepositNear != "":
		return amount.ParseNear(c.DepositNear)
	default:
		return nil, nil
	}
}

func jsonArgs(args []string) (interface{}, error) {
	if len(args) < 3 || args[2] == "" {
		return nil, nil
	}
	raw := json.RawMessage(args[2])
	if !json.Valid(raw) {
		return nil, autherr.Wrap(autherr.ErrSerialization, errors.New("invalid JSON"), fmt.Sprintf("arguments for %s", args[1]))
	}
	return raw, nil
}
