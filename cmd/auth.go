package cmd

import (
	"context"

	"github.com/kashguard/go-near-auth/internal/api"
	"github.com/kashguard/go-near-auth/internal/types"
	"github.com/kashguard/go-near-auth/internal/util/command"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Issues a new access key and prints the wallet login URL",
	Long: `Generates a fresh ed25519 access key, stores it in the configured
secret store and prints the wallet URL the user has to approve.
Run confirm-login once the key was added in the wallet.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withConfiguredServer(cmd, func(ctx context.Context, s *api.Server) error {
			res, err := s.Login.Login(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), types.LoginResponse{
				State:     s.Login.State().String(),
				PublicKey: res.PublicKey,
				URL:       res.URL,
			})
		})
	},
}

var confirmLoginCmd = &cobra.Command{
	Use:   "confirm-login",
	Short: "Resolves the account owning the access key and requests write permission",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withConfiguredServer(cmd, func(ctx context.Context, s *api.Server) error {
			res, err := s.Login.ConfirmLogin(ctx)
			if err != nil {
				printMessages(cmd, s)
				return err
			}
			return printJSON(cmd.OutOrStdout(), types.ConfirmLoginResponse{
				State:     s.Login.State().String(),
				AccountID: res.AccountID,
				GrantURL:  res.GrantURL,
				Messages:  s.Notifier.Drain(),
			})
		})
	},
}

var signOutCmd = &cobra.Command{
	Use:   "sign-out",
	Short: "Removes all stored credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withConfiguredServer(cmd, func(ctx context.Context, s *api.Server) error {
			if err := s.Login.SignOut(ctx); err != nil {
				return err
			}
			return printAccount(ctx, cmd, s)
		})
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Prints the stored account and access key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withConfiguredServer(cmd, func(ctx context.Context, s *api.Server) error {
			return printAccount(ctx, cmd, s)
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, confirmLoginCmd, signOutCmd, accountCmd)
}

func withConfiguredServer(cmd *cobra.Command, f func(ctx context.Context, s *api.Server) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return command.WithServer(cmd.Context(), cfg, f)
}

func printAccount(ctx context.Context, cmd *cobra.Command, s *api.Server) error {
	details, err := s.Login.AccountDetails(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), types.AccountResponse{
		Network:   details.Network.String(),
		AccountID: details.AccountID,
		PublicKey: details.PublicKey,
		State:     s.Login.State().String(),
		Messages:  s.Notifier.Drain(),
	})
}

func printMessages(cmd *cobra.Command, s *api.Server) {
	for _, msg := range s.Notifier.Drain() {
		cmd.PrintErrln(msg)
	}
}
