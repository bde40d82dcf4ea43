package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kashguard/go-near-auth/internal/api"
	socialdb "github.com/kashguard/go-near-auth/internal/infra/social"
	"github.com/kashguard/go-near-auth/internal/types"
	"github.com/spf13/cobra"
)

type PublishConfig struct {
	Name string
	Tag  string
	File string
}

var publishConfig PublishConfig

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publishes a widget to SocialDB under the logged in account",
	Long: `Stores the widget source under <account>/widget/<name> on SocialDB.
The source is read from --file, or from stdin when --file is "-" or empty.

Examples:
  publish --name "Hello World" --tag demo --file hello.jsx`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		code, err := readSource(cmd, publishConfig.File)
		if err != nil {
			return err
		}
		return withConfiguredServer(cmd, func(ctx context.Context, s *api.Server) error {
			res, err := s.Publisher.Publish(ctx, socialdb.PublishRequest{
				Network: s.Config.Network,
				Name:    publishConfig.Name,
				Tag:     publishConfig.Tag,
				Code:    code,
			})
			if err != nil {
				return err
			}
			s.Notifier.Info(ctx, "Success!")

			return printJSON(cmd.OutOrStdout(), types.PublishResponse{
				AccountID:       res.AccountID,
				WidgetKey:       res.WidgetKey,
				TransactionHash: res.TransactionHash,
				Success:         res.Success,
				PreviewURL:      socialdb.WidgetEmbedURL(s.Config.Network, code),
			})
		})
	},
}

func init() {
	flags := publishCmd.Flags()
	flags.StringVarP(&publishConfig.Name, "name", "n", "", "widget name")
	flags.StringVarP(&publishConfig.Tag, "tag", "t", "", "widget tag")
	flags.StringVarP(&publishConfig.File, "file", "f", "", "widget source file")
	if err := publishCmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(publishCmd)
}

func readSource(cmd *cobra.Command, path string) (string, error) {
	var (
		raw []byte
		err error
	)
	if path == "" || path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read widget source: %w", err)
	}
	return string(raw), nil
}
