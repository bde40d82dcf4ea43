package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/metrics"
	"github.com/kashguard/go-near-auth/internal/near/indexer"
	"github.com/kashguard/go-near-auth/internal/near/rpc"
	"github.com/kashguard/go-near-auth/internal/util/command"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	verboseFlag string = "verbose"
	timeoutFlag string = "timeout"
)

// ConfigLoader 由根命令提供，合并环境变量与命令行参数
type ConfigLoader func() (config.Server, error)

func New(load ConfigLoader) *cobra.Command {
	return command.NewSubcommandGroup("probe",
		newChain(load),
		newIndexer(load),
	)
}

func newChain(load ConfigLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Checks that the NEAR JSON-RPC endpoint answers status requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, load, func(ctx context.Context, cfg config.Server) error {
				client := rpc.ForNetwork(cfg.RPC.URLTemplate, cfg.Network, cfg.RPC.Timeout, rpc.WithMetrics(metrics.New()))
				status, err := client.Status(ctx)
				if err != nil {
					return err
				}
				if verbose, _ := cmd.Flags().GetBool(verboseFlag); verbose {
					fmt.Fprintf(cmd.OutOrStdout(), "%s chain_id=%s height=%d\n",
						client.Endpoint(), status.ChainID, status.SyncInfo.LatestBlockHeight)
				}
				return nil
			})
		},
	}
	addFlags(cmd)
	return cmd
}

func newIndexer(load ConfigLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indexer",
		Short: "Checks that the read-only indexer database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, load, func(ctx context.Context, cfg config.Server) error {
				resolver := indexer.NewResolver(cfg.IndexerEndpoint, indexer.WithTimeout(cfg.Indexer.Timeout))
				defer func() {
					if err := resolver.Close(); err != nil {
						log.Warn().Err(err).Msg("Failed to close indexer connections")
					}
				}()

				if err := resolver.Ping(ctx, cfg.Network); err != nil {
					return err
				}
				if verbose, _ := cmd.Flags().GetBool(verboseFlag); verbose {
					ep := cfg.IndexerEndpoint(cfg.Network)
					fmt.Fprintf(cmd.OutOrStdout(), "%s:%d/%s ok\n", ep.Host, ep.Port, ep.Database)
				}
				return nil
			})
		},
	}
	addFlags(cmd)
	return cmd
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP(verboseFlag, "v", false, "print probe details")
	cmd.Flags().Duration(timeoutFlag, 10*time.Second, "probe timeout")
}

func run(cmd *cobra.Command, load ConfigLoader, probe func(ctx context.Context, cfg config.Server) error) error {
	cfg, err := load()
	if err != nil {
		return err
	}
	command.SetupLogger(cfg)

	timeout, err := cmd.Flags().GetDuration(timeoutFlag)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if err := probe(ctx, cfg); err != nil {
		log.Error().Err(err).Str("probe", cmd.Name()).Str("network", cfg.Network.String()).Msg("Probe failed")
		return err
	}
	log.Debug().Str("probe", cmd.Name()).Msg("Probe succeeded")
	return nil
}
