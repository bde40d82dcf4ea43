package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kashguard/go-near-auth/cmd/probe"
	"github.com/kashguard/go-near-auth/internal/config"
	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	networkFlag  = "network"
	appNameFlag  = "app-name"
	logLevelFlag = "log-level"
	prettyFlag   = "pretty"
	openFlag     = "open"
)

var rootCmd = &cobra.Command{
	Use:   "near-auth",
	Short: "Delegated NEAR wallet login and signing",
	Long: `Authenticate against a NEAR wallet with a locally generated function-call access key,
then sign SocialDB and contract calls with it.

The same operations are exposed over HTTP by the server subcommand.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command execution failed")
		os.Exit(1)
	}
}

func init() {
	viper.SetEnvPrefix("NEARAUTH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	flags.String(networkFlag, "", "NEAR network, mainnet or testnet")
	flags.String(appNameFlag, "", "application name shown in the wallet login page")
	flags.String(logLevelFlag, "", "log level (trace, debug, info, warn, error)")
	flags.Bool(prettyFlag, false, "pretty print console logs")
	flags.Bool(openFlag, false, "open wallet URLs in the local browser")

	for _, name := range []string{networkFlag, appNameFlag, logLevelFlag, prettyFlag, openFlag} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(probe.New(loadConfig))
}

// loadConfig 以环境变量为基础，命令行参数优先
func loadConfig() (config.Server, error) {
	cfg := config.DefaultServiceConfigFromEnv()

	if v := viper.GetString(networkFlag); v != "" {
		network, err := config.ParseNetwork(v)
		if err != nil {
			return cfg, err
		}
		cfg.Network = network
	}
	if v := viper.GetString(appNameFlag); v != "" {
		cfg.Wallet.AppName = v
	}
	if v := viper.GetString(logLevelFlag); v != "" {
		cfg.Logger.Level = util.LogLevelFromString(v)
	}
	if viper.GetBool(prettyFlag) {
		cfg.Logger.PrettyPrintConsole = true
	}
	if viper.IsSet(openFlag) {
		cfg.Wallet.OpenBrowser = viper.GetBool(openFlag)
	}

	return cfg, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
