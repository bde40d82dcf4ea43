package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kashguard/go-near-auth/internal/api"
	"github.com/kashguard/go-near-auth/internal/api/router"
	"github.com/kashguard/go-near-auth/internal/util/command"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const listenFlag = "listen"

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the HTTP server",
	Long: `Starts the HTTP server exposing login, confirm-login, sign-out,
publish, view and call under /api/v1 plus /-/healthy and /metrics.

Requires configuration through ENV.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		listen, err := cmd.Flags().GetString(listenFlag)
		if err != nil {
			return err
		}
		return runServer(listen)
	},
}

func init() {
	serverCmd.Flags().String(listenFlag, "", "listen address, overrides SERVER_ECHO_LISTEN_ADDRESS")
	rootCmd.AddCommand(serverCmd)
}

func runServer(listen string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Echo.ListenAddress = listen
	}
	command.SetupLogger(cfg)

	s, err := api.InitNewServer(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize server")
		return err
	}

	router.Init(s)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.Echo.ListenAddress).Str("network", cfg.Network.String()).Msg("Starting server")
		errCh <- s.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
		log.Info().Msg("Received interrupt signal")
	case runErr = <-errCh:
		if runErr != nil {
			log.Error().Err(runErr).Msg("Failed to start server")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if errs := s.Shutdown(ctx); len(errs) > 0 {
		log.Error().Errs("shutdownErrors", errs).Msg("Failed to gracefully shut down server")
		return errors.Join(append(errs, runErr)...)
	}

	return runErr
}
