package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/casq89/mibauu-backend/pkg/config"
	"github.com/casq89/mibauu-backend/pkg/logging"
	"github.com/casq89/mibauu-backend/pkg/server/endpoints"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8000
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the mibauu application server",
	Long: `Run the mibauu application server

The backends are chosen by configuration:

  MIBAUU_STORE_DRIVER    supabase (default) or postgres
  MIBAUU_STORAGE_DRIVER  supabase (default) or gcs
  MIBAUU_AUTH_DRIVER     gotrue (default) or local

The supabase drivers need SUPABASE_URL and SUPABASE_ANON_KEY. The postgres
store and local authentication need DATABASE_URL.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		// Flags override the loaded values when given explicitly
		if cmd.Flags().Changed("bind-address") {
			cfg.BindAddress, _ = cmd.Flags().GetString("bind-address")
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetString("port")
		}

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, closeBackends, err := buildServer(ctx, cfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("unable to initialise backends")
		}
		defer closeBackends()

		endpoints.RegisterAll(s)

		logger.Info().
			Str("store_driver", cfg.StoreDriver).
			Str("storage_driver", cfg.StorageDriver).
			Str("auth_driver", cfg.AuthDriver).
			Str("bucket", s.Bucket).
			Msgf("Running server at http://%s:%s...", cfg.BindAddress, cfg.Port)

		errs := make(chan error, 1)
		go func() {
			errs <- s.Start()
		}()

		select {
		case err := <-errs:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("server stopped")
			}
		case <-ctx.Done():
			logger.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := s.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("shutdown")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
}
