package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/example/tiryaq/internal/config"
)

var logLevel string

func main() {
	rootCmd := &cobra.Command{
		Use:           "tiryaq",
		Short:         "Pharmacy delivery marketplace API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "overrides LOG_LEVEL")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("tiryaq exited")
		os.Exit(1)
	}
}

// loadConfig reads configuration and sets up the global logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	setupLogger(cfg)

	if cfg.GeneratedJWTSecret {
		log.Warn().Msg("JWT_SECRET not set, using a random per-process secret; tokens will not survive a restart")
	}
	return cfg, nil
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if !cfg.IsProduction() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}
	log.Logger = logger
}
