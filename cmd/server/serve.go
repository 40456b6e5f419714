package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/example/tiryaq/internal/config"
	"github.com/example/tiryaq/internal/handlers"
	"github.com/example/tiryaq/internal/routes"
	"github.com/example/tiryaq/internal/services"
	"github.com/example/tiryaq/internal/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.New(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := seedAdmin(context.Background(), cfg, st); err != nil {
		return err
	}

	var notifier handlers.Notifier
	if telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat); telegram.Enabled() {
		notifier = telegram
	} else {
		log.Info().Msg("telegram not configured, approval notifications disabled")
	}

	app := routes.NewApp(cfg, st, notifier)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.AppPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		errCh <- app.Listen(":" + cfg.AppPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(ctx)
}

// seedAdmin creates the configured admin account. Outside production
// missing credentials only skip the step.
func seedAdmin(ctx context.Context, cfg *config.Config, st store.Store) error {
	if !cfg.SeedAdmin() {
		log.Warn().Msg("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	created, err := services.EnsureAdmin(ctx, st, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("email", cfg.AdminEmail).Msg("admin account created")
	}
	return nil
}
