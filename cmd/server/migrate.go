package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/example/tiryaq/internal/config"
	"github.com/example/tiryaq/internal/store"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema and seed the admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.StorageDriver == config.DriverMemory {
				log.Warn().Msg("memory storage has no schema, nothing to migrate")
				return nil
			}

			// store.New migrates on open.
			st, err := store.New(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := seedAdmin(context.Background(), cfg, st); err != nil {
				return err
			}
			log.Info().Str("storage", cfg.StorageDriver).Msg("migration complete")
			return nil
		},
	}
}
