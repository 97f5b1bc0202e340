package main

import (
	"fmt"

	"github.com/samber/do"
	"github.com/spf13/cobra"
	"github.com/taskflow-io/hourtrack/internal/bootstrap"
	"github.com/taskflow-io/hourtrack/internal/config"
	dbpkg "github.com/taskflow-io/hourtrack/internal/infra/db"
	"go.uber.org/zap"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			inj := bootstrap.BuildContainer()
			cfg, err := do.Invoke[*config.Config](inj)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := do.MustInvoke[*zap.Logger](inj)

			d, err := dbpkg.New(cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if err := dbpkg.Migrate(d); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Sugar().Infow("schema migrated", "driver", cfg.Database.Driver)
			return nil
		},
	}
}
