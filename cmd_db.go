package main

import (
	"context"

	"campus-canteen-api/config"
	"campus-canteen-api/metrics"
	"campus-canteen-api/services"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := boot()
		if err != nil {
			return err
		}
		db, err := config.OpenDB(cfg)
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}
		log.WithField("driver", cfg.DBDriver).Info("schema migrated")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the default menu into an empty catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := boot()
		if err != nil {
			return err
		}
		db, err := config.OpenDB(cfg)
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}
		catalog := services.NewCatalog(db, nil, cfg.MenuCacheTTL, log, metrics.New())
		n, err := catalog.Seed(context.Background(), services.DefaultMenu())
		if err != nil {
			return err
		}
		log.WithField("items", n).Info("menu seeded")
		return nil
	},
}
