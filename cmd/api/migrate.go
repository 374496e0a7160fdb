package main

import (
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/config"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations to the configured SQL store",
		Long:  "Applies migrations/postgres to Postgres, or migrations/sqlite to the store.path file. The memory store needs none.",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch cfg.Store.Driver {
			case config.DriverPostgres:
				return database.Migrate(cfg.Database)
			case config.DriverSQLite:
				db, err := database.OpenSQLite(cfg.Store.Path)
				if err != nil {
					return err
				}
				return db.Close()
			default:
				cmd.Println("memory store: nothing to migrate")
				return nil
			}
		},
	}
}
