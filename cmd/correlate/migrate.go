package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"basegraph.app/correlate/core/db"
	"basegraph.app/correlate/core/db/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|status|version]",
	Short: "Apply the entity store migrations",
	Long: `Run the embedded goose migrations against DATABASE_URL.

Examples:
  correlate migrate            # same as "up"
  correlate migrate status
  correlate migrate down       # roll back the latest migration`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"up", "down", "status", "version"},
	RunE: func(cmd *cobra.Command, args []string) error {
		command := "up"
		if len(args) == 1 {
			command = args[0]
		}

		ctx := cmd.Context()
		database, err := db.New(ctx, cliCfg.DB)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer database.Close()

		sqlDB := stdlib.OpenDBFromPool(database.Pool())
		defer sqlDB.Close()

		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect("postgres"); err != nil {
			return err
		}
		return goose.RunContext(ctx, command, sqlDB, ".")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
