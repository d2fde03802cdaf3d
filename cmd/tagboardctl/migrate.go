package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/tagboard/internal/config"
	"github.com/keyxmakerx/tagboard/internal/database"
)

func newMigrateCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back schema migrations",
		Long:      `Connects with the same environment variables as the server (DB_*, DATABASE_URL, MIGRATIONS_PATH).`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.NewMariaDB(commandContext(cmd), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if args[0] == "up" {
				err = database.RunMigrations(db, cfg.Database.MigrationsPath)
			} else {
				err = database.RollbackMigrations(db, cfg.Database.MigrationsPath, steps)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "migrations to roll back with down")
	return cmd
}

// commandContext returns the command's context or Background when run
// outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
