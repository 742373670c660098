package main

import (
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-sync/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-sync/pkg/config"
)

func newMigrateCommand(d *deps) *cobra.Command {
	var dir string
	var limit int

	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back schema migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var direction migrate.MigrationDirection
			switch args[0] {
			case "up":
				direction = migrate.Up
			case "down":
				direction = migrate.Down
				if limit == 0 {
					limit = 1
				}
			default:
				return fmt.Errorf("unknown direction %q, want up or down", args[0])
			}

			return withDB(d, func(cfg *config.Config, db *gorm.DB) error {
				if dir == "" {
					dir = cfg.Database.Migrations
				}
				n, err := database.Migrate(db, dir, direction, limit)
				if err != nil {
					return err
				}
				fmt.Fprintf(d.Out, "Applied %d migration(s) %s from %s\n", n, args[0], dir)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Migrations directory (default DB_MIGRATIONS_DIR)")
	cmd.Flags().IntVar(&limit, "max", 0, "Maximum number of migrations to apply (down defaults to 1)")
	return cmd
}
