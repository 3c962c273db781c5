package cli

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/seat-lock-reservation/internal/config"
	"github.com/iliyamo/seat-lock-reservation/internal/database"
)

func openDB() (*sql.DB, error) {
	user, pass, host, port, name := config.DBFromEnv()
	return database.Open(user, pass, host, port, name)
}

func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the catalog and booking tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func NewSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo movie, screen, 100 seats and tonight's show",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			showID, err := database.Seed(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded (show %d)\n", showID)
			return nil
		},
	}
}
