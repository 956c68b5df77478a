package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"restaurant-kds/internal/database"
	"restaurant-kds/internal/logger"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				files, err := database.MigrationFiles(database.Migrations())
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			}

			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}

			log := logger.New("migrate")
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			db, err := database.New(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			return db.RunMigrations(ctx, database.Migrations())
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "print embedded migrations without connecting")

	return cmd
}
