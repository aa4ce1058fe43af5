package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/testimonial-hub/backend/internal/db"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.ensureContainer(cmd.Context())
			if err != nil {
				return err
			}
			pending, err := db.PendingMigrations(cmd.Context(), c.Pool, c.Config.MigrationsDir)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			for _, v := range pending {
				fmt.Fprintln(cmd.OutOrStdout(), "pending:", v)
			}
			if dryRun {
				return nil
			}
			return c.Migrate(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only list pending migrations")
	return cmd
}
