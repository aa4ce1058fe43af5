package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/testimonial-hub/backend/internal/lifecycle"
)

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <testimonial-id>...",
		Short: "Purge testimonials immediately",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, 0, len(args))
			for _, a := range args {
				id, err := uuid.Parse(a)
				if err != nil {
					return fmt.Errorf("invalid testimonial id %q: %w", a, err)
				}
				ids = append(ids, id)
			}

			c, err := ctx.ensureContainer(cmd.Context())
			if err != nil {
				return err
			}

			var failed int
			for _, id := range ids {
				t, err := c.Manager.DeleteNow(cmd.Context(), id, time.Now().UTC(), lifecycle.SystemActor)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s (%v)\n", id, lifecycle.FailureKind(err), err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, t.Status)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d deletions failed", failed, len(ids))
			}
			return nil
		},
	}
}
