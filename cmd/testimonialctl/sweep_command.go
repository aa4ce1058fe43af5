package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/testimonial-hub/backend/internal/http/dto"
	"github.com/testimonial-hub/backend/internal/lifecycle"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete every expired testimonial now",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.ensureContainer(cmd.Context())
			if err != nil {
				return err
			}
			res := c.Cleanup.Run(cmd.Context())
			if ctx.jsonOut {
				return writeJSON(cmd, dto.NewCleanupResponse(res))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSweep(res))
			return nil
		},
	}
}

func renderSweep(res lifecycle.SweepResult) string {
	out := renderTable(
		[]string{"Category", "Expired"},
		[][]string{
			{string(lifecycle.CategoryPendingTimeout), strconv.Itoa(res.PendingExpired)},
			{string(lifecycle.CategoryApprovedExpired), strconv.Itoa(res.ApprovedExpired)},
			{string(lifecycle.CategoryRejectedExpired), strconv.Itoa(res.RejectedExpired)},
			{"deleted", strconv.Itoa(res.DeletedCount)},
		},
		[]columnAlignment{alignLeft, alignRight},
	)
	if len(res.Failures) == 0 {
		return out
	}

	rows := make([][]string, 0, len(res.Failures))
	for _, f := range res.Failures {
		rows = append(rows, []string{f.TestimonialID.String(), f.Kind, f.Error})
	}
	return out + "\n" + renderTable([]string{"Testimonial", "Kind", "Error"}, rows, nil)
}
