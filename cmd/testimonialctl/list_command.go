package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/testimonial-hub/backend/internal/models"
	"github.com/testimonial-hub/backend/internal/repositories"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		businessFlag string
		statusFlag   string
		limit        int
		withDeleted  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List testimonials with their retention deadlines",
		RunE: func(cmd *cobra.Command, args []string) error {
			var f repositories.TestimonialFilter
			if businessFlag != "" {
				id, err := uuid.Parse(businessFlag)
				if err != nil {
					return fmt.Errorf("invalid --business: %w", err)
				}
				f.BusinessID = &id
			}
			if statusFlag != "" {
				status := strings.ToUpper(statusFlag)
				if _, ok := models.ValidTestimonialTransitions[status]; !ok && status != models.TestimonialStatusDeleted {
					return fmt.Errorf("unknown status %q", statusFlag)
				}
				f.Status = &status
			}
			f.Limit = limit
			f.IncludeDeleted = withDeleted

			c, err := ctx.ensureContainer(cmd.Context())
			if err != nil {
				return err
			}
			list, err := c.Testimonials.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			if ctx.jsonOut {
				return writeJSON(cmd, list)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTestimonials(list, time.Now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&businessFlag, "business", "", "Only testimonials of this business id")
	cmd.Flags().StringVar(&statusFlag, "status", "", "PENDING, APPROVED, REJECTED or DELETED")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows (at most 100)")
	cmd.Flags().BoolVar(&withDeleted, "include-deleted", false, "Include deleted testimonials")
	return cmd
}

func renderTestimonials(list []models.Testimonial, now time.Time) string {
	rows := make([][]string, 0, len(list))
	for _, t := range list {
		recorded := t.RecordedAt
		rows = append(rows, []string{
			t.ID.String(),
			t.Status,
			t.CampaignID.String(),
			strconv.Itoa(t.DurationSeconds) + "s",
			fileSize(t.FileSizeBytes),
			relativeTime(&recorded, now),
			relativeTime(t.ExpiresAt, now),
		})
	}
	return renderTable(
		[]string{"ID", "Status", "Campaign", "Length", "Size", "Recorded", "Expires"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
}
