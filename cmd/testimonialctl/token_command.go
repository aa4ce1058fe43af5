package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/testimonial-hub/backend/internal/auth"
	"github.com/testimonial-hub/backend/internal/rbac"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var (
		userFlag     string
		businessFlag string
		role         string
		email        string
		ttl          time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a dashboard token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			businessID, err := uuid.Parse(businessFlag)
			if err != nil {
				return fmt.Errorf("invalid --business: %w", err)
			}
			userID := uuid.New()
			if userFlag != "" {
				if userID, err = uuid.Parse(userFlag); err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}
			if !rbac.IsValidRole(role) {
				return fmt.Errorf("unknown role %q", role)
			}

			cfg := ctx.config()
			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.JWTExpiration
			}
			token, err := auth.GenerateJWT(cfg.JWTSecret, userID, businessID, role, email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&businessFlag, "business", "", "Business id the token is scoped to")
	cmd.Flags().StringVar(&userFlag, "user", "", "User id (random when empty)")
	cmd.Flags().StringVar(&role, "role", "owner", "owner, editor or viewer")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to JWT_EXPIRATION_HOURS)")
	_ = cmd.MarkFlagRequired("business")
	return cmd
}
