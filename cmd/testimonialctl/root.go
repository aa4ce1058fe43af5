package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/testimonial-hub/backend/internal/bootstrap"
	"github.com/testimonial-hub/backend/internal/config"
	"go.uber.org/zap"
)

type commandContext struct {
	verbose   bool
	jsonOut   bool
	cfg       *config.Config
	log       *zap.Logger
	container *bootstrap.Container
}

func (c *commandContext) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Load()
	}
	return c.cfg
}

func (c *commandContext) logger() *zap.Logger {
	if c.log == nil {
		c.log = zap.NewNop()
		if c.verbose {
			if l, err := zap.NewDevelopment(); err == nil {
				c.log = l
			}
		}
	}
	return c.log
}

// ensureContainer connects to postgres and redis on first use.
func (c *commandContext) ensureContainer(ctx context.Context) (*bootstrap.Container, error) {
	if c.container != nil {
		return c.container, nil
	}
	cfg := c.config()
	if err := cfg.Validate(c.logger()); err != nil {
		return nil, err
	}
	if cfg.PostgresMaxConns > 4 {
		cfg.PostgresMaxConns = 4
	}
	container, err := bootstrap.New(ctx, cfg, c.logger())
	if err != nil {
		return nil, err
	}
	c.container = container
	return container, nil
}

func (c *commandContext) close() {
	if c.container != nil {
		c.container.Close()
	}
	if c.log != nil {
		_ = c.log.Sync()
	}
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "testimonialctl",
		Short:         "Operate testimonial retention and purges",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Log to stderr")
	rootCmd.PersistentFlags().BoolVar(&ctx.jsonOut, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(newSweepCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))

	return rootCmd
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
