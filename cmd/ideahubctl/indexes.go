package main

import (
	"fmt"

	"github.com/dalemusser/ideahub/internal/app/system/indexes"
	"github.com/dalemusser/ideahub/internal/app/system/timeouts"
	"github.com/dalemusser/ideahub/internal/app/system/validators"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/spf13/cobra"
)

func newIndexesCmd(g *globals) *cobra.Command {
	var maxMembers int
	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "Create indexes and collection validators",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := g.logger()
			defer func() { _ = logger.Sync() }()
			ctx, cancel := timeouts.WithTimeout(cmd.Context(), timeouts.Long(), logger, "ensure schema")
			defer cancel()

			db, done, err := g.connect(ctx)
			if err != nil {
				return err
			}
			defer done()

			if err := indexes.EnsureAll(ctx, db); err != nil {
				return fmt.Errorf("ensuring indexes: %w", err)
			}
			if err := validators.EnsureAll(ctx, db, maxMembers); err != nil {
				return fmt.Errorf("ensuring validators: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema ensured on %s\n", g.database)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxMembers, "max-members", models.DefaultMaxMembers, "Member cap enforced by the groups validator")
	return cmd
}
