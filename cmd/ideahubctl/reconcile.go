package main

import (
	"fmt"

	"github.com/dalemusser/ideahub/internal/app/services/aggregates"
	"github.com/dalemusser/ideahub/internal/app/services/stores"
	"github.com/dalemusser/ideahub/internal/app/store/audit"
	"github.com/dalemusser/ideahub/internal/app/system/auditlog"
	"github.com/dalemusser/ideahub/internal/app/system/timeouts"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newReconcileCmd(g *globals) *cobra.Command {
	var (
		groupHex    string
		concurrency int
		maxMembers  int
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute member and comment counters from their rows",
		Long: `reconcile rebuilds each group's member_ids and member_count from its
member rows (restoring a missing owner row first) and each idea's
comment_count from its comments. Without --group every group is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var groupID primitive.ObjectID
			if groupHex != "" {
				id, err := primitive.ObjectIDFromHex(groupHex)
				if err != nil {
					return fmt.Errorf("--group: %w", err)
				}
				groupID = id
			}

			logger := g.logger()
			defer func() { _ = logger.Sync() }()

			ctx, cancel := timeouts.WithTimeout(cmd.Context(), timeouts.Batch(), logger, "reconcile")
			defer cancel()

			db, done, err := g.connect(ctx)
			if err != nil {
				return err
			}
			defer done()

			trail := auditlog.New(audit.New(db), logger, auditlog.Uniform("all"))
			svc := aggregates.New(stores.NewMongo(db, logger), trail, logger)
			svc.SetConcurrency(concurrency)
			svc.SetMaxMembers(maxMembers)
			out := cmd.OutOrStdout()

			if !groupID.IsZero() {
				rep, err := svc.ReconcileGroup(ctx, groupID)
				if err != nil {
					return err
				}
				if g.json {
					return printJSON(out, rep)
				}
				fmt.Fprintf(out, "group %s: members %d -> %d, added %v, removed %v, owner row restored %v\n",
					groupHex, rep.CountBefore, rep.CountAfter, rep.Added, rep.Removed, rep.OwnerRowRestored)
				return nil
			}

			sum, err := svc.ReconcileAll(ctx)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(out, sum)
			}
			fmt.Fprintf(out, "groups: %d checked, %d repaired, %d over capacity\nideas:  %d checked, %d repaired\nfailures: %d\n",
				sum.Groups, sum.GroupsFixed, sum.OverCapacity, sum.Ideas, sum.IdeasFixed, sum.Failures)
			if sum.OverCapacity > 0 {
				return fmt.Errorf("%d groups have more member rows than --max-members allows", sum.OverCapacity)
			}
			if sum.Failures > 0 {
				return fmt.Errorf("%d documents could not be reconciled", sum.Failures)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&groupHex, "group", "", "Reconcile a single group by id")
	cmd.Flags().IntVar(&concurrency, "concurrency", aggregates.DefaultConcurrency, "Groups reconciled in parallel")
	cmd.Flags().IntVar(&maxMembers, "max-members", models.DefaultMaxMembers, "Member cap the groups validator enforces")
	return cmd
}
