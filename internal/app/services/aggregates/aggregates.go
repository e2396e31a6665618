// Package aggregates repairs the denormalized counters that the membership
// and idea services maintain incrementally: a group's member_ids and
// member_count, and an idea's comment_count. The source of truth is always
// the per-row collection.
package aggregates

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	"github.com/dalemusser/ideahub/internal/app/services/stores"
	"github.com/dalemusser/ideahub/internal/app/store/audit"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/auditlog"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many groups ReconcileAll repairs at once.
const DefaultConcurrency = 4

// casAttempts bounds the re-read and swap loop when a counter write loses
// to a concurrent join, leave or comment.
const casAttempts = 5

// Service recomputes counters from rows.
type Service struct {
	st          stores.Bundle
	audit       *auditlog.Logger
	log         *zap.Logger
	concurrency int
	maxMembers  int
}

// New builds a Service. audit and logger may be nil.
func New(st stores.Bundle, audit *auditlog.Logger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{st: st, audit: audit, log: logger, concurrency: DefaultConcurrency, maxMembers: models.DefaultMaxMembers}
}

// SetMaxMembers sets the member cap the groups validator enforces. A group
// with more rows than this is reported, never written. Values below 1 are
// ignored.
func (s *Service) SetMaxMembers(n int) {
	if n > 0 {
		s.maxMembers = n
	}
}

// SetConcurrency changes how many groups ReconcileAll repairs at once.
// Values below 1 are ignored.
func (s *Service) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// GroupReport describes what ReconcileGroup found and fixed.
type GroupReport struct {
	GroupID          primitive.ObjectID `json:"groupId"`
	OwnerRowRestored bool               `json:"ownerRowRestored"`
	OwnersDemoted    []string           `json:"ownersDemoted,omitempty"`
	Added            []string           `json:"added,omitempty"`
	Removed          []string           `json:"removed,omitempty"`
	CountBefore      int                `json:"countBefore"`
	CountAfter       int                `json:"countAfter"`
}

// Changed reports whether anything was written.
func (r GroupReport) Changed() bool {
	return r.OwnerRowRestored || len(r.OwnersDemoted) > 0 || len(r.Added) > 0 ||
		len(r.Removed) > 0 || r.CountBefore != r.CountAfter
}

// IdeaReport describes what ReconcileIdea found and fixed.
type IdeaReport struct {
	IdeaID      primitive.ObjectID `json:"ideaId"`
	CountBefore int                `json:"countBefore"`
	CountAfter  int                `json:"countAfter"`
}

// Changed reports whether the counter was rewritten.
func (r IdeaReport) Changed() bool { return r.CountBefore != r.CountAfter }

// ReconcileGroup makes the group document agree with its member rows.
// A missing owner row is recreated first, and any other row claiming the
// owner role is demoted to admin.
func (s *Service) ReconcileGroup(ctx context.Context, groupID primitive.ObjectID) (GroupReport, error) {
	rep := GroupReport{GroupID: groupID}

	g, err := s.st.Groups.GetByID(ctx, groupID)
	if err != nil {
		return rep, apperr.Store("load group", apperr.CodeGroupNotFound, err)
	}
	rows, err := s.st.Members.ListByGroup(ctx, groupID)
	if err != nil {
		return rep, apperr.Store("list members", apperr.CodeGroupNotFound, err)
	}

	hasOwner := false
	for _, r := range rows {
		switch {
		case r.UserID == g.OwnerID:
			hasOwner = true
			if r.Role != models.RoleOwner {
				if err := s.st.Members.UpdateRole(ctx, groupID, r.UserID, models.RoleOwner); err != nil {
					return rep, apperr.Store("restore owner role", apperr.CodeMemberNotFound, err)
				}
			}
		case r.Role == models.RoleOwner:
			if err := s.st.Members.UpdateRole(ctx, groupID, r.UserID, models.RoleAdmin); err != nil {
				return rep, apperr.Store("demote extra owner", apperr.CodeMemberNotFound, err)
			}
			rep.OwnersDemoted = append(rep.OwnersDemoted, r.UserID)
		}
	}
	if !hasOwner {
		owner := models.GroupMember{
			GroupID:  groupID,
			UserID:   g.OwnerID,
			UserName: g.OwnerName,
			Role:     models.RoleOwner,
			JoinedAt: g.CreatedAt,
		}
		if err := s.st.Members.Create(ctx, owner); err != nil {
			return rep, apperr.Store("restore owner row", apperr.CodeGroupNotFound, err)
		}
		rows = append([]models.GroupMember{owner}, rows...)
		rep.OwnerRowRestored = true
	}

	for attempt := 1; ; attempt++ {
		want := make([]string, 0, len(rows))
		for _, r := range rows {
			want = append(want, r.UserID)
		}
		rep.CountBefore = g.MemberCount
		rep.Added, rep.Removed = diff(g.MemberIDs, want)
		rep.CountAfter = len(want)

		if len(rep.Added) == 0 && len(rep.Removed) == 0 && g.MemberCount == len(want) && len(g.MemberIDs) == len(want) {
			break
		}
		if len(want) > s.maxMembers {
			rep.CountAfter = rep.CountBefore
			s.log.Error("group has more member rows than the cap; counters left unchanged",
				zap.String("group_id", groupID.Hex()),
				zap.Int("rows", len(want)),
				zap.Int("max_members", s.maxMembers))
			return rep, apperr.Conflict(apperr.CodeGroupOverCapacity,
				"group has %d member rows, above the cap of %d", len(want), s.maxMembers)
		}

		swapped, err := s.st.Groups.SetMembers(ctx, groupID, g.MemberIDs, g.MemberCount, want)
		if err != nil {
			return rep, apperr.Store("write member counters", apperr.CodeGroupNotFound, err)
		}
		if swapped {
			break
		}
		if attempt == casAttempts {
			return rep, apperr.Transient(apperr.CodeConcurrentUpdate, "write member counters",
				errors.New("group changed on every attempt"))
		}
		s.log.Debug("member counter repair lost a race; re-reading",
			zap.String("group_id", groupID.Hex()), zap.Int("attempt", attempt))

		if g, err = s.st.Groups.GetByID(ctx, groupID); err != nil {
			return rep, apperr.Store("load group", apperr.CodeGroupNotFound, err)
		}
		if rows, err = s.st.Members.ListByGroup(ctx, groupID); err != nil {
			return rep, apperr.Store("list members", apperr.CodeGroupNotFound, err)
		}
	}

	if rep.Changed() {
		s.log.Info("group counters repaired",
			zap.String("group_id", groupID.Hex()),
			zap.Int("count_before", rep.CountBefore),
			zap.Int("count_after", rep.CountAfter),
			zap.Strings("added", rep.Added),
			zap.Strings("removed", rep.Removed),
			zap.Bool("owner_row_restored", rep.OwnerRowRestored))
		s.audit.Reconciled(ctx, audit.EventGroupReconciled, groupID.Hex(), map[string]string{
			"count_before":       strconv.Itoa(rep.CountBefore),
			"count_after":        strconv.Itoa(rep.CountAfter),
			"owner_row_restored": strconv.FormatBool(rep.OwnerRowRestored),
		})
	}
	return rep, nil
}

// ReconcileIdea makes the idea's comment_count match its comment rows.
// The write only lands if no comment moved the counter since it was read.
func (s *Service) ReconcileIdea(ctx context.Context, ideaID primitive.ObjectID) (IdeaReport, error) {
	rep := IdeaReport{IdeaID: ideaID}
	var gi models.GroupIdea
	for attempt := 1; ; attempt++ {
		var err error
		gi, err = s.st.GroupIdeas.GetByID(ctx, ideaID)
		if err != nil {
			return rep, apperr.Store("load idea", apperr.CodeIdeaNotFound, err)
		}
		n, err := s.st.Comments.CountByIdea(ctx, ideaID)
		if err != nil {
			return rep, apperr.Store("count comments", apperr.CodeIdeaNotFound, err)
		}
		rep.CountBefore = gi.CommentCount
		rep.CountAfter = int(n)
		if !rep.Changed() {
			return rep, nil
		}
		swapped, err := s.st.GroupIdeas.SetCommentCount(ctx, ideaID, rep.CountBefore, rep.CountAfter)
		if err != nil {
			return rep, apperr.Store("write comment count", apperr.CodeIdeaNotFound, err)
		}
		if swapped {
			break
		}
		if attempt == casAttempts {
			return rep, apperr.Transient(apperr.CodeConcurrentUpdate, "write comment count",
				errors.New("comment count changed on every attempt"))
		}
		s.log.Debug("comment count repair lost a race; re-reading",
			zap.String("idea_id", ideaID.Hex()), zap.Int("attempt", attempt))
	}
	s.log.Info("comment count repaired",
		zap.String("idea_id", ideaID.Hex()),
		zap.Int("count_before", rep.CountBefore),
		zap.Int("count_after", rep.CountAfter))
	s.audit.Reconciled(ctx, audit.EventIdeaReconciled, gi.GroupID.Hex(), map[string]string{
		"idea_id":      ideaID.Hex(),
		"count_before": strconv.Itoa(rep.CountBefore),
		"count_after":  strconv.Itoa(rep.CountAfter),
	})
	return rep, nil
}

// Summary totals one ReconcileAll pass.
type Summary struct {
	Groups      int `json:"groups"`
	GroupsFixed int `json:"groupsFixed"`
	Ideas       int `json:"ideas"`
	IdeasFixed  int `json:"ideasFixed"`
	Failures    int `json:"failures"`

	// OverCapacity counts groups with more member rows than the cap. They
	// are reported and left unwritten until an operator removes members.
	OverCapacity int `json:"overCapacity"`
}

// ReconcileAll walks every group and every group idea. A failure on one
// document is logged and counted; the pass carries on. The returned error
// is non-nil only when the id listings themselves fail or ctx ends.
func (s *Service) ReconcileAll(ctx context.Context) (Summary, error) {
	var sum Summary
	var mu sync.Mutex

	groupIDs, err := s.st.Groups.ListIDs(ctx)
	if err != nil {
		return sum, apperr.Store("list groups", apperr.CodeGroupNotFound, err)
	}
	ideaIDs, err := s.st.GroupIdeas.ListIDs(ctx)
	if err != nil {
		return sum, apperr.Store("list ideas", apperr.CodeIdeaNotFound, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range groupIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := s.ReconcileGroup(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			sum.Groups++
			switch {
			case apperr.HasCode(err, apperr.CodeGroupOverCapacity):
				sum.OverCapacity++
			case err != nil:
				sum.Failures++
				s.log.Warn("reconcile group failed", zap.String("group_id", id.Hex()), zap.Error(err))
			case rep.Changed():
				sum.GroupsFixed++
			}
			return nil
		})
	}
	for _, id := range ideaIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := s.ReconcileIdea(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			sum.Ideas++
			switch {
			case err != nil:
				sum.Failures++
				s.log.Warn("reconcile idea failed", zap.String("idea_id", id.Hex()), zap.Error(err))
			case rep.Changed():
				sum.IdeasFixed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, err
	}
	return sum, nil
}

// diff returns the ids in want but not in have, and in have but not in want.
func diff(have, want []string) (added, removed []string) {
	in := func(set []string) map[string]bool {
		m := make(map[string]bool, len(set))
		for _, v := range set {
			m[v] = true
		}
		return m
	}
	h, w := in(have), in(want)
	for v := range w {
		if !h[v] {
			added = append(added, v)
		}
	}
	for v := range h {
		if !w[v] {
			removed = append(removed, v)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
