// Package membership is the group membership manager: group creation,
// invite codes, join requests, direct invites, roles and the member cap.
//
// Every operation takes the caller explicitly and returns an apperr typed
// error. Membership-changing sequences write the member row first, then the
// group counters, then clean up the pending request or invite. They run in
// a transaction when the deployment has one; otherwise each step is
// idempotent so a retry after a partial failure converges.
package membership

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/ideahub/internal/app/services/stores"
	groupstore "github.com/dalemusser/ideahub/internal/app/store/groups"
	memberstore "github.com/dalemusser/ideahub/internal/app/store/members"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/auditlog"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/dalemusser/ideahub/internal/app/system/notify"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// inviteCodeAttempts bounds invite code regeneration on a unique-index collision.
const inviteCodeAttempts = 5

// Service implements the membership operations.
type Service struct {
	st         stores.Bundle
	notify     notify.Sender
	audit      *auditlog.Logger
	log        *zap.Logger
	maxMembers int
	now        func() time.Time
}

// New builds a Service. maxMembers <= 0 uses models.DefaultMaxMembers.
// sender, audit and logger may be nil.
func New(st stores.Bundle, sender notify.Sender, audit *auditlog.Logger, logger *zap.Logger, maxMembers int) *Service {
	if sender == nil {
		sender = notify.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxMembers <= 0 {
		maxMembers = models.DefaultMaxMembers
	}
	return &Service{
		st:         st,
		notify:     sender,
		audit:      audit,
		log:        logger,
		maxMembers: maxMembers,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// MaxMembers returns the member cap in force.
func (s *Service) MaxMembers() int { return s.maxMembers }

func (s *Service) loadGroup(ctx context.Context, groupID primitive.ObjectID) (models.Group, error) {
	g, err := s.st.Groups.GetByID(ctx, groupID)
	if err != nil {
		return models.Group{}, apperr.Store("load group", apperr.CodeGroupNotFound, err)
	}
	return g, nil
}

// memberRow reads userID's membership row fresh. ok is false for a non-member.
func (s *Service) memberRow(ctx context.Context, groupID primitive.ObjectID, userID string) (models.GroupMember, bool, error) {
	m, err := s.st.Members.Get(ctx, groupID, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.GroupMember{}, false, nil
	}
	if err != nil {
		return models.GroupMember{}, false, apperr.Store("load member", apperr.CodeMemberNotFound, err)
	}
	return m, true, nil
}

// actorRow returns the caller's membership row or Unauthorized/not_member.
func (s *Service) actorRow(ctx context.Context, groupID primitive.ObjectID, caller identity.Caller) (models.GroupMember, error) {
	m, ok, err := s.memberRow(ctx, groupID, caller.UserID)
	if err != nil {
		return models.GroupMember{}, err
	}
	if !ok {
		return models.GroupMember{}, apperr.Unauthorized(apperr.CodeNotMember, "you are not a member of this group")
	}
	return m, nil
}

// admit runs the shared join sequence for m: member row, counter, then
// removal of any pending request or invite for the user. added reports
// whether anything changed; an existing member converges to a no-op.
func (s *Service) admit(ctx context.Context, g models.Group, m models.GroupMember) (added bool, err error) {
	err = s.st.Txn.Run(ctx, func(ctx context.Context) error {
		added = false
		created := false

		_, err := s.st.Members.Get(ctx, g.ID, m.UserID)
		switch {
		case err == nil:
		case errors.Is(err, mongo.ErrNoDocuments):
			if err := s.st.Members.Create(ctx, m); err != nil {
				if errors.Is(err, memberstore.ErrDuplicateMember) {
					return apperr.Transient(apperr.CodeConcurrentUpdate, "add member row", err)
				}
				return err
			}
			created = true
		default:
			return err
		}

		grew, err := s.st.Groups.AddMember(ctx, g.ID, m.UserID, s.maxMembers)
		if err != nil {
			if created && errors.Is(err, groupstore.ErrGroupFull) {
				if _, rerr := s.st.Members.Remove(ctx, g.ID, m.UserID); rerr != nil {
					s.log.Warn("remove member row after full group failed",
						zap.String("group_id", g.ID.Hex()),
						zap.String("user_id", m.UserID),
						zap.Error(rerr))
				}
			}
			return err
		}
		added = created || grew

		if _, err := s.st.JoinRequests.Delete(ctx, g.ID, m.UserID); err != nil {
			return err
		}
		if _, err := s.st.Invites.Delete(ctx, models.InviteKey(g.ID, m.UserID)); err != nil {
			return err
		}
		return nil
	})
	return added, translate("add member", err)
}

// drop removes userID's row, then takes them out of the group counters.
func (s *Service) drop(ctx context.Context, groupID primitive.ObjectID, userID string) error {
	err := s.st.Txn.Run(ctx, func(ctx context.Context) error {
		if _, err := s.st.Members.Remove(ctx, groupID, userID); err != nil {
			return err
		}
		_, err := s.st.Groups.RemoveMember(ctx, groupID, userID)
		return err
	})
	return translate("remove member", err)
}

// translate maps raw store errors from a write path onto the taxonomy.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, groupstore.ErrGroupFull):
		return apperr.Conflict(apperr.CodeGroupFull, "the group is full")
	case errors.Is(err, memberstore.ErrDuplicateMember):
		return apperr.Conflict(apperr.CodeAlreadyMember, "already a member")
	}
	return apperr.Store(op, apperr.CodeGroupNotFound, err)
}

func (s *Service) full(g models.Group, userID string) bool {
	return !g.HasMember(userID) && !g.CanAddMembers(s.maxMembers)
}
