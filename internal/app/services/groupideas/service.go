// Package groupideas is the group idea and voting engine: ideas created in
// or shared into a group, the approval gate, embedded features with their
// status workflow and upvotes, star ratings and comments.
package groupideas

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/ideahub/internal/app/services/stores"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/auditlog"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/dalemusser/ideahub/internal/app/system/notify"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// casAttempts bounds the compare-and-swap loop on an idea's features.
const casAttempts = 5

// Service implements the group idea operations.
type Service struct {
	st     stores.Bundle
	notify notify.Sender
	audit  *auditlog.Logger
	log    *zap.Logger
	now    func() time.Time
}

// New builds a Service. sender, audit and logger may be nil.
func New(st stores.Bundle, sender notify.Sender, audit *auditlog.Logger, logger *zap.Logger) *Service {
	if sender == nil {
		sender = notify.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		st:     st,
		notify: sender,
		audit:  audit,
		log:    logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// member returns the caller's row in groupID, or Unauthorized/not_member.
func (s *Service) member(ctx context.Context, groupID primitive.ObjectID, caller identity.Caller) (models.GroupMember, error) {
	m, err := s.st.Members.Get(ctx, groupID, caller.UserID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.GroupMember{}, apperr.Unauthorized(apperr.CodeNotMember, "you are not a member of this group")
	}
	if err != nil {
		return models.GroupMember{}, apperr.Store("load member", apperr.CodeMemberNotFound, err)
	}
	return m, nil
}

// loadIdea reads ideaID and checks that it belongs to groupID. An idea in
// another group is reported as missing.
func (s *Service) loadIdea(ctx context.Context, groupID, ideaID primitive.ObjectID) (models.GroupIdea, error) {
	gi, err := s.st.GroupIdeas.GetByID(ctx, ideaID)
	if err != nil {
		return models.GroupIdea{}, apperr.Store("load idea", apperr.CodeIdeaNotFound, err)
	}
	if gi.GroupID != groupID {
		return models.GroupIdea{}, apperr.NotFound(apperr.CodeIdeaNotFound, "idea not found in this group")
	}
	return gi, nil
}

// memberIdea combines the membership check with loadIdea.
func (s *Service) memberIdea(ctx context.Context, caller identity.Caller, groupID, ideaID primitive.ObjectID) (models.GroupMember, models.GroupIdea, error) {
	m, err := s.member(ctx, groupID, caller)
	if err != nil {
		return models.GroupMember{}, models.GroupIdea{}, err
	}
	gi, err := s.loadIdea(ctx, groupID, ideaID)
	if err != nil {
		return models.GroupMember{}, models.GroupIdea{}, err
	}
	return m, gi, nil
}

// mutateFeatures applies change to a fresh copy of the idea and writes the
// features back only if nobody else wrote in between. A lost race re-reads
// and re-applies change; after casAttempts losses the caller gets a
// retryable concurrent_update.
func (s *Service) mutateFeatures(ctx context.Context, groupID, ideaID primitive.ObjectID, change func(gi *models.GroupIdea) error) (models.GroupIdea, error) {
	for attempt := 1; attempt <= casAttempts; attempt++ {
		gi, err := s.loadIdea(ctx, groupID, ideaID)
		if err != nil {
			return models.GroupIdea{}, err
		}
		if err := change(&gi); err != nil {
			return models.GroupIdea{}, err
		}
		swapped, err := s.st.GroupIdeas.ReplaceFeatures(ctx, ideaID, gi.Version, gi.Features)
		if err != nil {
			return models.GroupIdea{}, apperr.Store("write features", apperr.CodeIdeaNotFound, err)
		}
		if swapped {
			gi.Version++
			return gi, nil
		}
		s.log.Debug("feature write lost a race; retrying",
			zap.String("idea_id", ideaID.Hex()), zap.Int("attempt", attempt))
	}
	return models.GroupIdea{}, apperr.Transient(apperr.CodeConcurrentUpdate, "write features",
		errors.New("idea changed on every attempt"))
}

// memberIDsExcept lists the group's member ids minus skip, read from the
// member rows. A read failure yields nil and is logged.
func (s *Service) memberIDsExcept(ctx context.Context, groupID primitive.ObjectID, skip string) []string {
	rows, err := s.st.Members.ListByGroup(ctx, groupID)
	if err != nil {
		s.log.Warn("list members for fan-out failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		return nil
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.UserID != skip {
			ids = append(ids, r.UserID)
		}
	}
	return ids
}
