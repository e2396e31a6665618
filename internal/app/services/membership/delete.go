package membership

import (
	"context"

	"github.com/dalemusser/ideahub/internal/app/policy/grouppolicy"
	"github.com/dalemusser/ideahub/internal/app/store/audit"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DeleteGroup removes the group and everything it owns. Owner only.
//
// Order: votes and comments, ideas, member rows, requests and invites, then
// the group document. The group goes last so a failed cascade can be
// retried; every step is a delete and safe to repeat.
func (s *Service) DeleteGroup(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID) error {
	if _, err := s.loadGroup(ctx, groupID); err != nil {
		return err
	}
	actor, err := s.actorRow(ctx, groupID, caller)
	if err != nil {
		return err
	}
	if err := grouppolicy.CanDeleteGroup(actor); err != nil {
		s.audit.MembershipDenied(ctx, audit.EventGroupDeleted, groupID.Hex(), caller.UserID, apperr.CodeOf(err))
		return err
	}

	var members, ideas int64
	err = s.st.Txn.Run(ctx, func(ctx context.Context) error {
		ideaIDs, err := s.st.GroupIdeas.ListIDsByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if _, err := s.st.Votes.DeleteByIdeas(ctx, ideaIDs); err != nil {
			return err
		}
		if _, err := s.st.Comments.DeleteByIdeas(ctx, ideaIDs); err != nil {
			return err
		}
		if ideas, err = s.st.GroupIdeas.DeleteByGroup(ctx, groupID); err != nil {
			return err
		}
		if members, err = s.st.Members.DeleteByGroup(ctx, groupID); err != nil {
			return err
		}
		if _, err := s.st.JoinRequests.DeleteByGroup(ctx, groupID); err != nil {
			return err
		}
		if _, err := s.st.Invites.DeleteByGroup(ctx, groupID); err != nil {
			return err
		}
		_, err = s.st.Groups.Delete(ctx, groupID)
		return err
	})
	if err != nil {
		s.log.Warn("group cascade delete failed",
			zap.String("group_id", groupID.Hex()), zap.Error(err))
		return apperr.Store("delete group", apperr.CodeGroupNotFound, err)
	}

	s.audit.GroupDeleted(ctx, groupID.Hex(), caller.UserID, members, ideas)
	return nil
}
