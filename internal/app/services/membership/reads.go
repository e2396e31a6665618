package membership

import (
	"context"

	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Read paths. A store failure while listing is logged and shows as an
// empty list; a missing group or a non-member caller is still an error.

// GetGroup returns the group if the caller is a member.
func (s *Service) GetGroup(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID) (models.Group, error) {
	g, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	if _, err := s.actorRow(ctx, groupID, caller); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// ListMyGroups returns the groups the caller belongs to, newest first.
func (s *Service) ListMyGroups(ctx context.Context, caller identity.Caller) []models.Group {
	gs, err := s.st.Groups.ListByMember(ctx, caller.UserID)
	if err != nil {
		s.log.Warn("list groups failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return []models.Group{}
	}
	if gs == nil {
		gs = []models.Group{}
	}
	return gs
}

// ListMembers returns the member rows in join order. Members only.
func (s *Service) ListMembers(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID) ([]models.GroupMember, error) {
	if _, err := s.actorRow(ctx, groupID, caller); err != nil {
		return nil, err
	}
	ms, err := s.st.Members.ListByGroup(ctx, groupID)
	if err != nil {
		s.log.Warn("list members failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		return []models.GroupMember{}, nil
	}
	if ms == nil {
		ms = []models.GroupMember{}
	}
	return ms, nil
}

// ListJoinRequests returns pending requests, oldest first. Owner or admin.
func (s *Service) ListJoinRequests(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID) ([]models.JoinRequest, error) {
	if _, err := s.requireManager(ctx, groupID, caller, ""); err != nil {
		return nil, err
	}
	rs, err := s.st.JoinRequests.ListByGroup(ctx, groupID)
	if err != nil {
		s.log.Warn("list join requests failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		return []models.JoinRequest{}, nil
	}
	if rs == nil {
		rs = []models.JoinRequest{}
	}
	return rs, nil
}

// ListMyInvites returns the caller's pending invites, newest first.
func (s *Service) ListMyInvites(ctx context.Context, caller identity.Caller) []models.GroupInvite {
	invs, err := s.st.Invites.ListForUser(ctx, caller.UserID)
	if err != nil {
		s.log.Warn("list invites failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return []models.GroupInvite{}
	}
	if invs == nil {
		invs = []models.GroupInvite{}
	}
	return invs
}

// CanManage reports whether the caller is an owner or admin of the group.
// It returns the same typed errors as the manager-only operations.
func (s *Service) CanManage(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID) error {
	_, err := s.requireManager(ctx, groupID, caller, "")
	return err
}
