package membership

import (
	"context"
	"errors"

	"github.com/dalemusser/ideahub/internal/app/policy/grouppolicy"
	"github.com/dalemusser/ideahub/internal/app/store/audit"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LeaveGroup removes the caller from the group. The owner cannot leave.
func (s *Service) LeaveGroup(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID) error {
	g, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}
	m, isMember, err := s.memberRow(ctx, groupID, caller.UserID)
	if err != nil {
		return err
	}
	if !isMember {
		if !g.HasMember(caller.UserID) {
			return apperr.NotFound(apperr.CodeMemberNotFound, "you are not a member of this group")
		}
		// Counter lists a user with no row; let the leave clear it.
		m = models.GroupMember{GroupID: groupID, UserID: caller.UserID, Role: models.RoleMember}
	}
	if g.OwnerID == caller.UserID {
		m.Role = models.RoleOwner
	}
	if err := grouppolicy.CanLeave(m); err != nil {
		return err
	}

	if err := s.drop(ctx, groupID, caller.UserID); err != nil {
		return err
	}
	s.audit.Membership(ctx, audit.EventMemberLeft, groupID.Hex(), caller.UserID, caller.UserID, nil)
	return nil
}

// RemoveMember kicks targetID out of the group. The owner may remove anyone
// else; an admin only plain members.
func (s *Service) RemoveMember(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID, targetID string) error {
	g, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}
	actor, err := s.actorRow(ctx, groupID, caller)
	if err != nil {
		return err
	}
	target, isMember, err := s.memberRow(ctx, groupID, targetID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperr.NotFound(apperr.CodeMemberNotFound, "that user is not a member")
	}
	if err := grouppolicy.CanRemoveMember(actor, target); err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			s.audit.MembershipDenied(ctx, audit.EventMemberRemoved, groupID.Hex(), caller.UserID, apperr.CodeOf(err))
		}
		return err
	}

	if err := s.drop(ctx, groupID, targetID); err != nil {
		return err
	}

	s.audit.Membership(ctx, audit.EventMemberRemoved, groupID.Hex(), caller.UserID, targetID, nil)
	s.notify.Send(ctx, models.Notification{
		UserID:  targetID,
		Type:    models.NotifyMemberRemoved,
		Title:   "Removed from group",
		Message: "You were removed from " + g.Name,
		GroupID: groupID.Hex(),
	})
	return nil
}

// UpdateMemberRole sets targetID's role to admin or member. Owner only.
func (s *Service) UpdateMemberRole(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID, targetID, role string) error {
	actor, err := s.actorRow(ctx, groupID, caller)
	if err != nil {
		return err
	}
	target, isMember, err := s.memberRow(ctx, groupID, targetID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperr.NotFound(apperr.CodeMemberNotFound, "that user is not a member")
	}
	if err := grouppolicy.CanChangeRole(actor, target, role); err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			s.audit.MembershipDenied(ctx, audit.EventMemberRoleChanged, groupID.Hex(), caller.UserID, apperr.CodeOf(err))
		}
		return err
	}
	if target.Role == role {
		return nil
	}

	if err := s.st.Members.UpdateRole(ctx, groupID, targetID, role); err != nil {
		return apperr.Store("update role", apperr.CodeMemberNotFound, err)
	}
	s.audit.MemberRoleChanged(ctx, groupID.Hex(), caller.UserID, targetID, target.Role, role)
	return nil
}

// AddMemberDirect adds a user from the directory without a request or
// invite. Owner or admin. Any pending request or invite is cleared.
func (s *Service) AddMemberDirect(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID, targetUserID string) (models.GroupMember, error) {
	g, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return models.GroupMember{}, err
	}
	if _, err := s.requireManager(ctx, groupID, caller, audit.EventMemberAdded); err != nil {
		return models.GroupMember{}, err
	}

	u, err := s.st.Users.GetByID(ctx, targetUserID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.GroupMember{}, apperr.NotFound(apperr.CodeUserNotFound, "no such user")
	}
	if err != nil {
		return models.GroupMember{}, apperr.Store("load user", apperr.CodeUserNotFound, err)
	}

	_, isMember, err := s.memberRow(ctx, groupID, u.ID)
	if err != nil {
		return models.GroupMember{}, err
	}
	if isMember && g.HasMember(u.ID) {
		return models.GroupMember{}, apperr.Conflict(apperr.CodeAlreadyMember, "%s is already a member", u.DisplayName)
	}
	if s.full(g, u.ID) {
		return models.GroupMember{}, apperr.Conflict(apperr.CodeGroupFull, "the group is full")
	}

	m := models.GroupMember{
		GroupID:  groupID,
		UserID:   u.ID,
		UserName: u.DisplayName,
		Role:     models.RoleMember,
		JoinedAt: s.now(),
	}
	if _, err := s.admit(ctx, g, m); err != nil {
		return models.GroupMember{}, err
	}
	s.audit.MemberAdded(ctx, groupID.Hex(), caller.UserID, u.ID, models.RoleMember, "direct")
	return m, nil
}
