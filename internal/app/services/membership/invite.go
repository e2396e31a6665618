package membership

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/ideahub/internal/app/store/audit"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// minIDLookupLen is the shortest lookup string tried as a raw user id.
const minIDLookupLen = 20

// ResolveUser finds a user by exact email, display name, username and
// finally id, in that order. The first match wins.
func (s *Service) ResolveUser(ctx context.Context, lookup string) (*models.User, error) {
	lookup = strings.TrimSpace(lookup)
	if lookup == "" {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "lookup: is required")
	}

	finders := []func(context.Context, string) (*models.User, error){
		s.st.Users.FindByEmail,
		s.st.Users.FindByDisplayName,
		s.st.Users.FindByUsername,
	}
	if len(lookup) >= minIDLookupLen {
		finders = append(finders, s.st.Users.GetByID)
	}
	for _, find := range finders {
		u, err := find(ctx, lookup)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Store("look up user", apperr.CodeUserNotFound, err)
		}
	}
	return nil, apperr.NotFound(apperr.CodeUserNotFound, "no user matches %q", lookup)
}

// InviteByIdentity invites the user matching lookup into the group. Any
// member may invite. Re-inviting a pending invitee overwrites the invite.
func (s *Service) InviteByIdentity(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID, lookup string) (models.GroupInvite, error) {
	g, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return models.GroupInvite{}, err
	}
	if _, err := s.actorRow(ctx, groupID, caller); err != nil {
		return models.GroupInvite{}, err
	}

	target, err := s.ResolveUser(ctx, lookup)
	if err != nil {
		return models.GroupInvite{}, err
	}
	if target.ID == caller.UserID {
		return models.GroupInvite{}, apperr.Conflict(apperr.CodeSelfInvite, "you cannot invite yourself")
	}
	_, isMember, err := s.memberRow(ctx, groupID, target.ID)
	if err != nil {
		return models.GroupInvite{}, err
	}
	if isMember || g.HasMember(target.ID) {
		return models.GroupInvite{}, apperr.Conflict(apperr.CodeAlreadyMember, "%s is already a member", target.DisplayName)
	}

	inv := models.GroupInvite{
		ID:              models.InviteKey(groupID, target.ID),
		GroupID:         groupID,
		GroupName:       g.Name,
		InvitedUserID:   target.ID,
		InvitedUserName: target.DisplayName,
		InvitedBy:       caller.UserID,
		InvitedByName:   caller.DisplayName,
		CreatedAt:       s.now(),
		Status:          models.InvitePending,
	}
	if err := s.st.Invites.Upsert(ctx, inv); err != nil {
		return models.GroupInvite{}, apperr.Store("write invite", apperr.CodeGroupNotFound, err)
	}

	s.audit.Membership(ctx, audit.EventMemberInvited, groupID.Hex(), caller.UserID, target.ID, nil)
	s.notify.Send(ctx, models.Notification{
		UserID:  target.ID,
		Type:    models.NotifyGroupInvite,
		Title:   "Group invitation",
		Message: caller.DisplayName + " invited you to join " + g.Name,
		GroupID: groupID.Hex(),
	})
	return inv, nil
}

// AcceptGroupInvite admits the caller through their pending invite.
// Accepting again once a member succeeds and changes nothing.
func (s *Service) AcceptGroupInvite(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID) error {
	g, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}

	existing, isMember, err := s.memberRow(ctx, groupID, caller.UserID)
	if err != nil {
		return err
	}
	name := caller.DisplayName
	if isMember {
		name = existing.UserName
	} else {
		inv, err := s.st.Invites.Get(ctx, models.InviteKey(groupID, caller.UserID))
		if err != nil {
			return apperr.Store("load invite", apperr.CodeInviteNotFound, err)
		}
		if name == "" {
			name = inv.InvitedUserName
		}
		if s.full(g, caller.UserID) {
			return apperr.Conflict(apperr.CodeGroupFull, "the group is full")
		}
	}

	added, err := s.admit(ctx, g, models.GroupMember{
		GroupID:  groupID,
		UserID:   caller.UserID,
		UserName: name,
		Role:     models.RoleMember,
		JoinedAt: s.now(),
	})
	if err != nil {
		return err
	}
	if added {
		s.audit.Membership(ctx, audit.EventInviteAccepted, groupID.Hex(), caller.UserID, caller.UserID, nil)
	}
	return nil
}

// DeclineGroupInvite deletes the caller's pending invite and tells the inviter.
func (s *Service) DeclineGroupInvite(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID) error {
	key := models.InviteKey(groupID, caller.UserID)
	inv, err := s.st.Invites.Get(ctx, key)
	if err != nil {
		return apperr.Store("load invite", apperr.CodeInviteNotFound, err)
	}
	if _, err := s.st.Invites.Delete(ctx, key); err != nil {
		return apperr.Store("delete invite", apperr.CodeInviteNotFound, err)
	}

	s.audit.Membership(ctx, audit.EventInviteDeclined, groupID.Hex(), caller.UserID, caller.UserID, nil)
	s.notify.Send(ctx, models.Notification{
		UserID:  inv.InvitedBy,
		Type:    models.NotifyInviteDeclined,
		Title:   "Invitation declined",
		Message: caller.DisplayName + " declined your invitation to " + inv.GroupName,
		GroupID: groupID.Hex(),
	})
	return nil
}
