package membership

import (
	"context"
	"errors"

	"github.com/dalemusser/ideahub/internal/app/policy/grouppolicy"
	"github.com/dalemusser/ideahub/internal/app/store/audit"
	groupstore "github.com/dalemusser/ideahub/internal/app/store/groups"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/dalemusser/ideahub/internal/app/system/invitecode"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreateGroupInput is the user-supplied part of a new group.
type CreateGroupInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// CreateGroup creates a group owned by the caller with the caller as its
// only member. A colliding invite code is regenerated.
func (s *Service) CreateGroup(ctx context.Context, caller identity.Caller, in CreateGroupInput) (models.Group, error) {
	name := htmlsanitize.PlainText(in.Name)
	if name == "" {
		return models.Group{}, apperr.Validation(apperr.CodeInvalidInput, "name: is required")
	}
	desc := htmlsanitize.PlainText(in.Description)

	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := invitecode.Generate()
		if err != nil {
			return models.Group{}, apperr.Transient(apperr.CodeStoreFailure, "generate invite code", err)
		}
		now := s.now()
		g := models.Group{
			ID:          primitive.NewObjectID(),
			Name:        name,
			Description: desc,
			OwnerID:     caller.UserID,
			OwnerName:   caller.DisplayName,
			InviteCode:  code,
			CreatedAt:   now,
			MemberCount: 1,
			MemberIDs:   []string{caller.UserID},
		}
		owner := models.GroupMember{
			GroupID:  g.ID,
			UserID:   caller.UserID,
			UserName: caller.DisplayName,
			Role:     models.RoleOwner,
			JoinedAt: now,
		}

		inserted := false
		err = s.st.Txn.Run(ctx, func(ctx context.Context) error {
			inserted = false
			if err := s.st.Groups.Create(ctx, g); err != nil {
				return err
			}
			inserted = true
			return s.st.Members.Create(ctx, owner)
		})
		if errors.Is(err, groupstore.ErrDuplicateInviteCode) {
			s.log.Info("invite code collision; regenerating", zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			if inserted {
				s.discardGroup(ctx, g.ID)
			}
			return models.Group{}, apperr.Store("create group", apperr.CodeGroupNotFound, err)
		}

		s.audit.GroupCreated(ctx, g.ID.Hex(), caller.UserID, g.Name)
		return g, nil
	}
	return models.Group{}, apperr.Transient(apperr.CodeInviteCodeExhausted, "create group", groupstore.ErrDuplicateInviteCode)
}

// discardGroup deletes a group whose owner row could not be written. Inside
// a transaction the insert has already been rolled back and this is a no-op.
func (s *Service) discardGroup(ctx context.Context, groupID primitive.ObjectID) {
	if _, err := s.st.Groups.Delete(ctx, groupID); err != nil {
		s.log.Warn("discard memberless group failed",
			zap.String("group_id", groupID.Hex()), zap.Error(err))
	}
}

// RegenerateInviteCode replaces the group's invite code. Owner or admin.
func (s *Service) RegenerateInviteCode(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID) (string, error) {
	if _, err := s.requireManager(ctx, groupID, caller, audit.EventInviteCodeRegenerated); err != nil {
		return "", err
	}
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := invitecode.Generate()
		if err != nil {
			return "", apperr.Transient(apperr.CodeStoreFailure, "generate invite code", err)
		}
		err = s.st.Groups.SetInviteCode(ctx, groupID, code)
		if errors.Is(err, groupstore.ErrDuplicateInviteCode) {
			continue
		}
		if err != nil {
			return "", apperr.Store("set invite code", apperr.CodeGroupNotFound, err)
		}
		s.audit.Membership(ctx, audit.EventInviteCodeRegenerated, groupID.Hex(), caller.UserID, "", nil)
		return code, nil
	}
	return "", apperr.Transient(apperr.CodeInviteCodeExhausted, "regenerate invite code", groupstore.ErrDuplicateInviteCode)
}

// requireManager loads the caller's row and checks it may manage the group.
// A denial is written to the audit trail under eventType when one is given.
func (s *Service) requireManager(ctx context.Context, groupID primitive.ObjectID, caller identity.Caller, eventType string) (models.GroupMember, error) {
	actor, err := s.actorRow(ctx, groupID, caller)
	if err == nil {
		err = grouppolicy.CanManage(actor)
	}
	if err != nil {
		if eventType != "" && apperr.Is(err, apperr.KindUnauthorized) {
			s.audit.MembershipDenied(ctx, eventType, groupID.Hex(), caller.UserID, apperr.CodeOf(err))
		}
		return models.GroupMember{}, err
	}
	return actor, nil
}
