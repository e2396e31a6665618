package membership

import (
	"context"
	"errors"

	"github.com/dalemusser/ideahub/internal/app/store/audit"
	requeststore "github.com/dalemusser/ideahub/internal/app/store/joinrequests"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/dalemusser/ideahub/internal/app/system/invitecode"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RequestToJoin files a pending join request for the caller against the
// group holding inviteCode and notifies the owner.
func (s *Service) RequestToJoin(ctx context.Context, caller identity.Caller, inviteCode string) (models.Group, error) {
	code := invitecode.Normalize(inviteCode)
	if !invitecode.Valid(code) {
		return models.Group{}, apperr.Validation(apperr.CodeInvalidInviteCode, "invite code must look like XXXX-XXXX")
	}

	g, err := s.st.Groups.GetByInviteCode(ctx, code)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Group{}, apperr.NotFound(apperr.CodeGroupNotFound, "no group has that invite code")
	}
	if err != nil {
		return models.Group{}, apperr.Store("find group by invite code", apperr.CodeGroupNotFound, err)
	}

	_, isMember, err := s.memberRow(ctx, g.ID, caller.UserID)
	if err != nil {
		return models.Group{}, err
	}
	if isMember || g.HasMember(caller.UserID) {
		return models.Group{}, apperr.Conflict(apperr.CodeAlreadyMember, "you are already a member of this group")
	}

	_, err = s.st.JoinRequests.Get(ctx, g.ID, caller.UserID)
	switch {
	case err == nil:
		return models.Group{}, apperr.Conflict(apperr.CodeDuplicateRequest, "you already asked to join this group")
	case !errors.Is(err, mongo.ErrNoDocuments):
		return models.Group{}, apperr.Store("load join request", apperr.CodeRequestNotFound, err)
	}

	if s.full(g, caller.UserID) {
		return models.Group{}, apperr.Conflict(apperr.CodeGroupFull, "the group is full")
	}

	req := models.JoinRequest{
		GroupID:     g.ID,
		UserID:      caller.UserID,
		UserName:    caller.DisplayName,
		RequestedAt: s.now(),
		Status:      models.JoinRequestPending,
	}
	if err := s.st.JoinRequests.Create(ctx, req); err != nil {
		if errors.Is(err, requeststore.ErrDuplicateRequest) {
			return models.Group{}, apperr.Conflict(apperr.CodeDuplicateRequest, "you already asked to join this group")
		}
		return models.Group{}, apperr.Store("create join request", apperr.CodeGroupNotFound, err)
	}

	s.audit.Membership(ctx, audit.EventJoinRequested, g.ID.Hex(), caller.UserID, caller.UserID, nil)
	s.notify.Send(ctx, models.Notification{
		UserID:  g.OwnerID,
		Type:    models.NotifyJoinRequest,
		Title:   "New join request",
		Message: caller.DisplayName + " wants to join " + g.Name,
		GroupID: g.ID.Hex(),
	})
	return g, nil
}

// ApproveJoinRequest admits targetUserID. Owner or admin. Approving a user
// who is already a member succeeds without counting them twice.
func (s *Service) ApproveJoinRequest(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID, targetUserID string) error {
	g, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if _, err := s.requireManager(ctx, groupID, caller, audit.EventJoinApproved); err != nil {
		return err
	}

	name := ""
	req, err := s.st.JoinRequests.Get(ctx, groupID, targetUserID)
	switch {
	case err == nil:
		name = req.UserName
	case errors.Is(err, mongo.ErrNoDocuments):
		existing, isMember, err := s.memberRow(ctx, groupID, targetUserID)
		if err != nil {
			return err
		}
		if !isMember {
			return apperr.NotFound(apperr.CodeRequestNotFound, "no pending request from that user")
		}
		name = existing.UserName
	default:
		return apperr.Store("load join request", apperr.CodeRequestNotFound, err)
	}

	if s.full(g, targetUserID) {
		return apperr.Conflict(apperr.CodeGroupFull, "the group is full")
	}

	added, err := s.admit(ctx, g, models.GroupMember{
		GroupID:  groupID,
		UserID:   targetUserID,
		UserName: name,
		Role:     models.RoleMember,
		JoinedAt: s.now(),
	})
	if err != nil {
		return err
	}
	if !added {
		return nil
	}

	s.audit.Membership(ctx, audit.EventJoinApproved, groupID.Hex(), caller.UserID, targetUserID, nil)
	s.notify.Send(ctx, models.Notification{
		UserID:  targetUserID,
		Type:    models.NotifyJoinApproved,
		Title:   "Request approved",
		Message: "You are now a member of " + g.Name,
		GroupID: groupID.Hex(),
	})
	return nil
}

// RejectJoinRequest deletes the pending request and tells the requester.
func (s *Service) RejectJoinRequest(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID, targetUserID string) error {
	g, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if _, err := s.requireManager(ctx, groupID, caller, audit.EventJoinRejected); err != nil {
		return err
	}

	n, err := s.st.JoinRequests.Delete(ctx, groupID, targetUserID)
	if err != nil {
		return apperr.Store("delete join request", apperr.CodeRequestNotFound, err)
	}
	if n == 0 {
		return apperr.NotFound(apperr.CodeRequestNotFound, "no pending request from that user")
	}

	s.audit.Membership(ctx, audit.EventJoinRejected, groupID.Hex(), caller.UserID, targetUserID, nil)
	s.notify.Send(ctx, models.Notification{
		UserID:  targetUserID,
		Type:    models.NotifyJoinRejected,
		Title:   "Request declined",
		Message: "Your request to join " + g.Name + " was declined",
		GroupID: groupID.Hex(),
	})
	return nil
}
