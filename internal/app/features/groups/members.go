package groups

import (
	"net/http"

	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/httpjson"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type addMemberRequest struct {
	UserID string `json:"userId" validate:"required,max=200"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required,memberrole"`
}

type inviteRequest struct {
	Lookup string `json:"lookup" validate:"required,max=200"`
}

// target resolves the caller, the group id and the {userID} path segment
// shared by the per-member endpoints. It writes the error response itself.
func (h *Handler) target(w http.ResponseWriter, r *http.Request) (identity.Caller, primitive.ObjectID, string, bool) {
	caller, ok := httpjson.Caller(w, r)
	if !ok {
		return identity.Caller{}, primitive.NilObjectID, "", false
	}
	groupID, err := httpjson.ObjectID(r, "groupID")
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return identity.Caller{}, primitive.NilObjectID, "", false
	}
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		httpjson.Error(w, r, h.Log, apperr.Validation(apperr.CodeInvalidInput, "userID: is required"))
		return identity.Caller{}, primitive.NilObjectID, "", false
	}
	return caller, groupID, userID, true
}

// group resolves the caller and the group id.
func (h *Handler) group(w http.ResponseWriter, r *http.Request) (identity.Caller, primitive.ObjectID, bool) {
	caller, ok := httpjson.Caller(w, r)
	if !ok {
		return identity.Caller{}, primitive.NilObjectID, false
	}
	groupID, err := httpjson.ObjectID(r, "groupID")
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return identity.Caller{}, primitive.NilObjectID, false
	}
	return caller, groupID, true
}

// ServeMembers handles GET /groups/{groupID}/members.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	caller, groupID, ok := h.group(w, r)
	if !ok {
		return
	}
	rows, err := h.Members.ListMembers(r.Context(), caller, groupID)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, rows)
}

// HandleAddMember handles POST /groups/{groupID}/members (direct add).
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	caller, groupID, ok := h.group(w, r)
	if !ok {
		return
	}
	var in addMemberRequest
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	m, err := h.Members.AddMemberDirect(r.Context(), caller, groupID, in.UserID)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Created(w, m)
}

// HandleLeaveGroup handles DELETE /groups/{groupID}/members/me.
func (h *Handler) HandleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	caller, groupID, ok := h.group(w, r)
	if !ok {
		return
	}
	if err := h.Members.LeaveGroup(r.Context(), caller, groupID); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}

// HandleRemoveMember handles DELETE /groups/{groupID}/members/{userID}.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	caller, groupID, userID, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.Members.RemoveMember(r.Context(), caller, groupID, userID); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}

// HandleUpdateRole handles PUT /groups/{groupID}/members/{userID}/role.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	caller, groupID, userID, ok := h.target(w, r)
	if !ok {
		return
	}
	var in roleRequest
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	if err := h.Members.UpdateMemberRole(r.Context(), caller, groupID, userID, in.Role); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}

// ServeJoinRequests handles GET /groups/{groupID}/requests.
func (h *Handler) ServeJoinRequests(w http.ResponseWriter, r *http.Request) {
	caller, groupID, ok := h.group(w, r)
	if !ok {
		return
	}
	reqs, err := h.Members.ListJoinRequests(r.Context(), caller, groupID)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, reqs)
}

// HandleApproveRequest handles POST /groups/{groupID}/requests/{userID}/approve.
func (h *Handler) HandleApproveRequest(w http.ResponseWriter, r *http.Request) {
	caller, groupID, userID, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.Members.ApproveJoinRequest(r.Context(), caller, groupID, userID); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}

// HandleRejectRequest handles POST /groups/{groupID}/requests/{userID}/reject.
func (h *Handler) HandleRejectRequest(w http.ResponseWriter, r *http.Request) {
	caller, groupID, userID, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.Members.RejectJoinRequest(r.Context(), caller, groupID, userID); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}

// HandleInvite handles POST /groups/{groupID}/invites. The lookup is an
// email, display name, username or user id.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	caller, groupID, ok := h.group(w, r)
	if !ok {
		return
	}
	var in inviteRequest
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	inv, err := h.Members.InviteByIdentity(r.Context(), caller, groupID, in.Lookup)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Created(w, inv)
}

// HandleAcceptInvite handles POST /groups/{groupID}/invite/accept.
func (h *Handler) HandleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	caller, groupID, ok := h.group(w, r)
	if !ok {
		return
	}
	if err := h.Members.AcceptGroupInvite(r.Context(), caller, groupID); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}

// HandleDeclineInvite handles POST /groups/{groupID}/invite/decline.
func (h *Handler) HandleDeclineInvite(w http.ResponseWriter, r *http.Request) {
	caller, groupID, ok := h.group(w, r)
	if !ok {
		return
	}
	if err := h.Members.DeclineGroupInvite(r.Context(), caller, groupID); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}
