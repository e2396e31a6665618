package groups

import (
	"net/http"

	"github.com/dalemusser/ideahub/internal/app/services/membership"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

type joinRequest struct {
	InviteCode string `json:"inviteCode" validate:"required,invitecode"`
}

type inviteCodeResponse struct {
	InviteCode string `json:"inviteCode"`
}

// HandleCreateGroup handles POST /groups.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpjson.Caller(w, r)
	if !ok {
		return
	}
	var in membership.CreateGroupInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	g, err := h.Members.CreateGroup(r.Context(), caller, in)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Created(w, g)
}

// HandleRequestToJoin handles POST /groups/join. The response carries the
// group id and name so the client can show what was requested, but not the
// member list.
func (h *Handler) HandleRequestToJoin(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpjson.Caller(w, r)
	if !ok {
		return
	}
	var in joinRequest
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	if h.JoinLimit != nil {
		if ok, reason := h.JoinLimit.Check(r, caller.UserID); !ok {
			h.Log.Warn("join attempt throttled", zap.String("user_id", caller.UserID))
			httpjson.TooManyRequests(w, 60, reason)
			return
		}
	}
	g, err := h.Members.RequestToJoin(r.Context(), caller, in.InviteCode)
	if err != nil {
		if h.JoinLimit != nil && apperr.Is(err, apperr.KindNotFound) {
			h.JoinLimit.Miss(caller.UserID)
		}
		httpjson.Error(w, r, h.Log, err)
		return
	}
	if h.JoinLimit != nil {
		h.JoinLimit.Reset(caller.UserID)
	}
	httpjson.Write(w, http.StatusAccepted, map[string]string{
		"groupId": g.ID.Hex(),
		"name":    g.Name,
		"status":  "pending",
	})
}

// ServeGroup handles GET /groups/{groupID}.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpjson.Caller(w, r)
	if !ok {
		return
	}
	groupID, err := httpjson.ObjectID(r, "groupID")
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	g, err := h.Members.GetGroup(r.Context(), caller, groupID)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, g)
}

// HandleDeleteGroup handles DELETE /groups/{groupID}. Owner only.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpjson.Caller(w, r)
	if !ok {
		return
	}
	groupID, err := httpjson.ObjectID(r, "groupID")
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	if err := h.Members.DeleteGroup(r.Context(), caller, groupID); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}

// HandleRegenerateInviteCode handles POST /groups/{groupID}/invite-code.
func (h *Handler) HandleRegenerateInviteCode(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpjson.Caller(w, r)
	if !ok {
		return
	}
	groupID, err := httpjson.ObjectID(r, "groupID")
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	code, err := h.Members.RegenerateInviteCode(r.Context(), caller, groupID)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, inviteCodeResponse{InviteCode: code})
}
