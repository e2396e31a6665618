package groupideas

import (
	"net/http"

	ideasvc "github.com/dalemusser/ideahub/internal/app/services/groupideas"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/httpjson"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type shareRequest struct {
	IdeaID string `json:"ideaId" validate:"required,len=24,hexadecimal"`
}

// ideaView is an idea with its derived rating stats as seen by the caller.
type ideaView struct {
	models.GroupIdea
	Stats ideasvc.Stats `json:"stats"`
}

// ServeList handles GET /groups/{groupID}/ideas.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, false)
	if !ok {
		return
	}
	ideas, err := h.Ideas.ListGroupIdeas(r.Context(), sc.caller, sc.groupID)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, ideas)
}

// HandleCreate handles POST /groups/{groupID}/ideas.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, false)
	if !ok {
		return
	}
	var in ideasvc.IdeaInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	gi, err := h.Ideas.CreateGroupIdea(r.Context(), sc.caller, sc.groupID, in)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Created(w, gi)
}

// HandleShare handles POST /groups/{groupID}/ideas/share.
func (h *Handler) HandleShare(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, false)
	if !ok {
		return
	}
	var in shareRequest
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	src, err := primitive.ObjectIDFromHex(in.IdeaID)
	if err != nil {
		httpjson.Error(w, r, h.Log, apperr.Validation(apperr.CodeInvalidInput, "ideaId: not a valid id"))
		return
	}
	gi, err := h.Ideas.ShareIdeaToGroup(r.Context(), sc.caller, sc.groupID, src)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Created(w, gi)
}

// ServeIdea handles GET /groups/{groupID}/ideas/{ideaID}.
func (h *Handler) ServeIdea(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, true)
	if !ok {
		return
	}
	gi, err := h.Ideas.GetIdea(r.Context(), sc.caller, sc.groupID, sc.ideaID)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	stats, err := h.Ideas.IdeaStats(r.Context(), sc.caller, sc.groupID, sc.ideaID)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, ideaView{GroupIdea: gi, Stats: stats})
}

// HandleDelete handles DELETE /groups/{groupID}/ideas/{ideaID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, true)
	if !ok {
		return
	}
	if err := h.Ideas.DeleteGroupIdea(r.Context(), sc.caller, sc.groupID, sc.ideaID); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}

// HandleApprove handles POST /groups/{groupID}/ideas/{ideaID}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, true)
	if !ok {
		return
	}
	if err := h.Ideas.ApproveIdea(r.Context(), sc.caller, sc.groupID, sc.ideaID); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}
