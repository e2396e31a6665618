package groupideas

import (
	"net/http"

	"github.com/dalemusser/ideahub/internal/app/system/httpjson"
)

type voteRequest struct {
	Rating int `json:"rating" validate:"required"`
}

// HandleVote handles PUT .../votes. Ratings outside 1..5 are clamped by
// the service.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, true)
	if !ok {
		return
	}
	var in voteRequest
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	if err := h.Ideas.AddVote(r.Context(), sc.caller, sc.groupID, sc.ideaID, in.Rating); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	h.writeStats(w, r, sc)
}

// HandleRemoveVote handles DELETE .../votes.
func (h *Handler) HandleRemoveVote(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, true)
	if !ok {
		return
	}
	if err := h.Ideas.RemoveVote(r.Context(), sc.caller, sc.groupID, sc.ideaID); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	h.writeStats(w, r, sc)
}

// HandleToggleVote handles POST .../upvote.
func (h *Handler) HandleToggleVote(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, true)
	if !ok {
		return
	}
	if _, err := h.Ideas.ToggleVote(r.Context(), sc.caller, sc.groupID, sc.ideaID); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	h.writeStats(w, r, sc)
}

// writeStats answers a rating change with the idea's fresh stats.
func (h *Handler) writeStats(w http.ResponseWriter, r *http.Request, sc scope) {
	stats, err := h.Ideas.IdeaStats(r.Context(), sc.caller, sc.groupID, sc.ideaID)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, stats)
}
