package groupideas

import (
	"net/http"

	"github.com/dalemusser/ideahub/internal/app/system/httpjson"
)

type commentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// ServeComments handles GET .../comments.
func (h *Handler) ServeComments(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, true)
	if !ok {
		return
	}
	cs, err := h.Ideas.ListComments(r.Context(), sc.caller, sc.groupID, sc.ideaID)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, cs)
}

// HandleAddComment handles POST .../comments.
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, true)
	if !ok {
		return
	}
	var in commentRequest
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	c, err := h.Ideas.AddComment(r.Context(), sc.caller, sc.groupID, sc.ideaID, in.Text)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Created(w, c)
}

// HandleDeleteComment handles DELETE .../comments/{commentID}.
func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, true)
	if !ok {
		return
	}
	commentID, err := httpjson.ObjectID(r, "commentID")
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	if err := h.Ideas.DeleteComment(r.Context(), sc.caller, sc.groupID, sc.ideaID, commentID); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}
