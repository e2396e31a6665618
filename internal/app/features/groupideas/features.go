package groupideas

import (
	"net/http"

	ideasvc "github.com/dalemusser/ideahub/internal/app/services/groupideas"
	"github.com/dalemusser/ideahub/internal/app/system/httpjson"
	"github.com/go-chi/chi/v5"
)

type statusRequest struct {
	Status string `json:"status" validate:"required,featurestatus"`
}

type toggleResponse struct {
	Voted bool `json:"voted"`
}

// HandleAddFeature handles POST .../features.
func (h *Handler) HandleAddFeature(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, true)
	if !ok {
		return
	}
	var in ideasvc.FeatureInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	f, err := h.Ideas.AddFeature(r.Context(), sc.caller, sc.groupID, sc.ideaID, in)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Created(w, f)
}

// HandleDeleteFeature handles DELETE .../features/{featureID}.
func (h *Handler) HandleDeleteFeature(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, true)
	if !ok {
		return
	}
	if err := h.Ideas.DeleteFeature(r.Context(), sc.caller, sc.groupID, sc.ideaID, chi.URLParam(r, "featureID")); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}

// HandleToggleFeatureVote handles POST .../features/{featureID}/vote.
func (h *Handler) HandleToggleFeatureVote(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, true)
	if !ok {
		return
	}
	voted, err := h.Ideas.ToggleFeatureVote(r.Context(), sc.caller, sc.groupID, sc.ideaID, chi.URLParam(r, "featureID"))
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, toggleResponse{Voted: voted})
}

// HandleFeatureStatus handles PUT .../features/{featureID}/status.
func (h *Handler) HandleFeatureStatus(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolve(w, r, true)
	if !ok {
		return
	}
	var in statusRequest
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	f, err := h.Ideas.UpdateFeatureStatus(r.Context(), sc.caller, sc.groupID, sc.ideaID, chi.URLParam(r, "featureID"), in.Status)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, f)
}
