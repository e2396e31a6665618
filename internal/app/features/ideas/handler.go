// internal/app/features/ideas/handler.go
package ideas

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/ideahub/internal/app/services/stores"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ideahub/internal/app/system/httpjson"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	defaultFeedLimit = 50
	maxFeedLimit     = 200
)

// Handler serves personal ideas and the public discovery feed.
type Handler struct {
	Ideas stores.Ideas
	Log   *zap.Logger
}

// NewHandler creates a new ideas handler.
func NewHandler(ideas stores.Ideas, logger *zap.Logger) *Handler {
	return &Handler{Ideas: ideas, Log: logger}
}

type createRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	IsPublic    bool   `json:"isPublic"`
}

// HandleCreate handles POST /ideas.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpjson.Caller(w, r)
	if !ok {
		return
	}
	var in createRequest
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	idea := models.Idea{
		ID:          primitive.NewObjectID(),
		OwnerID:     caller.UserID,
		OwnerName:   caller.DisplayName,
		Name:        htmlsanitize.PlainText(in.Name),
		Description: htmlsanitize.PlainText(in.Description),
		IsPublic:    in.IsPublic,
		CreatedAt:   time.Now().UTC(),
	}
	if idea.Name == "" {
		httpjson.Error(w, r, h.Log, apperr.Validation(apperr.CodeInvalidInput, "name: is required"))
		return
	}
	if err := h.Ideas.Create(r.Context(), idea); err != nil {
		httpjson.Error(w, r, h.Log, apperr.Store("create idea", apperr.CodeIdeaNotFound, err))
		return
	}
	httpjson.Created(w, idea)
}

// ServeMine handles GET /ideas/mine.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpjson.Caller(w, r)
	if !ok {
		return
	}
	list, err := h.Ideas.ListByOwner(r.Context(), caller.UserID)
	if err != nil {
		h.Log.Warn("list own ideas failed", zap.String("user_id", caller.UserID), zap.Error(err))
	}
	httpjson.OK(w, nonNil(list))
}

// ServePublic handles GET /ideas/public?limit=N, newest first.
func (h *Handler) ServePublic(w http.ResponseWriter, r *http.Request) {
	if _, ok := httpjson.Caller(w, r); !ok {
		return
	}
	limit := int64(defaultFeedLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpjson.Error(w, r, h.Log, apperr.Validation(apperr.CodeInvalidInput, "limit: must be a positive integer"))
			return
		}
		limit = int64(min(n, maxFeedLimit))
	}
	list, err := h.Ideas.ListPublic(r.Context(), limit)
	if err != nil {
		h.Log.Warn("list public ideas failed", zap.Error(err))
	}
	httpjson.OK(w, nonNil(list))
}

// ServeIdea handles GET /ideas/{ideaID}. Private ideas are visible to their
// owner only; to anyone else they do not exist.
func (h *Handler) ServeIdea(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpjson.Caller(w, r)
	if !ok {
		return
	}
	id, err := httpjson.ObjectID(r, "ideaID")
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	idea, err := h.Ideas.GetByID(r.Context(), id)
	if err == nil && !idea.IsPublic && idea.OwnerID != caller.UserID {
		err = apperr.NotFound(apperr.CodeIdeaNotFound, "idea not found")
	}
	if err != nil {
		httpjson.Error(w, r, h.Log, apperr.Store("load idea", apperr.CodeIdeaNotFound, err))
		return
	}
	httpjson.OK(w, idea)
}

func nonNil(list []models.Idea) []models.Idea {
	if list == nil {
		return []models.Idea{}
	}
	return list
}
