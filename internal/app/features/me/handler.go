// internal/app/features/me/handler.go
package me

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/ideahub/internal/app/services/membership"
	"github.com/dalemusser/ideahub/internal/app/services/stores"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/httpjson"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

// Handler serves the caller's own view: directory sync, groups, pending
// invites and notification inbox.
type Handler struct {
	Members       *membership.Service
	Users         stores.Users
	Notifications stores.Notifications
	Log           *zap.Logger
}

// NewHandler creates a new me handler.
func NewHandler(members *membership.Service, users stores.Users, inbox stores.Notifications, logger *zap.Logger) *Handler {
	return &Handler{
		Members:       members,
		Users:         users,
		Notifications: inbox,
		Log:           logger,
	}
}

// HandleSync handles POST /me/sync. It mirrors the token's identity into the
// user directory so that other members can find the caller by email, display
// name or username when inviting.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpjson.Caller(w, r)
	if !ok {
		return
	}
	if caller.DisplayName == "" {
		httpjson.Error(w, r, h.Log, apperr.Validation(apperr.CodeInvalidInput, "token carries no display name"))
		return
	}
	u, err := h.Users.Upsert(r.Context(), models.User{
		ID:          caller.UserID,
		DisplayName: caller.DisplayName,
		Email:       caller.Email,
		Username:    caller.Username,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		httpjson.Error(w, r, h.Log, apperr.Store("sync user", apperr.CodeUserNotFound, err))
		return
	}
	httpjson.OK(w, u)
}

// ServeGroups handles GET /me/groups.
func (h *Handler) ServeGroups(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpjson.Caller(w, r)
	if !ok {
		return
	}
	httpjson.OK(w, h.Members.ListMyGroups(r.Context(), caller))
}

// ServeInvites handles GET /me/invites.
func (h *Handler) ServeInvites(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpjson.Caller(w, r)
	if !ok {
		return
	}
	httpjson.OK(w, h.Members.ListMyInvites(r.Context(), caller))
}

// ServeNotifications handles GET /me/notifications?limit=N, newest first.
func (h *Handler) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpjson.Caller(w, r)
	if !ok {
		return
	}
	limit := int64(defaultNotificationLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpjson.Error(w, r, h.Log, apperr.Validation(apperr.CodeInvalidInput, "limit: must be a positive integer"))
			return
		}
		limit = int64(min(n, maxNotificationLimit))
	}

	list, err := h.Notifications.ListForUser(r.Context(), caller.UserID, limit)
	if err != nil {
		h.Log.Warn("list notifications failed", zap.String("user_id", caller.UserID), zap.Error(err))
		list = nil
	}
	if list == nil {
		list = []models.Notification{}
	}
	httpjson.OK(w, list)
}

// HandleMarkRead handles POST /me/notifications/{id}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpjson.Caller(w, r)
	if !ok {
		return
	}
	err := h.Notifications.MarkRead(r.Context(), caller.UserID, chi.URLParam(r, "id"))
	if errors.Is(err, mongo.ErrNoDocuments) {
		httpjson.Error(w, r, h.Log, apperr.NotFound(apperr.CodeNotificationMissing, "notification not found"))
		return
	}
	if err != nil {
		httpjson.Error(w, r, h.Log, apperr.Store("mark notification read", apperr.CodeNotificationMissing, err))
		return
	}
	httpjson.NoContent(w)
}
