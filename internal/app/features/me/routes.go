// internal/app/features/me/routes.go
package me

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /me.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/sync", h.HandleSync)
	r.Get("/groups", h.ServeGroups)
	r.Get("/invites", h.ServeInvites)
	r.Get("/notifications", h.ServeNotifications)
	r.Post("/notifications/{id}/read", h.HandleMarkRead)
	return r
}
