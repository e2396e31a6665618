// internal/app/features/ideas/routes.go
package ideas

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /ideas.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	r.Get("/mine", h.ServeMine)
	r.Get("/public", h.ServePublic)
	r.Get("/{ideaID}", h.ServeIdea)
	return r
}
