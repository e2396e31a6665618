// internal/app/features/groupideas/routes.go
package groupideas

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /groups/{groupID}/ideas.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/share", h.HandleShare)

	r.Route("/{ideaID}", func(ir chi.Router) {
		ir.Get("/", h.ServeIdea)
		ir.Delete("/", h.HandleDelete)
		ir.Post("/approve", h.HandleApprove)

		// RATINGS
		ir.Put("/votes", h.HandleVote)
		ir.Delete("/votes", h.HandleRemoveVote)
		ir.Post("/upvote", h.HandleToggleVote)

		// FEATURES
		ir.Post("/features", h.HandleAddFeature)
		ir.Delete("/features/{featureID}", h.HandleDeleteFeature)
		ir.Post("/features/{featureID}/vote", h.HandleToggleFeatureVote)
		ir.Put("/features/{featureID}/status", h.HandleFeatureStatus)

		// COMMENTS
		ir.Get("/comments", h.ServeComments)
		ir.Post("/comments", h.HandleAddComment)
		ir.Delete("/comments/{commentID}", h.HandleDeleteComment)
	})

	return r
}
