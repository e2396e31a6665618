// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit feed under the path where this router is mounted
// (typically "/groups/{groupID}/audit"). Access is restricted to the group's
// owner and admins.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	return r
}
