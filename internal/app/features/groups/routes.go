// internal/app/features/groups/routes.go
package groups

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the group membership endpoints. The caller must already be
// authenticated. ideas and audit are mounted under /{groupID}/ideas and
// /{groupID}/audit when non-nil.
func Routes(h *Handler, ideas, audit chi.Router) chi.Router {
	r := chi.NewRouter()

	// CREATE / JOIN
	r.Post("/", h.HandleCreateGroup)
	r.Post("/join", h.HandleRequestToJoin)

	r.Route("/{groupID}", func(gr chi.Router) {
		gr.Get("/", h.ServeGroup)
		gr.Delete("/", h.HandleDeleteGroup)
		gr.Post("/invite-code", h.HandleRegenerateInviteCode)

		// MEMBERS
		gr.Get("/members", h.ServeMembers)
		gr.Post("/members", h.HandleAddMember)
		gr.Delete("/members/me", h.HandleLeaveGroup)
		gr.Delete("/members/{userID}", h.HandleRemoveMember)
		gr.Put("/members/{userID}/role", h.HandleUpdateRole)

		// JOIN REQUESTS
		gr.Get("/requests", h.ServeJoinRequests)
		gr.Post("/requests/{userID}/approve", h.HandleApproveRequest)
		gr.Post("/requests/{userID}/reject", h.HandleRejectRequest)

		// INVITES
		gr.Post("/invites", h.HandleInvite)
		gr.Post("/invite/accept", h.HandleAcceptInvite)
		gr.Post("/invite/decline", h.HandleDeclineInvite)

		if ideas != nil {
			gr.Mount("/ideas", ideas)
		}
		if audit != nil {
			gr.Mount("/audit", audit)
		}
	})

	return r
}
